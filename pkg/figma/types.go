package figma

// Version is reported in the User-Agent of every API request and by the CLI.
const Version = "0.3.0"

// FileResponse represents the complete response from the Figma file API endpoint.
// It contains the file metadata, document structure, published styles and components.
type FileResponse struct {
	Name          string                  `json:"name"`
	LastModified  string                  `json:"lastModified"`
	ThumbnailURL  string                  `json:"thumbnailUrl"`
	Version       string                  `json:"version"`
	Document      Node                    `json:"document"`
	Components    map[string]Component    `json:"components,omitempty"`
	ComponentSets map[string]ComponentSet `json:"componentSets,omitempty"`
	Styles        map[string]Style        `json:"styles"`
	SchemaVersion int                     `json:"schemaVersion"`
}

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// It contains file metadata and a map of node IDs to their corresponding NodeData.
type NodesResponse struct {
	Name         string               `json:"name"`
	LastModified string               `json:"lastModified"`
	Version      string               `json:"version"`
	Nodes        map[string]*NodeData `json:"nodes"`
}

// NodeData wraps a node with its document structure and optional component/style information.
// The API returns a null entry for IDs it cannot resolve.
type NodeData struct {
	Document      Node                    `json:"document"`
	Components    map[string]Component    `json:"components,omitempty"`
	ComponentSets map[string]ComponentSet `json:"componentSets,omitempty"`
	Styles        map[string]Style        `json:"styles,omitempty"`
}

// Component represents a Figma component definition with its metadata.
type Component struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ComponentSetID string `json:"componentSetId,omitempty"`
}

// ComponentSet represents a group of component variants.
type ComponentSet struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StylesResponse represents the response from the Figma styles API endpoint.
type StylesResponse struct {
	Meta Meta `json:"meta"`
}

// Meta contains metadata about published styles in a Figma file.
type Meta struct {
	Styles []StyleMetadata `json:"styles"`
}

// StyleMetadata contains metadata for a single published style in Figma.
type StyleMetadata struct {
	Key         string `json:"key"`
	FileKey     string `json:"file_key"`
	NodeID      string `json:"node_id"`
	StyleType   string `json:"style_type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Style represents a published Figma style with its basic properties.
// Styles can be colors (FILL), text styles (TEXT), effects (EFFECT), or layout grids (GRID).
type Style struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StyleType   string `json:"styleType"`
}

// ImagesResponse is returned by the render endpoint: node ID -> temporary image URL.
type ImagesResponse struct {
	Err    string            `json:"err,omitempty"`
	Images map[string]string `json:"images"`
}

// FileImagesResponse is returned by the image-fills endpoint: imageRef -> download URL.
type FileImagesResponse struct {
	Error  bool `json:"error"`
	Status int  `json:"status"`
	Meta   struct {
		Images map[string]string `json:"images"`
	} `json:"meta"`
}

// Node represents a single element in the Figma document tree hierarchy.
//
// One struct covers every node kind; which fields are populated depends on Type.
// Fields whose zero value is meaningful are pointers so that "absent" can be told
// apart from "zero".
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Visible  *bool  `json:"visible,omitempty"`
	Children []Node `json:"children,omitempty"`

	// Visuals
	BackgroundColor         *Color                       `json:"backgroundColor,omitempty"`
	Fills                   []Paint                      `json:"fills,omitempty"`
	Strokes                 []Paint                      `json:"strokes,omitempty"`
	StrokeWeight            *float64                     `json:"strokeWeight,omitempty"`
	IndividualStrokeWeights *StrokeWeights               `json:"individualStrokeWeights,omitempty"`
	StrokeDashes            []float64                    `json:"strokeDashes,omitempty"`
	StrokeAlign             string                       `json:"strokeAlign,omitempty"`
	CornerRadius            float64                      `json:"cornerRadius,omitempty"`
	RectangleCornerRadii    []float64                    `json:"rectangleCornerRadii,omitempty"`
	Effects                 []Effect                     `json:"effects,omitempty"`
	Opacity                 *float64                     `json:"opacity,omitempty"`
	Styles                  map[string]string            `json:"styles,omitempty"`
	ExportSettings          []ExportSetting              `json:"exportSettings,omitempty"`
	ComponentID             string                       `json:"componentId,omitempty"`
	ComponentProperties     map[string]ComponentProperty `json:"componentProperties,omitempty"`

	// Text
	Characters string     `json:"characters,omitempty"`
	Style      *TypeStyle `json:"style,omitempty"`

	// Geometry
	AbsoluteBoundingBox *Rectangle        `json:"absoluteBoundingBox,omitempty"`
	Constraints         *LayoutConstraint `json:"constraints,omitempty"`
	PreserveRatio       bool              `json:"preserveRatio,omitempty"`

	// Frame-level auto-layout
	LayoutMode              string   `json:"layoutMode,omitempty"`
	LayoutWrap              string   `json:"layoutWrap,omitempty"`
	PrimaryAxisSizingMode   string   `json:"primaryAxisSizingMode,omitempty"`
	CounterAxisSizingMode   string   `json:"counterAxisSizingMode,omitempty"`
	PrimaryAxisAlignItems   string   `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlignItems   string   `json:"counterAxisAlignItems,omitempty"`
	CounterAxisAlignContent string   `json:"counterAxisAlignContent,omitempty"`
	CounterAxisSpacing      *float64 `json:"counterAxisSpacing,omitempty"`
	PaddingLeft             float64  `json:"paddingLeft,omitempty"`
	PaddingRight            float64  `json:"paddingRight,omitempty"`
	PaddingTop              float64  `json:"paddingTop,omitempty"`
	PaddingBottom           float64  `json:"paddingBottom,omitempty"`
	ItemSpacing             float64  `json:"itemSpacing,omitempty"`
	ItemReverseZIndex       *bool    `json:"itemReverseZIndex,omitempty"`
	StrokesIncludedInLayout *bool    `json:"strokesIncludedInLayout,omitempty"`
	ClipsContent            *bool    `json:"clipsContent,omitempty"`
	OverflowDirection       string   `json:"overflowDirection,omitempty"`

	// Grid container
	GridColumnCount   *int     `json:"gridColumnCount,omitempty"`
	GridRowCount      *int     `json:"gridRowCount,omitempty"`
	GridColumnGap     *float64 `json:"gridColumnGap,omitempty"`
	GridRowGap        *float64 `json:"gridRowGap,omitempty"`
	GridColumnsSizing string   `json:"gridColumnsSizing,omitempty"`
	GridRowsSizing    string   `json:"gridRowsSizing,omitempty"`

	// Child-level layout
	LayoutAlign            string   `json:"layoutAlign,omitempty"`
	LayoutGrow             *float64 `json:"layoutGrow,omitempty"`
	LayoutPositioning      string   `json:"layoutPositioning,omitempty"`
	LayoutSizingHorizontal string   `json:"layoutSizingHorizontal,omitempty"`
	LayoutSizingVertical   string   `json:"layoutSizingVertical,omitempty"`
	MinWidth               *float64 `json:"minWidth,omitempty"`
	MaxWidth               *float64 `json:"maxWidth,omitempty"`
	MinHeight              *float64 `json:"minHeight,omitempty"`
	MaxHeight              *float64 `json:"maxHeight,omitempty"`
	ScrollBehavior         string   `json:"scrollBehavior,omitempty"`

	// Grid child
	GridColumnSpan           *int   `json:"gridColumnSpan,omitempty"`
	GridRowSpan              *int   `json:"gridRowSpan,omitempty"`
	GridColumnAnchorIndex    *int   `json:"gridColumnAnchorIndex,omitempty"`
	GridRowAnchorIndex       *int   `json:"gridRowAnchorIndex,omitempty"`
	GridChildHorizontalAlign string `json:"gridChildHorizontalAlign,omitempty"`
	GridChildVerticalAlign   string `json:"gridChildVerticalAlign,omitempty"`
}

// IsVisible reports whether the node is rendered. Figma omits the field for visible nodes.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Color represents an RGBA color with float values ranging from 0 to 1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Transform is a 2x3 affine matrix [[a, b, tx], [c, d, ty]].
type Transform [][]float64

// ColorStop is a single stop of a gradient.
type ColorStop struct {
	Position float64 `json:"position"`
	Color    Color   `json:"color"`
}

// Paint represents a fill or stroke applied to a Figma node.
// SOLID, GRADIENT_* and IMAGE paints come from the file API; PATTERN paints reference
// another node as their tile source.
type Paint struct {
	Type      string   `json:"type"`
	Visible   *bool    `json:"visible,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Color     *Color   `json:"color,omitempty"`
	BlendMode string   `json:"blendMode,omitempty"`

	// Gradients
	GradientHandlePositions []Vector    `json:"gradientHandlePositions,omitempty"`
	GradientStops           []ColorStop `json:"gradientStops,omitempty"`

	// Images
	ImageRef       string    `json:"imageRef,omitempty"`
	ScaleMode      string    `json:"scaleMode,omitempty"`
	ScalingFactor  *float64  `json:"scalingFactor,omitempty"`
	ImageTransform Transform `json:"imageTransform,omitempty"`
	Rotation       float64   `json:"rotation,omitempty"`

	// Patterns
	SourceNodeID        string  `json:"sourceNodeId,omitempty"`
	TileType            string  `json:"tileType,omitempty"`
	Spacing             *Vector `json:"spacing,omitempty"`
	HorizontalAlignment string  `json:"horizontalAlignment,omitempty"`
	VerticalAlignment   string  `json:"verticalAlignment,omitempty"`
}

// IsVisible reports whether the paint is applied. Figma omits the field for visible paints.
func (p *Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// Effect represents a visual effect applied to a Figma node such as drop shadows, inner shadows, or blur effects.
type Effect struct {
	Type      string  `json:"type"`
	Visible   *bool   `json:"visible,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Color     *Color  `json:"color,omitempty"`
	Offset    *Vector `json:"offset,omitempty"`
	Spread    float64 `json:"spread,omitempty"`
	BlendMode string  `json:"blendMode,omitempty"`
}

// IsVisible reports whether the effect is applied.
func (e *Effect) IsVisible() bool {
	return e.Visible == nil || *e.Visible
}

// Vector represents a 2D coordinate or offset with X and Y values.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeWeights holds per-side stroke weights.
type StrokeWeights struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TypeStyle represents text styling properties from Figma.
type TypeStyle struct {
	FontFamily          string  `json:"fontFamily,omitempty"`
	FontPostScriptName  string  `json:"fontPostScriptName,omitempty"`
	FontWeight          float64 `json:"fontWeight,omitempty"`
	FontSize            float64 `json:"fontSize,omitempty"`
	LineHeightPx        float64 `json:"lineHeightPx,omitempty"`
	LineHeightPercent   float64 `json:"lineHeightPercent,omitempty"`
	LetterSpacing       float64 `json:"letterSpacing,omitempty"`
	TextCase            string  `json:"textCase,omitempty"`
	TextAlignHorizontal string  `json:"textAlignHorizontal,omitempty"`
	TextAlignVertical   string  `json:"textAlignVertical,omitempty"`
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutConstraint defines how a node's position and size behave when its parent is resized.
type LayoutConstraint struct {
	Vertical   string `json:"vertical"`
	Horizontal string `json:"horizontal"`
}

// ExportSetting is a designer-defined export preset on a node.
type ExportSetting struct {
	Format     string `json:"format"`
	Suffix     string `json:"suffix"`
	Constraint struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	} `json:"constraint"`
}

// ComponentProperty is the resolved value of one property on an instance.
// Value is a string for TEXT/VARIANT/INSTANCE_SWAP properties and a bool for BOOLEAN ones.
type ComponentProperty struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}
