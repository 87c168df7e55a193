package extractor

import (
	"encoding/json"

	"github.com/kataras/figma-context/pkg/figma"
)

// SimplifiedNode is the compact projection of a figma.Node.
//
// Style concerns are stored as references into the run's Registry; cheap scalars are
// stored inline. Children keep source order unless an AfterChildren hook rewrites them.
type SimplifiedNode struct {
	ID                  string              `json:"id" yaml:"id"`
	Name                string              `json:"name" yaml:"name"`
	Type                string              `json:"type" yaml:"type"`
	Text                string              `json:"text,omitempty" yaml:"text,omitempty"`
	TextStyle           string              `json:"textStyle,omitempty" yaml:"textStyle,omitempty"`
	Fills               string              `json:"fills,omitempty" yaml:"fills,omitempty"`
	Strokes             string              `json:"strokes,omitempty" yaml:"strokes,omitempty"`
	StrokeWeight        string              `json:"strokeWeight,omitempty" yaml:"strokeWeight,omitempty"`
	Effects             string              `json:"effects,omitempty" yaml:"effects,omitempty"`
	Opacity             *float64            `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	BorderRadius        string              `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	Layout              string              `json:"layout,omitempty" yaml:"layout,omitempty"`
	ComponentID         string              `json:"componentId,omitempty" yaml:"componentId,omitempty"`
	ComponentSetID      string              `json:"componentSetId,omitempty" yaml:"componentSetId,omitempty"`
	ComponentProperties []ComponentProperty `json:"componentProperties,omitempty" yaml:"componentProperties,omitempty"`
	Children            []*SimplifiedNode   `json:"children,omitempty" yaml:"children,omitempty"`
}

// ComponentProperty is one resolved property of a component instance.
type ComponentProperty struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Type  string `json:"type" yaml:"type"`
}

// ComponentDefinition describes a component referenced by the simplified nodes.
type ComponentDefinition struct {
	ID             string `json:"id" yaml:"id"`
	Key            string `json:"key" yaml:"key"`
	Name           string `json:"name" yaml:"name"`
	ComponentSetID string `json:"componentSetId,omitempty" yaml:"componentSetId,omitempty"`
}

// ComponentSetDefinition describes a set of component variants.
type ComponentSetDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// GlobalVars holds the styles shared by every node of a design.
type GlobalVars struct {
	Styles *Registry `json:"styles" yaml:"styles"`
}

// Design is the result of simplifying a whole API response.
type Design struct {
	Name          string                            `json:"name" yaml:"name"`
	Nodes         []*SimplifiedNode                 `json:"nodes" yaml:"nodes"`
	Components    map[string]ComponentDefinition    `json:"components" yaml:"components"`
	ComponentSets map[string]ComponentSetDefinition `json:"componentSets" yaml:"componentSets"`
	GlobalVars    GlobalVars                        `json:"globalVars" yaml:"globalVars"`
}

// StyleValue is a normalized style stored in the Registry. The set of implementations
// is closed: TextStyle, Fills, Layout, Stroke, Effects and StyleString.
type StyleValue interface {
	stylePrefix() string
}

// TextStyle is the normalized typography of a TEXT node.
type TextStyle struct {
	FontFamily          string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	FontWeight          float64 `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	FontSize            float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	LineHeight          string  `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	LetterSpacing       string  `json:"letterSpacing,omitempty" yaml:"letterSpacing,omitempty"`
	TextCase            string  `json:"textCase,omitempty" yaml:"textCase,omitempty"`
	TextAlignHorizontal string  `json:"textAlignHorizontal,omitempty" yaml:"textAlignHorizontal,omitempty"`
	TextAlignVertical   string  `json:"textAlignVertical,omitempty" yaml:"textAlignVertical,omitempty"`
}

func (TextStyle) stylePrefix() string { return "style" }

// Fills is an ordered paint stack, bottom-most paint last (CSS background order).
type Fills []Fill

func (Fills) stylePrefix() string { return "fill" }

// Stroke is the normalized stroke paint of a node. The weight lives on the node.
type Stroke struct {
	Colors       []Fill    `json:"colors" yaml:"colors"`
	StrokeDashes []float64 `json:"strokeDashes,omitempty" yaml:"strokeDashes,omitempty,flow"`
}

func (Stroke) stylePrefix() string { return "stroke" }

// Effects holds CSS shorthands for shadows and blurs.
type Effects struct {
	BoxShadow      string `json:"boxShadow,omitempty" yaml:"boxShadow,omitempty"`
	TextShadow     string `json:"textShadow,omitempty" yaml:"textShadow,omitempty"`
	Filter         string `json:"filter,omitempty" yaml:"filter,omitempty"`
	BackdropFilter string `json:"backdropFilter,omitempty" yaml:"backdropFilter,omitempty"`
}

func (Effects) stylePrefix() string { return "effect" }

func (e Effects) empty() bool {
	return e == Effects{}
}

// StyleString is a plain string style value for degenerate cases.
type StyleString string

func (StyleString) stylePrefix() string { return "var" }

// Fill is one paint. Exactly one representation is set: Color (hex or rgba string),
// Gradient, Image or Pattern. It encodes as a bare string for colors and as an
// object otherwise.
type Fill struct {
	Color    string
	Gradient *GradientFill
	Image    *ImageFill
	Pattern  *PatternFill
}

func (f Fill) value() any {
	switch {
	case f.Image != nil:
		return f.Image
	case f.Gradient != nil:
		return f.Gradient
	case f.Pattern != nil:
		return f.Pattern
	default:
		return f.Color
	}
}

// MarshalJSON implements json.Marshaler.
func (f Fill) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.value())
}

// MarshalYAML implements yaml.Marshaler.
func (f Fill) MarshalYAML() (any, error) {
	return f.value(), nil
}

// GradientFill is a CSS gradient.
type GradientFill struct {
	Type     string `json:"type" yaml:"type"`
	Gradient string `json:"gradient" yaml:"gradient"`
}

// ImageFill describes an image paint and what the image collaborator must do to
// materialize it.
type ImageFill struct {
	Type                   string                  `json:"type" yaml:"type"`
	ImageRef               string                  `json:"imageRef" yaml:"imageRef"`
	ScaleMode              string                  `json:"scaleMode" yaml:"scaleMode"`
	ScalingFactor          *float64                `json:"scalingFactor,omitempty" yaml:"scalingFactor,omitempty"`
	BackgroundSize         string                  `json:"backgroundSize,omitempty" yaml:"backgroundSize,omitempty"`
	BackgroundRepeat       string                  `json:"backgroundRepeat,omitempty" yaml:"backgroundRepeat,omitempty"`
	IsBackground           bool                    `json:"isBackground,omitempty" yaml:"isBackground,omitempty"`
	ObjectFit              string                  `json:"objectFit,omitempty" yaml:"objectFit,omitempty"`
	ImageDownloadArguments *ImageDownloadArguments `json:"imageDownloadArguments,omitempty" yaml:"imageDownloadArguments,omitempty"`
}

// ImageDownloadArguments tells the image collaborator how to post-process a download.
type ImageDownloadArguments struct {
	NeedsCropping           bool            `json:"needsCropping" yaml:"needsCropping"`
	RequiresImageDimensions bool            `json:"requiresImageDimensions" yaml:"requiresImageDimensions"`
	CropTransform           figma.Transform `json:"cropTransform,omitempty" yaml:"cropTransform,omitempty,flow"`
	FilenameSuffix          string          `json:"filenameSuffix,omitempty" yaml:"filenameSuffix,omitempty"`
}

// PatternFill is a tiled pattern whose tile is rendered from another node.
type PatternFill struct {
	Type               string        `json:"type" yaml:"type"`
	PatternSource      PatternSource `json:"patternSource" yaml:"patternSource"`
	BackgroundRepeat   string        `json:"backgroundRepeat" yaml:"backgroundRepeat"`
	BackgroundSize     string        `json:"backgroundSize" yaml:"backgroundSize"`
	BackgroundPosition string        `json:"backgroundPosition" yaml:"backgroundPosition"`
}

// PatternSource references the node rendered as the pattern tile.
type PatternSource struct {
	Type   string `json:"type" yaml:"type"`
	NodeID string `json:"nodeId" yaml:"nodeId"`
}
