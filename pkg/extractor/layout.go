package extractor

import (
	"strings"

	"github.com/kataras/figma-context/pkg/figma"
)

// Layout is the normalized, flex/grid-like description of how a node arranges its
// children and how it sits inside its parent. Mode is always set; every other field
// is omitted when it does not apply.
type Layout struct {
	Mode                     string           `json:"mode" yaml:"mode"`
	JustifyContent           string           `json:"justifyContent,omitempty" yaml:"justifyContent,omitempty"`
	AlignItems               string           `json:"alignItems,omitempty" yaml:"alignItems,omitempty"`
	AlignSelf                string           `json:"alignSelf,omitempty" yaml:"alignSelf,omitempty"`
	Wrap                     bool             `json:"wrap,omitempty" yaml:"wrap,omitempty"`
	Gap                      string           `json:"gap,omitempty" yaml:"gap,omitempty"`
	RowGap                   string           `json:"rowGap,omitempty" yaml:"rowGap,omitempty"`
	AlignContent             string           `json:"alignContent,omitempty" yaml:"alignContent,omitempty"`
	LocationRelativeToParent *Point           `json:"locationRelativeToParent,omitempty" yaml:"locationRelativeToParent,omitempty"`
	Dimensions               *Dimensions      `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Padding                  string           `json:"padding,omitempty" yaml:"padding,omitempty"`
	Sizing                   *Sizing          `json:"sizing,omitempty" yaml:"sizing,omitempty"`
	FrameSizing              *FrameSizing     `json:"frameSizing,omitempty" yaml:"frameSizing,omitempty"`
	Constraints              *SizeConstraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	BoxSizing                string           `json:"boxSizing,omitempty" yaml:"boxSizing,omitempty"`
	ReverseZIndex            bool             `json:"reverseZIndex,omitempty" yaml:"reverseZIndex,omitempty"`
	ClipsContent             bool             `json:"clipsContent,omitempty" yaml:"clipsContent,omitempty"`
	ScrollBehavior           string           `json:"scrollBehavior,omitempty" yaml:"scrollBehavior,omitempty"`
	Grid                     *Grid            `json:"grid,omitempty" yaml:"grid,omitempty"`
	GridPlacement            *GridPlacement   `json:"gridPlacement,omitempty" yaml:"gridPlacement,omitempty"`
	OverflowScroll           []string         `json:"overflowScroll,omitempty" yaml:"overflowScroll,omitempty,flow"`
	Position                 string           `json:"position,omitempty" yaml:"position,omitempty"`
}

func (Layout) stylePrefix() string { return "layout" }

// Point is an offset in whole pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dimensions holds the explicit size of a node, in whole pixels.
type Dimensions struct {
	Width       *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height      *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	AspectRatio *float64 `json:"aspectRatio,omitempty" yaml:"aspectRatio,omitempty"`
}

// Sizing is the per-axis sizing intent of a node: fixed, fill or hug.
type Sizing struct {
	Horizontal string `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty" yaml:"vertical,omitempty"`
}

// FrameSizing is how an auto-layout frame sizes itself along its axes.
type FrameSizing struct {
	Primary string `json:"primary" yaml:"primary"`
	Counter string `json:"counter" yaml:"counter"`
}

// SizeConstraints are auto-layout min/max limits in whole pixels.
type SizeConstraints struct {
	MinWidth  *float64 `json:"minWidth,omitempty" yaml:"minWidth,omitempty"`
	MaxWidth  *float64 `json:"maxWidth,omitempty" yaml:"maxWidth,omitempty"`
	MinHeight *float64 `json:"minHeight,omitempty" yaml:"minHeight,omitempty"`
	MaxHeight *float64 `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`
}

// Grid describes a grid container.
type Grid struct {
	Columns         *int   `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows            *int   `json:"rows,omitempty" yaml:"rows,omitempty"`
	ColumnGap       string `json:"columnGap,omitempty" yaml:"columnGap,omitempty"`
	RowGap          string `json:"rowGap,omitempty" yaml:"rowGap,omitempty"`
	TemplateColumns string `json:"templateColumns,omitempty" yaml:"templateColumns,omitempty"`
	TemplateRows    string `json:"templateRows,omitempty" yaml:"templateRows,omitempty"`
}

// GridPlacement describes where a grid child sits. Start lines are one-based.
type GridPlacement struct {
	ColumnSpan      *int   `json:"columnSpan,omitempty" yaml:"columnSpan,omitempty"`
	RowSpan         *int   `json:"rowSpan,omitempty" yaml:"rowSpan,omitempty"`
	ColumnStart     *int   `json:"columnStart,omitempty" yaml:"columnStart,omitempty"`
	RowStart        *int   `json:"rowStart,omitempty" yaml:"rowStart,omitempty"`
	HorizontalAlign string `json:"horizontalAlign,omitempty" yaml:"horizontalAlign,omitempty"`
	VerticalAlign   string `json:"verticalAlign,omitempty" yaml:"verticalAlign,omitempty"`
}

// Layout modes.
const (
	ModeNone   = "none"
	ModeRow    = "row"
	ModeColumn = "column"
	ModeGrid   = "grid"
)

// isFrame reports whether n can arrange children with auto-layout or grid.
func isFrame(n *figma.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case "FRAME", "COMPONENT", "COMPONENT_SET", "INSTANCE":
		return true
	default:
		return false
	}
}

// participatesInLayout reports whether n has layout properties of its own.
// Documents and pages only hold other nodes.
func participatesInLayout(n *figma.Node) bool {
	switch n.Type {
	case "DOCUMENT", "CANVAS":
		return false
	default:
		return true
	}
}

func frameMode(n *figma.Node) string {
	if !isFrame(n) {
		return ModeNone
	}
	switch n.LayoutMode {
	case "HORIZONTAL":
		return ModeRow
	case "VERTICAL":
		return ModeColumn
	case "GRID":
		return ModeGrid
	default:
		return ModeNone
	}
}

func isAbsolute(n *figma.Node) bool {
	return n.LayoutPositioning == "ABSOLUTE"
}

// flowMode returns the auto-layout mode of parent that n is laid out by, or ModeNone
// when n is positioned freely (plain parent frame, no parent, or absolute child).
func flowMode(n, parent *figma.Node) string {
	if parent == nil || isAbsolute(n) {
		return ModeNone
	}
	return frameMode(parent)
}

// BuildLayout translates the auto-layout configuration of n, and its placement inside
// parent, into a Layout. parent may be nil for roots.
func BuildLayout(n, parent *figma.Node) Layout {
	return BuildFilteredLayout(n, parent, nil)
}

// BuildFilteredLayout is BuildLayout for a traversal that prunes nodes with keep.
// Children rejected by keep take no part in stretch inference. A nil keep keeps all.
func BuildFilteredLayout(n, parent *figma.Node, keep func(*figma.Node) bool) Layout {
	if n == nil {
		return Layout{Mode: ModeNone}
	}
	l := buildFrameLayout(n, keep)
	if participatesInLayout(n) {
		// Frame-level and child-level fields are disjoint apart from mode, so writing the
		// child phase onto the frame record is the shallow merge with child values winning.
		applyChildLayout(&l, n, parent)
	}
	return l
}

func buildFrameLayout(n *figma.Node, keep func(*figma.Node) bool) Layout {
	l := Layout{Mode: frameMode(n)}
	if !isFrame(n) {
		return l
	}

	if strings.Contains(n.OverflowDirection, "HORIZONTAL") {
		l.OverflowScroll = append(l.OverflowScroll, "x")
	}
	if strings.Contains(n.OverflowDirection, "VERTICAL") {
		l.OverflowScroll = append(l.OverflowScroll, "y")
	}
	if n.ClipsContent != nil && *n.ClipsContent {
		l.ClipsContent = true
	}

	switch l.Mode {
	case ModeNone:
		return l
	case ModeGrid:
		l.Grid = buildGrid(n)
		applyFrameCommon(&l, n)
		return l
	}

	l.JustifyContent = convertAlign(n.PrimaryAxisAlignItems, n.Children, keep, l.Mode, false)
	l.AlignItems = convertAlign(n.CounterAxisAlignItems, n.Children, keep, l.Mode, true)
	l.AlignSelf = convertSelfAlign(n.LayoutAlign)

	if n.LayoutWrap == "WRAP" {
		l.Wrap = true
		if n.CounterAxisSpacing != nil {
			l.RowGap = px(*n.CounterAxisSpacing)
		}
		if n.CounterAxisAlignContent != "" {
			l.AlignContent = "auto"
			if n.CounterAxisAlignContent == "SPACE_BETWEEN" {
				l.AlignContent = "space-between"
			}
		}
	}
	if n.ItemSpacing != 0 {
		l.Gap = px(n.ItemSpacing)
	}

	applyFrameCommon(&l, n)
	return l
}

// applyFrameCommon sets the fields shared by flex and grid containers.
func applyFrameCommon(l *Layout, n *figma.Node) {
	l.Padding = CSSShorthand(n.PaddingTop, n.PaddingRight, n.PaddingBottom, n.PaddingLeft, true)

	primary, counter := convertSizingMode(n.PrimaryAxisSizingMode), convertSizingMode(n.CounterAxisSizingMode)
	if primary != "" || counter != "" {
		l.FrameSizing = &FrameSizing{Primary: orAuto(primary), Counter: orAuto(counter)}
	}

	if n.StrokesIncludedInLayout != nil {
		l.BoxSizing = "content-box"
		if *n.StrokesIncludedInLayout {
			l.BoxSizing = "border-box"
		}
	}
	if n.ItemReverseZIndex != nil && *n.ItemReverseZIndex {
		l.ReverseZIndex = true
	}
}

func buildGrid(n *figma.Node) *Grid {
	g := Grid{
		Columns:         n.GridColumnCount,
		Rows:            n.GridRowCount,
		TemplateColumns: n.GridColumnsSizing,
		TemplateRows:    n.GridRowsSizing,
	}
	if n.GridColumnGap != nil {
		g.ColumnGap = px(*n.GridColumnGap)
	}
	if n.GridRowGap != nil {
		g.RowGap = px(*n.GridRowGap)
	}
	if g == (Grid{}) {
		return nil
	}
	return &g
}

func applyChildLayout(l *Layout, n, parent *figma.Node) {
	if frameMode(parent) == ModeGrid {
		l.GridPlacement = buildGridPlacement(n)
	}

	sizing := Sizing{
		Horizontal: convertSizing(n.LayoutSizingHorizontal),
		Vertical:   convertSizing(n.LayoutSizingVertical),
	}
	if sizing != (Sizing{}) {
		l.Sizing = &sizing
	}

	c := SizeConstraints{
		MinWidth:  roundedPtr(n.MinWidth),
		MaxWidth:  roundedPtr(n.MaxWidth),
		MinHeight: roundedPtr(n.MinHeight),
		MaxHeight: roundedPtr(n.MaxHeight),
	}
	if c != (SizeConstraints{}) {
		l.Constraints = &c
	}

	switch n.ScrollBehavior {
	case "FIXED":
		l.ScrollBehavior = "fixed"
	case "STICKY_SCROLLS":
		l.ScrollBehavior = "sticky"
	}

	flow := flowMode(n, parent)

	// Children of a plain frame, and absolute children of any frame, are placed by
	// coordinates. Children in a row/column/grid flow never are.
	if isFrame(parent) && flow == ModeNone {
		if isAbsolute(n) {
			l.Position = "absolute"
		}
		if n.AbsoluteBoundingBox != nil && parent.AbsoluteBoundingBox != nil {
			l.LocationRelativeToParent = &Point{
				X: PixelRound(n.AbsoluteBoundingBox.X - parent.AbsoluteBoundingBox.X),
				Y: PixelRound(n.AbsoluteBoundingBox.Y - parent.AbsoluteBoundingBox.Y),
			}
		}
	}

	l.Dimensions = buildDimensions(n, flow)
}

func buildGridPlacement(n *figma.Node) *GridPlacement {
	p := GridPlacement{
		ColumnSpan:      n.GridColumnSpan,
		RowSpan:         n.GridRowSpan,
		ColumnStart:     oneBased(n.GridColumnAnchorIndex),
		RowStart:        oneBased(n.GridRowAnchorIndex),
		HorizontalAlign: convertGridAlign(n.GridChildHorizontalAlign),
		VerticalAlign:   convertGridAlign(n.GridChildVerticalAlign),
	}
	if p == (GridPlacement{}) {
		return nil
	}
	return &p
}

// buildDimensions decides which sides of the bounding box are explicit sizes rather
// than the result of the parent's flow.
func buildDimensions(n *figma.Node, flow string) *Dimensions {
	box := n.AbsoluteBoundingBox
	if box == nil {
		return nil
	}

	growing := n.LayoutGrow != nil && *n.LayoutGrow != 0
	stretched := n.LayoutAlign == "STRETCH"
	fixedH := n.LayoutSizingHorizontal == "FIXED"
	fixedV := n.LayoutSizingVertical == "FIXED"

	var withWidth, withHeight bool
	switch flow {
	case ModeRow:
		withWidth = !growing && fixedH
		withHeight = !stretched && fixedV
	case ModeColumn:
		withWidth = !stretched && fixedH
		withHeight = !growing && fixedV
	default:
		withWidth = n.LayoutSizingHorizontal == "" || fixedH
		withHeight = n.LayoutSizingVertical == "" || fixedV
	}

	var d Dimensions
	if withWidth {
		w := PixelRound(box.Width)
		d.Width = &w
	}
	if withHeight {
		h := PixelRound(box.Height)
		d.Height = &h
	}
	if (flow == ModeRow || flow == ModeColumn) && n.PreserveRatio && box.Height != 0 {
		r := roundTo(box.Width/box.Height, 2)
		d.AspectRatio = &r
	}

	if d == (Dimensions{}) {
		return nil
	}
	return &d
}

// convertAlign maps a primary (counter=false) or counter axis alignment to CSS.
// When every kept, non-absolute child fills that axis the result is "stretch"
// regardless of the raw setting. A container without children never stretches.
func convertAlign(align string, children []figma.Node, keep func(*figma.Node) bool, mode string, counter bool) string {
	if allChildrenFill(children, keep, fillsHorizontally(mode, counter)) {
		return "stretch"
	}

	switch align {
	case "MAX":
		return "flex-end"
	case "CENTER":
		return "center"
	case "SPACE_BETWEEN":
		return "space-between"
	case "BASELINE":
		return "baseline"
	default:
		// MIN is flex-start, the CSS default.
		return ""
	}
}

// fillsHorizontally reports whether the axis being aligned is horizontal: the primary
// axis of a row and the counter axis of a column.
func fillsHorizontally(mode string, counter bool) bool {
	return (mode == ModeRow) != counter
}

func allChildrenFill(children []figma.Node, keep func(*figma.Node) bool, horizontal bool) bool {
	if len(children) == 0 {
		return false
	}
	for i := range children {
		c := &children[i]
		if isAbsolute(c) || (keep != nil && !keep(c)) {
			continue
		}
		sizing := c.LayoutSizingVertical
		if horizontal {
			sizing = c.LayoutSizingHorizontal
		}
		if sizing != "FILL" {
			return false
		}
	}
	return true
}

func convertSelfAlign(align string) string {
	switch align {
	case "MAX":
		return "flex-end"
	case "CENTER":
		return "center"
	case "STRETCH":
		return "stretch"
	default:
		return ""
	}
}

func convertSizing(s string) string {
	switch s {
	case "FIXED":
		return "fixed"
	case "FILL":
		return "fill"
	case "HUG":
		return "hug"
	default:
		return ""
	}
}

func convertSizingMode(s string) string {
	switch s {
	case "FIXED":
		return "fixed"
	case "AUTO":
		return "auto"
	default:
		return ""
	}
}

func convertGridAlign(s string) string {
	switch s {
	case "AUTO":
		return "auto"
	case "MIN":
		return "start"
	case "CENTER":
		return "center"
	case "MAX":
		return "end"
	default:
		return ""
	}
}

func orAuto(s string) string {
	if s == "" {
		return "auto"
	}
	return s
}

func oneBased(idx *int) *int {
	if idx == nil {
		return nil
	}
	v := *idx + 1
	return &v
}

func roundedPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := PixelRound(*v)
	return &r
}
