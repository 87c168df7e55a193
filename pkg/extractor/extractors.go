package extractor

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/kataras/figma-context/pkg/figma"
)

// LayoutExtractor interns the normalized layout of every node that has one.
func LayoutExtractor(n *figma.Node, out *SimplifiedNode, ctx *TraversalContext) {
	l := BuildFilteredLayout(n, ctx.Parent, ctx.NodeFilter)
	if reflect.DeepEqual(l, Layout{Mode: ModeNone}) {
		return
	}
	out.Layout = ctx.Registry.Intern(l)
}

// TextExtractor copies the characters of TEXT nodes and interns their typography.
func TextExtractor(n *figma.Node, out *SimplifiedNode, ctx *TraversalContext) {
	if n.Type != "TEXT" {
		return
	}
	out.Text = n.Characters
	if n.Style == nil {
		return
	}

	ts := buildTextStyle(n.Style)
	if ts == (TextStyle{}) {
		return
	}
	out.TextStyle = ctx.Registry.InternNamed(publishedStyleName(n, ctx, "text"), ts)
}

func buildTextStyle(s *figma.TypeStyle) TextStyle {
	ts := TextStyle{
		FontFamily:          s.FontFamily,
		FontWeight:          s.FontWeight,
		FontSize:            s.FontSize,
		TextCase:            s.TextCase,
		TextAlignHorizontal: s.TextAlignHorizontal,
		TextAlignVertical:   s.TextAlignVertical,
	}
	if s.FontSize > 0 {
		if s.LineHeightPx > 0 {
			ts.LineHeight = formatNumber(roundTo(s.LineHeightPx/s.FontSize, 2)) + "em"
		}
		if s.LetterSpacing != 0 {
			ts.LetterSpacing = formatNumber(roundTo(s.LetterSpacing/s.FontSize*100, 2)) + "%"
		}
	}
	return ts
}

// VisualsExtractor interns fills, strokes and effects, and copies opacity, stroke
// weight and border radius as literals.
func VisualsExtractor(n *figma.Node, out *SimplifiedNode, ctx *TraversalContext) {
	if fills := buildFills(n, n.Fills); len(fills) > 0 {
		out.Fills = ctx.Registry.InternNamed(publishedStyleName(n, ctx, "fill", "fills"), fills)
	}

	if stroke, weight, ok := buildStroke(n); ok {
		out.Strokes = ctx.Registry.InternNamed(publishedStyleName(n, ctx, "stroke", "strokes"), stroke)
		out.StrokeWeight = weight
	}

	if effects := buildEffects(n); !effects.empty() {
		out.Effects = ctx.Registry.InternNamed(publishedStyleName(n, ctx, "effect", "effects"), effects)
	}

	if n.Opacity != nil && *n.Opacity != 1 {
		opacity := *n.Opacity
		out.Opacity = &opacity
	}
	out.BorderRadius = borderRadius(n)
}

// ComponentExtractor records component identity on instances and variants.
func ComponentExtractor(n *figma.Node, out *SimplifiedNode, ctx *TraversalContext) {
	switch n.Type {
	case "INSTANCE":
		out.ComponentID = n.ComponentID
		out.ComponentProperties = componentProperties(n.ComponentProperties)
	case "COMPONENT":
		if ctx.Parent != nil && ctx.Parent.Type == "COMPONENT_SET" {
			out.ComponentSetID = ctx.Parent.ID
		}
	}
}

// componentProperties flattens instance properties into name/value/type triples
// sorted by name.
func componentProperties(props map[string]figma.ComponentProperty) []ComponentProperty {
	if len(props) == 0 {
		return nil
	}
	out := make([]ComponentProperty, 0, len(props))
	for name, p := range props {
		out = append(out, ComponentProperty{Name: name, Value: fmt.Sprint(p.Value), Type: p.Type})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// publishedStyleName returns the name of the published style n references under
// one of keys, or "" when the node uses local values.
func publishedStyleName(n *figma.Node, ctx *TraversalContext, keys ...string) string {
	if len(n.Styles) == 0 || len(ctx.Styles) == 0 {
		return ""
	}
	for _, key := range keys {
		id, ok := n.Styles[key]
		if !ok {
			continue
		}
		if s, ok := ctx.Styles[id]; ok && s.Name != "" {
			return s.Name
		}
	}
	return ""
}

// Extractor presets.
var (
	AllExtractors = []Extractor{LayoutExtractor, TextExtractor, VisualsExtractor, ComponentExtractor}
	LayoutAndText = []Extractor{LayoutExtractor, TextExtractor}
	ContentOnly   = []Extractor{TextExtractor}
	VisualsOnly   = []Extractor{VisualsExtractor}
	LayoutOnly    = []Extractor{LayoutExtractor}
)

var presets = map[string][]Extractor{
	"all":             AllExtractors,
	"layout-and-text": LayoutAndText,
	"content":         ContentOnly,
	"visuals":         VisualsOnly,
	"layout":          LayoutOnly,
}

// PresetNames lists the names accepted by Preset.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a copy of the extractor set registered under name. The empty name
// selects "all".
func Preset(name string) ([]Extractor, error) {
	if name == "" {
		name = "all"
	}
	set, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown extractor preset %q (expected one of %s)", name, strings.Join(PresetNames(), ", "))
	}
	return append([]Extractor(nil), set...), nil
}
