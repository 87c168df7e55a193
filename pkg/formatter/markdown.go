package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kataras/figma-context/pkg/extractor"
)

// ToMarkdown renders a simplified design as a markdown document: the shared styles
// as CSS variables, a layout table, the node outline referencing those styles and
// the component definitions.
func ToMarkdown(design *extractor.Design) string {
	var sb strings.Builder

	name := design.Name
	if name == "" {
		name = "Untitled"
	}
	sb.WriteString(fmt.Sprintf("# Figma Design Context - %s\n\n", name))

	var (
		colors, typography, effects []string
		layouts                     []extractor.Entry
	)

	if design.GlobalVars.Styles != nil {
		for _, e := range design.GlobalVars.Styles.Entries() {
			varName := toKebabCase(e.ID)
			switch v := e.Value.(type) {
			case extractor.Fills:
				colors = append(colors, fmt.Sprintf("--%s: %s;", varName, fillsCSS(v)))
			case extractor.Stroke:
				colors = append(colors, fmt.Sprintf("--%s: %s;", varName, fillsCSS(v.Colors)))
			case extractor.StyleString:
				colors = append(colors, fmt.Sprintf("--%s: %s;", varName, string(v)))
			case extractor.TextStyle:
				typography = append(typography, fmt.Sprintf("--%s: %s;", varName, fontCSS(v)))
			case extractor.Effects:
				effects = append(effects, effectsCSS(varName, v)...)
			case extractor.Layout:
				layouts = append(layouts, e)
			}
		}
	}

	if len(colors)+len(typography)+len(effects) > 0 {
		sb.WriteString("## Design System\n\n")
		writeCSSBlock(&sb, "Colors & Paints", colors)
		writeCSSBlock(&sb, "Typography", typography)
		writeCSSBlock(&sb, "Effects", effects)
	}

	if len(layouts) > 0 {
		sb.WriteString("## Layouts\n\n")
		sb.WriteString("| ID | Mode | Justify | Align | Gap | Padding | Sizing |\n")
		sb.WriteString("|----|------|---------|-------|-----|---------|--------|\n")
		for _, e := range layouts {
			l := e.Value.(extractor.Layout)
			sizing := ""
			if l.Sizing != nil {
				sizing = strings.Trim(l.Sizing.Horizontal+" / "+l.Sizing.Vertical, " /")
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %s | %s | %s |\n",
				e.ID, l.Mode, l.JustifyContent, l.AlignItems, l.Gap, l.Padding, sizing))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Nodes\n\n")
	if len(design.Nodes) == 0 {
		sb.WriteString("_No nodes._\n\n")
	} else {
		design.Walk(func(n *extractor.SimplifiedNode, depth int) {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(nodeLine(n))
			sb.WriteString("\n")
		})
		sb.WriteString("\n")
	}

	if len(design.Components) > 0 {
		sb.WriteString("## Components\n\n")
		sb.WriteString("| ID | Name | Key | Component Set |\n")
		sb.WriteString("|----|------|-----|---------------|\n")
		for _, id := range sortedKeys(design.Components) {
			c := design.Components[id]
			set := c.ComponentSetID
			if s, ok := design.ComponentSets[set]; ok && s.Name != "" {
				set = fmt.Sprintf("%s (%s)", s.Name, set)
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n", id, c.Name, c.Key, set))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeCSSBlock(sb *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	sb.WriteString("```css\n")
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\n")
}

func nodeLine(n *extractor.SimplifiedNode) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- **%s** `%s` (%s)", n.Name, n.Type, n.ID))
	if n.Text != "" {
		sb.WriteString(fmt.Sprintf(" %q", n.Text))
	}

	var refs []string
	add := func(label, value string) {
		if value != "" {
			refs = append(refs, label+": "+value)
		}
	}
	add("layout", n.Layout)
	add("text", n.TextStyle)
	add("fills", n.Fills)
	add("strokes", n.Strokes)
	add("strokeWeight", n.StrokeWeight)
	add("effects", n.Effects)
	add("radius", n.BorderRadius)
	if n.Opacity != nil {
		add("opacity", fmt.Sprintf("%g", *n.Opacity))
	}
	add("component", n.ComponentID)
	for _, p := range n.ComponentProperties {
		add(p.Name, p.Value)
	}

	if len(refs) > 0 {
		sb.WriteString(" - ")
		sb.WriteString(strings.Join(refs, ", "))
	}
	return sb.String()
}

func fillsCSS(fills []extractor.Fill) string {
	values := make([]string, 0, len(fills))
	for _, f := range fills {
		switch {
		case f.Gradient != nil:
			values = append(values, f.Gradient.Gradient)
		case f.Image != nil:
			values = append(values, fmt.Sprintf("url(%s)", f.Image.ImageRef))
		case f.Pattern != nil:
			values = append(values, fmt.Sprintf("url(%s)", f.Pattern.PatternSource.NodeID))
		default:
			values = append(values, f.Color)
		}
	}
	return strings.Join(values, ", ")
}

// fontCSS renders a text style in CSS font shorthand.
func fontCSS(s extractor.TextStyle) string {
	var parts []string
	if s.FontWeight > 0 {
		parts = append(parts, fmt.Sprintf("%g", s.FontWeight))
	}
	if s.FontSize > 0 {
		size := fmt.Sprintf("%gpx", s.FontSize)
		if s.LineHeight != "" {
			size += "/" + s.LineHeight
		}
		parts = append(parts, size)
	}
	if s.FontFamily != "" {
		parts = append(parts, fmt.Sprintf("'%s'", s.FontFamily))
	}
	return strings.Join(parts, " ")
}

func effectsCSS(varName string, e extractor.Effects) []string {
	var lines []string
	if e.BoxShadow != "" {
		lines = append(lines, fmt.Sprintf("--%s-box-shadow: %s;", varName, e.BoxShadow))
	}
	if e.TextShadow != "" {
		lines = append(lines, fmt.Sprintf("--%s-text-shadow: %s;", varName, e.TextShadow))
	}
	if e.Filter != "" {
		lines = append(lines, fmt.Sprintf("--%s-filter: %s;", varName, e.Filter))
	}
	if e.BackdropFilter != "" {
		lines = append(lines, fmt.Sprintf("--%s-backdrop-filter: %s;", varName, e.BackdropFilter))
	}
	return lines
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toKebabCase converts a string to kebab-case format (lowercase with hyphens).
// Used for CSS variable names; registry ids such as "fill_1" become "fill-1".
func toKebabCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, "/", "-")

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}

	return result.String()
}
