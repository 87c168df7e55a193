package extractor

import (
	"strings"

	"github.com/kataras/figma-context/pkg/figma"
)

// buildEffects converts the visible effects of n into CSS shorthands. Shadows on
// TEXT nodes become text-shadow, on everything else box-shadow.
func buildEffects(n *figma.Node) Effects {
	var shadows, filters, backdrops []string
	for i := range n.Effects {
		e := &n.Effects[i]
		if !e.IsVisible() {
			continue
		}
		switch e.Type {
		case "DROP_SHADOW":
			shadows = append(shadows, shadowCSS(e))
		case "INNER_SHADOW":
			shadows = append(shadows, "inset "+shadowCSS(e))
		case "LAYER_BLUR":
			filters = append(filters, "blur("+px(e.Radius)+")")
		case "BACKGROUND_BLUR":
			backdrops = append(backdrops, "blur("+px(e.Radius)+")")
		}
	}

	var out Effects
	if len(shadows) > 0 {
		if n.Type == "TEXT" {
			out.TextShadow = strings.Join(shadows, ", ")
		} else {
			out.BoxShadow = strings.Join(shadows, ", ")
		}
	}
	out.Filter = strings.Join(filters, " ")
	out.BackdropFilter = strings.Join(backdrops, " ")
	return out
}

func shadowCSS(e *figma.Effect) string {
	var x, y float64
	if e.Offset != nil {
		x, y = e.Offset.X, e.Offset.Y
	}
	return strings.Join([]string{px(x), px(y), px(e.Radius), px(e.Spread), colorToRGBA(e.Color, 1)}, " ")
}
