package extractor

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/kataras/figma-context/pkg/figma"
)

// colorToHex converts a Figma RGBA color (with 0-1 float values) to standard hexadecimal format (#RRGGBB).
// Returns "#000000" if the color is nil.
func colorToHex(color *figma.Color) string {
	if color == nil {
		return "#000000"
	}

	r := int(math.Round(color.R * 255))
	g := int(math.Round(color.G * 255))
	b := int(math.Round(color.B * 255))

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// colorToRGBA renders color as rgba() with its alpha scaled by opacity.
func colorToRGBA(color *figma.Color, opacity float64) string {
	if color == nil {
		return "rgba(0, 0, 0, 0)"
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)",
		int(math.Round(color.R*255)),
		int(math.Round(color.G*255)),
		int(math.Round(color.B*255)),
		formatNumber(roundTo(color.A*opacity, 2)),
	)
}

// formatColor renders color as #RRGGBB when it is fully opaque after applying
// opacity and as rgba() otherwise.
func formatColor(color *figma.Color, opacity float64) string {
	if color == nil {
		return colorToRGBA(nil, 0)
	}
	if roundTo(color.A*opacity, 2) == 1 {
		return colorToHex(color)
	}
	return colorToRGBA(color, opacity)
}

func paintOpacity(p *figma.Paint) float64 {
	if p.Opacity == nil {
		return 1
	}
	return *p.Opacity
}

// buildFills converts the visible paints of a node into CSS background order: the
// topmost Figma paint comes first. Unsupported paint types are dropped.
func buildFills(n *figma.Node, paints []figma.Paint) Fills {
	var fills Fills
	for i := len(paints) - 1; i >= 0; i-- {
		p := &paints[i]
		if !p.IsVisible() {
			continue
		}
		if f, ok := parsePaint(n, p); ok {
			fills = append(fills, f)
		}
	}
	return fills
}

// parsePaint converts a single paint. ok is false for paint types with no CSS
// equivalent (video, emoji) and for malformed paints.
func parsePaint(n *figma.Node, p *figma.Paint) (Fill, bool) {
	switch p.Type {
	case "SOLID":
		if p.Color == nil {
			return Fill{}, false
		}
		return Fill{Color: formatColor(p.Color, paintOpacity(p))}, true
	case "GRADIENT_LINEAR", "GRADIENT_RADIAL", "GRADIENT_ANGULAR", "GRADIENT_DIAMOND":
		if len(p.GradientStops) == 0 {
			return Fill{}, false
		}
		return Fill{Gradient: &GradientFill{Type: p.Type, Gradient: gradientCSS(p)}}, true
	case "IMAGE":
		if p.ImageRef == "" {
			return Fill{}, false
		}
		return Fill{Image: buildImageFill(n, p)}, true
	case "PATTERN":
		if p.SourceNodeID == "" {
			return Fill{}, false
		}
		return Fill{Pattern: buildPatternFill(p)}, true
	default:
		return Fill{}, false
	}
}

func gradientCSS(p *figma.Paint) string {
	stops := make([]string, 0, len(p.GradientStops))
	opacity := paintOpacity(p)
	for _, s := range p.GradientStops {
		c := s.Color
		stops = append(stops, formatColor(&c, opacity)+" "+formatNumber(roundTo(s.Position*100, 2))+"%")
	}
	joined := strings.Join(stops, ", ")

	center := "50% 50%"
	if len(p.GradientHandlePositions) > 0 {
		h := p.GradientHandlePositions[0]
		center = formatNumber(roundTo(h.X*100, 2)) + "% " + formatNumber(roundTo(h.Y*100, 2)) + "%"
	}

	switch p.Type {
	case "GRADIENT_LINEAR":
		return fmt.Sprintf("linear-gradient(%sdeg, %s)", formatNumber(gradientAngle(p.GradientHandlePositions)), joined)
	case "GRADIENT_RADIAL":
		return fmt.Sprintf("radial-gradient(circle at %s, %s)", center, joined)
	case "GRADIENT_ANGULAR":
		return fmt.Sprintf("conic-gradient(from %sdeg at %s, %s)", formatNumber(gradientAngle(p.GradientHandlePositions)), center, joined)
	default:
		// CSS has no diamond gradient; an ellipse is the closest match.
		return fmt.Sprintf("radial-gradient(ellipse at %s, %s)", center, joined)
	}
}

// gradientAngle returns the CSS angle of the first two handles: 0deg points up and
// angles grow clockwise. Without handles the CSS default (180deg, top to bottom) is used.
func gradientAngle(handles []figma.Vector) float64 {
	if len(handles) < 2 {
		return 180
	}
	dx := handles[1].X - handles[0].X
	dy := handles[1].Y - handles[0].Y
	deg := math.Atan2(dx, -dy) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return roundTo(deg, 2)
}

func buildImageFill(n *figma.Node, p *figma.Paint) *ImageFill {
	f := &ImageFill{
		Type:          "IMAGE",
		ImageRef:      p.ImageRef,
		ScaleMode:     p.ScaleMode,
		ScalingFactor: p.ScalingFactor,
	}

	// Containers paint the image as a CSS background; leaves render it as <img>.
	if len(n.Children) > 0 {
		f.IsBackground = true
		f.BackgroundRepeat = "no-repeat"
		switch p.ScaleMode {
		case "FILL":
			f.BackgroundSize = "cover"
		case "FIT":
			f.BackgroundSize = "contain"
		case "STRETCH":
			f.BackgroundSize = "100% 100%"
		case "TILE":
			f.BackgroundRepeat = "repeat"
			f.BackgroundSize = "auto"
			if p.ScalingFactor != nil {
				f.BackgroundSize = formatNumber(roundTo(*p.ScalingFactor*100, 2)) + "%"
			}
		}
	} else {
		switch p.ScaleMode {
		case "FILL":
			f.ObjectFit = "cover"
		case "FIT":
			f.ObjectFit = "contain"
		case "STRETCH":
			f.ObjectFit = "fill"
		case "TILE":
			f.ObjectFit = "none"
		}
	}

	args := &ImageDownloadArguments{
		NeedsCropping:           p.ScaleMode == "STRETCH" && len(p.ImageTransform) > 0,
		RequiresImageDimensions: p.ScaleMode == "TILE",
	}
	if args.NeedsCropping {
		args.CropTransform = p.ImageTransform
		args.FilenameSuffix = transformSuffix(p.ImageTransform)
	}
	f.ImageDownloadArguments = args
	return f
}

// transformSuffix derives a short stable file name suffix from a crop transform so
// that differently cropped uses of one image do not overwrite each other.
func transformSuffix(t figma.Transform) string {
	h := fnv.New32a()
	for _, row := range t {
		for _, v := range row {
			fmt.Fprintf(h, "%g,", v)
		}
	}
	return fmt.Sprintf("%08x", h.Sum32())[:6]
}

func buildPatternFill(p *figma.Paint) *PatternFill {
	f := &PatternFill{
		Type:             "PATTERN",
		PatternSource:    PatternSource{Type: "IMAGE-PNG", NodeID: p.SourceNodeID},
		BackgroundRepeat: "repeat",
		BackgroundSize:   "auto",
	}
	if p.ScalingFactor != nil {
		f.BackgroundSize = formatNumber(roundTo(*p.ScalingFactor*100, 2)) + "%"
	}

	horizontal := map[string]string{"START": "left", "CENTER": "center", "END": "right"}[p.HorizontalAlignment]
	if horizontal == "" {
		horizontal = "left"
	}
	vertical := map[string]string{"START": "top", "CENTER": "center", "END": "bottom"}[p.VerticalAlignment]
	if vertical == "" {
		vertical = "top"
	}
	f.BackgroundPosition = horizontal + " " + vertical
	return f
}

// buildStroke returns the stroke record and the literal weight of n. ok is false
// when n has no visible stroke paint.
func buildStroke(n *figma.Node) (stroke Stroke, weight string, ok bool) {
	for i := range n.Strokes {
		p := &n.Strokes[i]
		if !p.IsVisible() {
			continue
		}
		if f, parsed := parsePaint(n, p); parsed {
			stroke.Colors = append(stroke.Colors, f)
		}
	}
	if len(stroke.Colors) == 0 {
		return Stroke{}, "", false
	}
	stroke.StrokeDashes = n.StrokeDashes

	if w := n.IndividualStrokeWeights; w != nil {
		weight = CSSShorthand(w.Top, w.Right, w.Bottom, w.Left, false)
	} else if n.StrokeWeight != nil && *n.StrokeWeight > 0 {
		weight = px(*n.StrokeWeight)
	}
	return stroke, weight, true
}

// borderRadius renders the corner radii of n, or "" when the corners are square.
// Per-corner radii are listed top-left, top-right, bottom-right, bottom-left.
func borderRadius(n *figma.Node) string {
	if r := n.RectangleCornerRadii; len(r) == 4 {
		if r[0] == r[1] && r[1] == r[2] && r[2] == r[3] {
			if r[0] == 0 {
				return ""
			}
			return px(r[0])
		}
		return strings.Join([]string{px(r[0]), px(r[1]), px(r[2]), px(r[3])}, " ")
	}
	if n.CornerRadius > 0 {
		return px(n.CornerRadius)
	}
	return ""
}
