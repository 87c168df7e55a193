package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kataras/figma-context/pkg/figma"
)

func TestColorToHex(t *testing.T) {
	tests := []struct {
		name  string
		color *figma.Color
		want  string
	}{
		{name: "nil", color: nil, want: "#000000"},
		{name: "red", color: &figma.Color{R: 1, A: 1}, want: "#FF0000"},
		{name: "rounded channels", color: &figma.Color{R: 0.2, G: 0.4, B: 0.6, A: 1}, want: "#336699"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colorToHex(tt.color))
		})
	}
}

func TestBuildFills(t *testing.T) {
	n := &figma.Node{Type: "RECTANGLE"}
	paints := []figma.Paint{
		{Type: "SOLID", Color: &figma.Color{R: 1, A: 1}},
		{Type: "SOLID", Color: &figma.Color{B: 1, A: 1}, Visible: ptr(false)},
		{Type: "SOLID", Color: &figma.Color{G: 1, A: 1}, Opacity: ptr(0.5)},
		{Type: "VIDEO"},
	}

	fills := buildFills(n, paints)

	// Topmost paint first, hidden and unsupported paints dropped.
	assert.Equal(t, Fills{{Color: "rgba(0, 255, 0, 0.5)"}, {Color: "#FF0000"}}, fills)
}

func TestFormatColor_AlphaFromColorAndOpacity(t *testing.T) {
	assert.Equal(t, "rgba(0, 0, 0, 0.25)", formatColor(&figma.Color{A: 0.5}, 0.5))
	assert.Equal(t, "#FFFFFF", formatColor(&figma.Color{R: 1, G: 1, B: 1, A: 0.999}, 1))
}

func TestGradientCSS(t *testing.T) {
	stops := []figma.ColorStop{
		{Position: 0, Color: figma.Color{R: 1, A: 1}},
		{Position: 1, Color: figma.Color{B: 1, A: 0.5}},
	}

	tests := []struct {
		name  string
		paint figma.Paint
		want  string
	}{
		{
			name: "linear left to right",
			paint: figma.Paint{
				Type:                    "GRADIENT_LINEAR",
				GradientHandlePositions: []figma.Vector{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}, {X: 0, Y: 1}},
				GradientStops:           stops,
			},
			want: "linear-gradient(90deg, #FF0000 0%, rgba(0, 0, 255, 0.5) 100%)",
		},
		{
			name:  "linear without handles",
			paint: figma.Paint{Type: "GRADIENT_LINEAR", GradientStops: stops},
			want:  "linear-gradient(180deg, #FF0000 0%, rgba(0, 0, 255, 0.5) 100%)",
		},
		{
			name: "radial",
			paint: figma.Paint{
				Type:                    "GRADIENT_RADIAL",
				GradientHandlePositions: []figma.Vector{{X: 0.5, Y: 0.25}, {X: 1, Y: 0.25}},
				GradientStops:           stops,
			},
			want: "radial-gradient(circle at 50% 25%, #FF0000 0%, rgba(0, 0, 255, 0.5) 100%)",
		},
		{
			name: "angular",
			paint: figma.Paint{
				Type:                    "GRADIENT_ANGULAR",
				GradientHandlePositions: []figma.Vector{{X: 0.5, Y: 0.5}, {X: 0.5, Y: 1}},
				GradientStops:           stops,
			},
			want: "conic-gradient(from 180deg at 50% 50%, #FF0000 0%, rgba(0, 0, 255, 0.5) 100%)",
		},
		{
			name:  "diamond",
			paint: figma.Paint{Type: "GRADIENT_DIAMOND", GradientStops: stops},
			want:  "radial-gradient(ellipse at 50% 50%, #FF0000 0%, rgba(0, 0, 255, 0.5) 100%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gradientCSS(&tt.paint))
		})
	}
}

func TestBuildImageFill(t *testing.T) {
	transform := figma.Transform{{0.5, 0, 0.25}, {0, 0.5, 0.25}}

	t.Run("leaf with crop", func(t *testing.T) {
		n := &figma.Node{Type: "RECTANGLE"}
		f := buildImageFill(n, &figma.Paint{Type: "IMAGE", ImageRef: "abc", ScaleMode: "STRETCH", ImageTransform: transform})

		assert.Equal(t, "fill", f.ObjectFit)
		assert.False(t, f.IsBackground)
		require.NotNil(t, f.ImageDownloadArguments)
		assert.True(t, f.ImageDownloadArguments.NeedsCropping)
		assert.False(t, f.ImageDownloadArguments.RequiresImageDimensions)
		assert.Equal(t, transform, f.ImageDownloadArguments.CropTransform)
		assert.Len(t, f.ImageDownloadArguments.FilenameSuffix, 6)
		assert.Equal(t, f.ImageDownloadArguments.FilenameSuffix, transformSuffix(transform), "suffix is stable")
	})

	t.Run("tiled background", func(t *testing.T) {
		n := &figma.Node{Type: "FRAME", Children: []figma.Node{{Type: "TEXT"}}}
		f := buildImageFill(n, &figma.Paint{Type: "IMAGE", ImageRef: "abc", ScaleMode: "TILE", ScalingFactor: ptr(0.5)})

		assert.True(t, f.IsBackground)
		assert.Equal(t, "repeat", f.BackgroundRepeat)
		assert.Equal(t, "50%", f.BackgroundSize)
		assert.Empty(t, f.ObjectFit)
		assert.True(t, f.ImageDownloadArguments.RequiresImageDimensions)
		assert.False(t, f.ImageDownloadArguments.NeedsCropping)
	})

	t.Run("stretch without transform needs no crop", func(t *testing.T) {
		f := buildImageFill(&figma.Node{}, &figma.Paint{Type: "IMAGE", ImageRef: "abc", ScaleMode: "STRETCH"})
		assert.False(t, f.ImageDownloadArguments.NeedsCropping)
		assert.Empty(t, f.ImageDownloadArguments.FilenameSuffix)
	})
}

func TestBuildPatternFill(t *testing.T) {
	f := buildPatternFill(&figma.Paint{
		Type:                "PATTERN",
		SourceNodeID:        "5:6",
		ScalingFactor:       ptr(2.0),
		HorizontalAlignment: "CENTER",
		VerticalAlignment:   "END",
	})

	assert.Equal(t, PatternSource{Type: "IMAGE-PNG", NodeID: "5:6"}, f.PatternSource)
	assert.Equal(t, "repeat", f.BackgroundRepeat)
	assert.Equal(t, "200%", f.BackgroundSize)
	assert.Equal(t, "center bottom", f.BackgroundPosition)
}

func TestFill_Encoding(t *testing.T) {
	fills := Fills{
		{Color: "#FFFFFF"},
		{Pattern: &PatternFill{Type: "PATTERN", PatternSource: PatternSource{Type: "IMAGE-PNG", NodeID: "1:2"}, BackgroundRepeat: "repeat", BackgroundSize: "auto", BackgroundPosition: "left top"}},
	}
	b, err := json.Marshal(fills)
	require.NoError(t, err)
	assert.JSONEq(t, `["#FFFFFF",{"type":"PATTERN","patternSource":{"type":"IMAGE-PNG","nodeId":"1:2"},"backgroundRepeat":"repeat","backgroundSize":"auto","backgroundPosition":"left top"}]`, string(b))
}

func TestVisualsExtractor(t *testing.T) {
	n := &figma.Node{
		ID:                      "1",
		Type:                    "FRAME",
		Fills:                   []figma.Paint{{Type: "SOLID", Color: &figma.Color{R: 1, G: 1, B: 1, A: 1}}},
		Strokes:                 []figma.Paint{{Type: "SOLID", Color: &figma.Color{A: 1}}},
		StrokeWeight:            ptr(1.0),
		IndividualStrokeWeights: &figma.StrokeWeights{Top: 0, Right: 0, Bottom: 2, Left: 0},
		StrokeDashes:            []float64{4, 2},
		Effects: []figma.Effect{
			{Type: "DROP_SHADOW", Color: &figma.Color{A: 0.25}, Offset: &figma.Vector{X: 0, Y: 4}, Radius: 8},
			{Type: "INNER_SHADOW", Color: &figma.Color{R: 1, A: 1}, Offset: &figma.Vector{X: 1, Y: 1}, Radius: 2, Spread: 1},
			{Type: "LAYER_BLUR", Radius: 4, Visible: ptr(false)},
			{Type: "BACKGROUND_BLUR", Radius: 10},
		},
		Opacity:              ptr(0.8),
		RectangleCornerRadii: []float64{8, 8, 0, 0},
	}
	nodes, reg := Extract([]*figma.Node{n}, VisualsOnly, TraversalOptions{}, nil)
	out := nodes[0]

	fills, _ := reg.Get(out.Fills)
	assert.Equal(t, Fills{{Color: "#FFFFFF"}}, fills)

	stroke, _ := reg.Get(out.Strokes)
	assert.Equal(t, Stroke{Colors: []Fill{{Color: "#000000"}}, StrokeDashes: []float64{4, 2}}, stroke)
	assert.Equal(t, "0px 0px 2px", out.StrokeWeight)

	effects, _ := reg.Get(out.Effects)
	assert.Equal(t, Effects{
		BoxShadow:      "0px 4px 8px 0px rgba(0, 0, 0, 0.25), inset 1px 1px 2px 1px rgba(255, 0, 0, 1)",
		BackdropFilter: "blur(10px)",
	}, effects)

	require.NotNil(t, out.Opacity)
	assert.Equal(t, 0.8, *out.Opacity)
	assert.Equal(t, "8px 8px 0px 0px", out.BorderRadius)
}

func TestVisualsExtractor_TextShadowAndUniformValues(t *testing.T) {
	n := &figma.Node{
		ID:           "1",
		Type:         "TEXT",
		Strokes:      []figma.Paint{{Type: "SOLID", Color: &figma.Color{A: 1}}},
		StrokeWeight: ptr(2.0),
		Effects:      []figma.Effect{{Type: "DROP_SHADOW", Color: &figma.Color{A: 1}, Offset: &figma.Vector{X: 1, Y: 1}}},
		Opacity:      ptr(1.0),
		CornerRadius: 4,
	}
	nodes, reg := Extract([]*figma.Node{n}, VisualsOnly, TraversalOptions{}, nil)
	out := nodes[0]

	effects, _ := reg.Get(out.Effects)
	assert.Equal(t, Effects{TextShadow: "1px 1px 0px 0px rgba(0, 0, 0, 1)"}, effects)
	assert.Equal(t, "2px", out.StrokeWeight)
	assert.Nil(t, out.Opacity)
	assert.Equal(t, "4px", out.BorderRadius)
	assert.Empty(t, out.Fills)
}

func TestVisualsExtractor_PublishedFillStyle(t *testing.T) {
	paint := []figma.Paint{{Type: "SOLID", Color: &figma.Color{R: 1, A: 1}}}
	roots := []*figma.Node{
		{ID: "1", Type: "RECTANGLE", Fills: paint, Styles: map[string]string{"fill": "S:red"}},
		{ID: "2", Type: "RECTANGLE", Fills: paint},
	}
	opts := TraversalOptions{Styles: map[string]figma.Style{"S:red": {Name: "Brand/Red", StyleType: "FILL"}}}
	nodes, reg := Extract(roots, VisualsOnly, opts, nil)

	assert.Equal(t, "Brand/Red", nodes[0].Fills)
	assert.Equal(t, "Brand/Red", nodes[1].Fills)
	assert.Equal(t, 1, reg.Len())
}

func TestCSSShorthand_KeepsZeroWhenAsked(t *testing.T) {
	assert.Equal(t, "0px", CSSShorthand(0, 0, 0, 0, false))
	assert.Empty(t, CSSShorthand(0, 0, 0, 0, true))
}
