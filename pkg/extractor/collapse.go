package extractor

import "github.com/kataras/figma-context/pkg/figma"

// svgEligible are the simplified types that export cleanly as part of one SVG.
var svgEligible = map[string]bool{
	"IMAGE-SVG":       true,
	"STAR":            true,
	"LINE":            true,
	"ELLIPSE":         true,
	"REGULAR_POLYGON": true,
	"RECTANGLE":       true,
}

// CollapseSVGContainers is an AfterChildrenFunc that turns a FRAME, GROUP or
// INSTANCE made only of vector shapes into a single IMAGE-SVG leaf. Nested
// containers collapse bottom-up, so a group of collapsed groups collapses too.
func CollapseSVGContainers(n *figma.Node, out *SimplifiedNode, children []*SimplifiedNode) []*SimplifiedNode {
	switch n.Type {
	case "FRAME", "GROUP", "INSTANCE":
	default:
		return children
	}
	if len(children) == 0 {
		return children
	}
	for _, c := range children {
		if !svgEligible[c.Type] {
			return children
		}
	}

	out.Type = "IMAGE-SVG"
	return nil
}
