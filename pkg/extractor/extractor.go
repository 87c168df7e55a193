package extractor

import (
	"github.com/kataras/figma-context/pkg/figma"
)

// Extractor reads one concern off a raw node and writes its projection onto out.
// Style values go through ctx.Registry; only the returned id is stored on out.
type Extractor func(node *figma.Node, out *SimplifiedNode, ctx *TraversalContext)

// AfterChildrenFunc receives a node, its simplified form and its simplified children,
// and returns the children to keep. It may also rewrite out (e.g. its Type).
type AfterChildrenFunc func(node *figma.Node, out *SimplifiedNode, children []*SimplifiedNode) []*SimplifiedNode

// TraversalOptions bounds and customizes a traversal.
type TraversalOptions struct {
	// MaxDepth stops descending below this depth; roots are depth 0. <= 0 is unlimited.
	MaxDepth int
	// NodeFilter prunes a node and its subtree when it returns false.
	NodeFilter func(node *figma.Node) bool
	// AfterChildren runs once the children of a node have been simplified.
	AfterChildren AfterChildrenFunc
	// Styles are the published styles of the file, keyed by style id.
	Styles map[string]figma.Style
}

// TraversalContext is handed to every extractor call.
type TraversalContext struct {
	Registry *Registry
	// Depth of the current node; roots are 0.
	Depth int
	// Parent is the raw parent of the current node, nil for roots.
	Parent *figma.Node
	Styles map[string]figma.Style
	// NodeFilter is the traversal's pruning predicate, nil when nothing is pruned.
	NodeFilter func(node *figma.Node) bool
}

// Extract simplifies the trees under roots by running extractors, in order, on every
// visited node. Nodes that are invisible or rejected by opts.NodeFilter are dropped
// together with their subtree before any extractor sees them.
//
// Styles are interned into reg; a nil reg gets a fresh Registry, which is returned.
// A nil roots slice, or nil entries in it, contribute nothing.
func Extract(roots []*figma.Node, extractors []Extractor, opts TraversalOptions, reg *Registry) ([]*SimplifiedNode, *Registry) {
	if reg == nil {
		reg = NewRegistry()
	}

	nodes := make([]*SimplifiedNode, 0, len(roots))
	for _, root := range roots {
		if root == nil {
			continue
		}
		ctx := &TraversalContext{Registry: reg, Styles: opts.Styles, NodeFilter: opts.NodeFilter}
		if out := processNode(root, extractors, opts, ctx); out != nil {
			nodes = append(nodes, out)
		}
	}
	return nodes, reg
}

func shouldProcess(n *figma.Node, opts TraversalOptions) bool {
	if !n.IsVisible() {
		return false
	}
	return opts.NodeFilter == nil || opts.NodeFilter(n)
}

func processNode(n *figma.Node, extractors []Extractor, opts TraversalOptions, ctx *TraversalContext) *SimplifiedNode {
	if !shouldProcess(n, opts) {
		return nil
	}

	out := &SimplifiedNode{
		ID:   n.ID,
		Name: n.Name,
		Type: n.Type,
	}
	if n.Type == "VECTOR" {
		out.Type = "IMAGE-SVG"
	}

	for _, extract := range extractors {
		runExtractor(extract, n, out, ctx)
	}

	if len(n.Children) == 0 || (opts.MaxDepth > 0 && ctx.Depth >= opts.MaxDepth) {
		return out
	}

	childCtx := &TraversalContext{
		Registry:   ctx.Registry,
		Depth:      ctx.Depth + 1,
		Parent:     n,
		Styles:     ctx.Styles,
		NodeFilter: ctx.NodeFilter,
	}
	children := make([]*SimplifiedNode, 0, len(n.Children))
	for i := range n.Children {
		if child := processNode(&n.Children[i], extractors, opts, childCtx); child != nil {
			children = append(children, child)
		}
	}

	if opts.AfterChildren != nil {
		children = opts.AfterChildren(n, out, children)
	}
	if len(children) > 0 {
		out.Children = children
	}
	return out
}

// runExtractor isolates a failing extractor: its concern is left unset and the
// traversal continues.
func runExtractor(extract Extractor, n *figma.Node, out *SimplifiedNode, ctx *TraversalContext) {
	defer func() {
		_ = recover()
	}()
	extract(n, out, ctx)
}
