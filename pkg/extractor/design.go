package extractor

import (
	"sort"

	"github.com/kataras/figma-context/pkg/figma"
)

// SimplifyFile simplifies every page of a file response.
//
// A nil extractors slice selects AllExtractors. Unless opts says otherwise, the
// file's published styles name registry entries and SVG-only containers are collapsed.
func SimplifyFile(file *figma.FileResponse, extractors []Extractor, opts TraversalOptions) *Design {
	if file == nil {
		return newDesign("", nil, nil, nil)
	}

	roots := make([]*figma.Node, 0, len(file.Document.Children))
	for i := range file.Document.Children {
		roots = append(roots, &file.Document.Children[i])
	}
	return simplify(file.Name, roots, file.Components, file.ComponentSets, file.Styles, extractors, opts)
}

// SimplifyNodes simplifies the requested nodes of a nodes response, in request
// order. IDs the API could not resolve are skipped. With no nodeIDs every returned
// node is used, ordered by id.
func SimplifyNodes(resp *figma.NodesResponse, nodeIDs []string, extractors []Extractor, opts TraversalOptions) *Design {
	if resp == nil {
		return newDesign("", nil, nil, nil)
	}

	if len(nodeIDs) == 0 {
		for id := range resp.Nodes {
			nodeIDs = append(nodeIDs, id)
		}
		sort.Strings(nodeIDs)
	}

	var (
		roots         []*figma.Node
		components    = make(map[string]figma.Component)
		componentSets = make(map[string]figma.ComponentSet)
		styles        = make(map[string]figma.Style)
	)
	for _, id := range nodeIDs {
		data, ok := resp.Nodes[id]
		if !ok || data == nil {
			continue
		}
		roots = append(roots, &data.Document)
		for k, v := range data.Components {
			components[k] = v
		}
		for k, v := range data.ComponentSets {
			componentSets[k] = v
		}
		for k, v := range data.Styles {
			styles[k] = v
		}
	}
	return simplify(resp.Name, roots, components, componentSets, styles, extractors, opts)
}

func simplify(
	name string,
	roots []*figma.Node,
	components map[string]figma.Component,
	componentSets map[string]figma.ComponentSet,
	styles map[string]figma.Style,
	extractors []Extractor,
	opts TraversalOptions,
) *Design {
	if extractors == nil {
		extractors = AllExtractors
	}
	if opts.Styles == nil {
		opts.Styles = styles
	}
	if opts.AfterChildren == nil {
		opts.AfterChildren = CollapseSVGContainers
	}

	nodes, reg := Extract(roots, extractors, opts, NewRegistry())
	d := newDesign(name, nodes, components, componentSets)
	d.GlobalVars.Styles = reg
	return d
}

func newDesign(name string, nodes []*SimplifiedNode, components map[string]figma.Component, componentSets map[string]figma.ComponentSet) *Design {
	if nodes == nil {
		nodes = make([]*SimplifiedNode, 0)
	}
	d := &Design{
		Name:          name,
		Nodes:         nodes,
		Components:    make(map[string]ComponentDefinition, len(components)),
		ComponentSets: make(map[string]ComponentSetDefinition, len(componentSets)),
		GlobalVars:    GlobalVars{Styles: NewRegistry()},
	}
	for id, c := range components {
		d.Components[id] = ComponentDefinition{ID: id, Key: c.Key, Name: c.Name, ComponentSetID: c.ComponentSetID}
	}
	for id, s := range componentSets {
		d.ComponentSets[id] = ComponentSetDefinition{ID: id, Key: s.Key, Name: s.Name, Description: s.Description}
	}
	return d
}

// Walk calls fn for every node of the design, parents before children.
func (d *Design) Walk(fn func(n *SimplifiedNode, depth int)) {
	var walk func(n *SimplifiedNode, depth int)
	walk = func(n *SimplifiedNode, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range d.Nodes {
		walk(n, 0)
	}
}
