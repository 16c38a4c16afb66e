// Package rendergraph validates a render node's declared resource
// dependencies and produces the two orderings a frame needs: a topological
// compute order (dependency-ordered prepasses) and a priority render order
// (background=0, candles=50, plots=100, triangles=120, axes=150, stable
// within a priority).
//
// This generalizes the teacher's engine/scene.scene.DrawCalls, which walked
// a fixed-priority map of animators in whatever order Go handed back,
// resolving each draw's bind groups dynamically from shader declarations
// (see resolveProviders below, adapted from that method's per-group provider
// switch). vantage-engine declares the dependency explicitly instead of
// relying on map iteration order plus provider-switch luck: a Node states
// reads()/writes(), and the graph both validates and orders from that.
package rendergraph

import (
	"sort"

	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// ResourceKey identifies a declared read/write resource for graph validation,
// e.g. "culling:series:AAPL.close" or "candles:bucket:1m".
type ResourceKey string

// Node is the render node contract from spec.md §4.4: priority, optional
// compute prepass, declared resource dependencies, and the render call
// itself. Concrete implementations live in engine/renderer/nodes.
type Node interface {
	// Name identifies the node for error messages and stable tie-breaking.
	Name() string

	// Priority returns the node's render-order priority; lower executes first.
	Priority() uint32

	// NeedsCompute reports whether Compute should run this frame.
	NeedsCompute() bool

	// Reads returns the resources this node's compute/render step consumes.
	Reads() []ResourceKey

	// Writes returns the resources this node's compute step produces.
	Writes() []ResourceKey
}

// Graph validates a set of nodes and produces compute/render orderings.
type Graph struct {
	nodes        []Node
	computeOrder []Node
}

// New builds a Graph over the given nodes. Does not validate; call Validate
// before reading orderings.
func New(nodes ...Node) *Graph {
	return &Graph{nodes: nodes}
}

// Validate checks that every resource a node reads is written by some node
// (or is an externally-supplied resource not produced by any node — those
// are simply absent from every Writes() list and are not an error) and that
// the write graph has no cycle. Returns a Programmer-kind error identifying
// the offending node on cycle detection, matching spec's treatment of graph
// invariant violations.
func (g *Graph) Validate() error {
	writer := make(map[ResourceKey]string, len(g.nodes))
	for _, n := range g.nodes {
		for _, w := range n.Writes() {
			if existing, ok := writer[w]; ok {
				return vantageerr.New(vantageerr.Programmer,
					"resource %s written by both %s and %s", w, existing, n.Name())
			}
			writer[w] = n.Name()
		}
	}

	order, err := topoOrder(g.nodes, writer)
	if err != nil {
		return err
	}
	g.computeOrder = order
	return nil
}

func topoOrder(nodes []Node, writer map[ResourceKey]string) ([]Node, error) {
	byName := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name()] = n
	}

	deps := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		seen := make(map[string]bool)
		for _, r := range n.Reads() {
			if producer, ok := writer[r]; ok && producer != n.Name() && !seen[producer] {
				deps[n.Name()] = append(deps[n.Name()], producer)
				seen[producer] = true
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))
	var order []Node

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return vantageerr.New(vantageerr.Programmer, "compute dependency cycle detected at node %s", name)
		}
		color[name] = gray
		for _, dep := range deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, byName[name])
		return nil
	}

	// Visit in priority order so ties among independent nodes preserve the
	// render-order convention even in the compute ordering.
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name())
	}
	sort.SliceStable(names, func(i, j int) bool {
		return byName[names[i]].Priority() < byName[names[j]].Priority()
	})

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// ComputeOrder returns the nodes whose NeedsCompute is true, in dependency
// order, as computed by the most recent successful Validate call.
func (g *Graph) ComputeOrder() []Node {
	var out []Node
	for _, n := range g.computeOrder {
		if n.NeedsCompute() {
			out = append(out, n)
		}
	}
	return out
}

// RenderOrder returns every node in ascending priority order, stable within
// a priority by insertion order (the order nodes were passed to New).
func (g *Graph) RenderOrder() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}
