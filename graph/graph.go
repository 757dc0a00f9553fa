package graph

import (
	"errors"
	"fmt"

	"github.com/gogpu/vsgbridge/extarray"
)

// Attachment errors.
var (
	// ErrInvalidHandle is returned for Nil or out-of-range handles.
	ErrInvalidHandle = errors.New("graph: invalid handle")

	// ErrIncompatible is returned when a parent kind does not accept an
	// attachment role.
	ErrIncompatible = errors.New("graph: incompatible parent")

	// ErrChildLimit is returned when a parent already holds its maximum
	// number of children.
	ErrChildLimit = errors.New("graph: child limit reached")
)

// Graph is an arena of nodes. Handles stay valid until Free.
//
// Graph is not safe for concurrent use.
type Graph struct {
	// nodes[0] is unused so that Nil never addresses a node.
	nodes []Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make([]Node, 1, 64)}
}

// Add stores a node and returns its handle.
func (g *Graph) Add(n Node) Handle {
	g.nodes = append(g.nodes, n)
	// #nosec G115 -- arena size is bounded by available memory, well under uint32 max
	return Handle(uint32(len(g.nodes) - 1))
}

// Node returns the node for h, or nil for an invalid handle.
func (g *Graph) Node(h Handle) *Node {
	if h == Nil || int(h) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[h]
}

// Kind returns the kind of h, or KindInvalid.
func (g *Graph) Kind(h Handle) Kind {
	if n := g.Node(h); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) - 1 }

func (g *Graph) parent(h Handle, r Role) (*Node, error) {
	p := g.Node(h)
	if p == nil {
		return nil, ErrInvalidHandle
	}
	if !p.Kind.Accepts(r) {
		return nil, fmt.Errorf("%w: %v does not accept a %v", ErrIncompatible, p.Kind, r)
	}
	return p, nil
}

// Attach adds child as a plain child of parent.
func (g *Graph) Attach(parent, child Handle) error {
	if g.Node(child) == nil {
		return ErrInvalidHandle
	}
	p, err := g.parent(parent, RoleChild)
	if err != nil {
		return err
	}
	if limit := p.Kind.MaxChildren(); limit >= 0 && len(p.Children) >= limit {
		return fmt.Errorf("%w: %v holds %d", ErrChildLimit, p.Kind, limit)
	}
	p.Children = append(p.Children, child)
	return nil
}

// AttachLOD adds child to a LOD node with its minimum screen ratio.
func (g *Graph) AttachLOD(parent, child Handle, minScreenRatio float64) error {
	if g.Node(child) == nil {
		return ErrInvalidHandle
	}
	p, err := g.parent(parent, RoleLODChild)
	if err != nil {
		return err
	}
	p.LODs = append(p.LODs, LODChild{MinScreenRatio: minScreenRatio, Child: child})
	return nil
}

// AddStateCommand appends a state command to a state group.
func (g *Graph) AddStateCommand(parent Handle, c Command) error {
	p, err := g.parent(parent, RoleStateCommand)
	if err != nil {
		return err
	}
	p.StateCommands = append(p.StateCommands, c)
	return nil
}

// AddCommand appends a command to a command list.
func (g *Graph) AddCommand(parent Handle, c Command) error {
	p, err := g.parent(parent, RoleCommand)
	if err != nil {
		return err
	}
	p.Commands = append(p.Commands, c)
	return nil
}

// Subnodes returns the plain children followed by the LOD children of h.
func (g *Graph) Subnodes(h Handle) []Handle {
	n := g.Node(h)
	if n == nil {
		return nil
	}
	out := make([]Handle, 0, len(n.Children)+len(n.LODs))
	out = append(out, n.Children...)
	for _, l := range n.LODs {
		out = append(out, l.Child)
	}
	return out
}

// Walk visits root and its subnodes depth-first, parents before children.
// A node shared by several parents is visited once per parent. Returning
// false from fn skips the node's subtree.
func (g *Graph) Walk(root Handle, fn func(h Handle, n *Node, depth int) bool) {
	g.walk(root, 0, fn)
}

func (g *Graph) walk(h Handle, depth int, fn func(Handle, *Node, int) bool) {
	n := g.Node(h)
	if n == nil {
		return
	}
	if !fn(h, n, depth) {
		return
	}
	for _, c := range g.Subnodes(h) {
		g.walk(c, depth+1, fn)
	}
}

// Reachable returns the set of handles reachable from root.
func (g *Graph) Reachable(root Handle) map[Handle]bool {
	seen := make(map[Handle]bool)
	g.Walk(root, func(h Handle, _ *Node, _ int) bool {
		if seen[h] {
			return false
		}
		seen[h] = true
		return true
	})
	return seen
}

// Free tears the arena down. Owned leaf arrays are dropped; borrowed
// arrays are left to their host owner. It returns how many borrowed arrays
// were still unreleased, which means the host buffer was referenced until
// teardown.
func (g *Graph) Free() (unreleased int) {
	seen := make(map[*extarray.Array]bool)
	for h := Handle(1); int(h) < len(g.nodes); h++ {
		for _, a := range nodeLeaves(&g.nodes[h]) {
			if seen[a] {
				continue
			}
			seen[a] = true
			if !a.Free() {
				unreleased++
			}
		}
	}
	g.nodes = g.nodes[:1]
	return unreleased
}
