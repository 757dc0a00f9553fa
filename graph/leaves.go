package graph

import (
	"github.com/gogpu/vsgbridge/extarray"
)

// LeafSet is the de-duplicated list of leaf arrays reachable from a root,
// in first-visit order.
type LeafSet struct {
	Arrays []*extarray.Array
	index  map[*extarray.Array]int
}

func newLeafSet() *LeafSet {
	return &LeafSet{index: make(map[*extarray.Array]int)}
}

func (s *LeafSet) add(a *extarray.Array) {
	if a == nil {
		return
	}
	if _, ok := s.index[a]; ok {
		return
	}
	s.index[a] = len(s.Arrays)
	s.Arrays = append(s.Arrays, a)
}

// Len returns the number of distinct leaves.
func (s *LeafSet) Len() int { return len(s.Arrays) }

// Index returns the position of a in the set.
func (s *LeafSet) Index(a *extarray.Array) (int, bool) {
	i, ok := s.index[a]
	return i, ok
}

// Bytes returns the total byte size of all leaves that still hold data.
func (s *LeafSet) Bytes() int {
	n := 0
	for _, a := range s.Arrays {
		n += len(a.Bytes())
	}
	return n
}

// CollectLeaves walks root depth-first and gathers every leaf array:
// draw arrays and indices, float-array metadata, and the arrays referred
// to by state commands and command lists (vertex and index buffers,
// uniform values, texture pixels). Shared nodes and shared arrays are
// reported once.
func CollectLeaves(g *Graph, root Handle) *LeafSet {
	set := newLeafSet()
	visited := make(map[Handle]bool)
	g.Walk(root, func(h Handle, n *Node, _ int) bool {
		if visited[h] {
			return false
		}
		visited[h] = true
		for _, a := range nodeLeaves(n) {
			set.add(a)
		}
		return true
	})
	return set
}

// ReleaseLeaves releases every leaf reachable from root so the host may
// free its buffers. It returns how many arrays this call released;
// releasing an already released graph is a no-op that returns 0.
func ReleaseLeaves(g *Graph, root Handle) int {
	released := 0
	for _, a := range CollectLeaves(g, root).Arrays {
		if a.Release() {
			released++
		}
	}
	return released
}

// nodeLeaves lists the leaf arrays a single node refers to. The result
// may contain duplicates.
func nodeLeaves(n *Node) []*extarray.Array {
	var out []*extarray.Array
	for _, m := range n.Meta {
		if m.Floats != nil {
			out = append(out, m.Floats)
		}
	}
	if n.Draw != nil {
		out = append(out, n.Draw.Arrays...)
		if n.Draw.Indices != nil {
			out = append(out, n.Draw.Indices)
		}
	}
	for _, c := range n.StateCommands {
		out = commandLeaves(out, c)
	}
	for _, c := range n.Commands {
		out = commandLeaves(out, c)
	}
	return out
}

func commandLeaves(out []*extarray.Array, c Command) []*extarray.Array {
	switch cmd := c.(type) {
	case *BindVertexBuffersCommand:
		out = append(out, cmd.Arrays...)
	case *BindIndexBufferCommand:
		if cmd.Indices != nil {
			out = append(out, cmd.Indices)
		}
	case *BindDescriptorSetCommand:
		if cmd.Set != nil {
			for _, d := range cmd.Set.Descriptors {
				if d.Uniform != nil {
					out = append(out, d.Uniform)
				}
				for _, img := range d.Images {
					if img != nil && img.Array != nil {
						out = append(out, img.Array)
					}
				}
			}
		}
	}
	return out
}
