package graph

import (
	"testing"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/format"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

func borrowVec3(t *testing.T, v ...float32) *extarray.Array {
	t.Helper()
	a, err := extarray.BorrowFloat32(extarray.TypeVec3, v)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// buildScene creates Group -> StateGroup -> Commands with a shared vertex
// array and a sampled texture, plus metadata and a geometry node.
func buildScene(t *testing.T) (*Graph, Handle, []*extarray.Array) {
	t.Helper()
	g := New()

	verts := borrowVec3(t, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	indices, err := extarray.Indices([]int32{0, 1, 2}, false)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := extarray.BorrowFloat32(extarray.TypeFloat, []float32{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	uniform, err := extarray.BorrowFloat32(extarray.TypeVec4, []float32{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	img, err := texture.CreateData(texture.Spec{Pixels: make([]byte, 16), Format: format.R8G8B8A8Unorm, Width: 2, Height: 2})
	if err != nil {
		t.Fatal(err)
	}

	root := g.Add(Node{Kind: KindGroup, Meta: []Meta{{Name: "weights", Floats: meta}}})
	sg := g.Add(Node{Kind: KindStateGroup})
	cmds := g.Add(Node{Kind: KindCommands})
	geom := g.Add(Node{Kind: KindGeometry, Draw: &Draw{Arrays: []*extarray.Array{verts}, Indices: indices}})

	mustAttach(t, g.Attach(root, sg))
	mustAttach(t, g.Attach(sg, cmds))
	mustAttach(t, g.Attach(sg, geom))

	set := &DescriptorSet{Descriptors: []Descriptor{
		{Binding: 0, Type: pipeline.DescriptorSampledImage, Images: []*texture.Data{img}},
		{Binding: 2, Type: pipeline.DescriptorUniformBuffer, Uniform: uniform},
	}}
	mustAttach(t, g.AddStateCommand(sg, &BindDescriptorSetCommand{Set: set}))
	mustAttach(t, g.AddCommand(cmds, &BindVertexBuffersCommand{Arrays: []*extarray.Array{verts}}))
	mustAttach(t, g.AddCommand(cmds, &BindIndexBufferCommand{Indices: indices}))
	mustAttach(t, g.AddCommand(cmds, &DrawIndexedCommand{IndexCount: 3, InstanceCount: 1}))

	return g, root, []*extarray.Array{meta, img.Array, uniform, verts, indices}
}

func TestCollectLeaves(t *testing.T) {
	g, root, want := buildScene(t)
	set := CollectLeaves(g, root)

	if set.Len() != len(want) {
		t.Fatalf("CollectLeaves() = %d leaves, want %d", set.Len(), len(want))
	}
	for _, a := range want {
		if _, ok := set.Index(a); !ok {
			t.Errorf("leaf %v (%d elements) not collected", a.Type(), a.Len())
		}
	}
	// 8 + 16 + 16 + 36 + 6 bytes
	if got := set.Bytes(); got != 82 {
		t.Errorf("Bytes() = %d, want 82", got)
	}
}

func TestCollectLeavesOrder(t *testing.T) {
	g, root, want := buildScene(t)
	set := CollectLeaves(g, root)
	// Metadata first, then the state group's descriptor set, then the
	// command list, then the geometry node whose arrays are already known.
	for i, a := range want {
		if got, _ := set.Index(a); got != i {
			t.Errorf("leaf %d at index %d", i, got)
		}
	}
}

func TestCollectLeavesSharedNode(t *testing.T) {
	g := New()
	root := g.Add(Node{Kind: KindGroup})
	a := g.Add(Node{Kind: KindGroup})
	b := g.Add(Node{Kind: KindGroup})
	geom := g.Add(Node{Kind: KindVertexIndexDraw, Draw: &Draw{Arrays: []*extarray.Array{borrowVec3(t, 1, 2, 3)}}})
	mustAttach(t, g.Attach(root, a))
	mustAttach(t, g.Attach(root, b))
	mustAttach(t, g.Attach(a, geom))
	mustAttach(t, g.Attach(b, geom))

	if got := CollectLeaves(g, root).Len(); got != 1 {
		t.Errorf("CollectLeaves() = %d leaves, want 1 for a shared node", got)
	}
}

func TestCollectLeavesEmpty(t *testing.T) {
	g := New()
	root := g.Add(Node{Kind: KindGroup})
	if got := CollectLeaves(g, root).Len(); got != 0 {
		t.Errorf("CollectLeaves() = %d, want 0", got)
	}
	if got := CollectLeaves(g, Nil).Len(); got != 0 {
		t.Errorf("CollectLeaves(Nil) = %d, want 0", got)
	}
}

func TestReleaseLeavesTwice(t *testing.T) {
	g, root, leaves := buildScene(t)
	CollectLeaves(g, root)

	if got := ReleaseLeaves(g, root); got != len(leaves) {
		t.Errorf("first ReleaseLeaves() = %d, want %d", got, len(leaves))
	}
	for _, a := range leaves {
		if !a.Released() {
			t.Errorf("leaf %v not released", a.Type())
		}
	}
	if got := ReleaseLeaves(g, root); got != 0 {
		t.Errorf("second ReleaseLeaves() = %d, want 0", got)
	}
	if got := g.Free(); got != 0 {
		t.Errorf("Free() after release = %d unreleased, want 0", got)
	}
}
