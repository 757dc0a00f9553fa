package vsgbridge

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/format"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/serial"
)

func cubeMap(id string, layers int) DescriptorImageData {
	return DescriptorImageData{ID: id, Binding: 5, Images: []ImageData{{
		ID:     id,
		Pixels: make([]byte, 2*2*4*layers),
		Format: format.R8G8B8A8Unorm,
		Width:  2,
		Height: 2,
		Depth:  layers,
	}}}
}

func TestAddSkybox(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddSkybox(cubeMap("sky", graph.CubeFaces)))
	first := s.Head()
	must(t, s.EndNode())
	must(t, s.AddSkybox(cubeMap("sky", graph.CubeFaces)))
	if s.Head() != first {
		t.Error("second AddSkybox with the same id built a new subtree")
	}
	must(t, s.EndNode())

	if s.ActivePipeline() != nil {
		t.Error("AddSkybox changed the active pipeline")
	}
	if n := s.PendingDescriptors(); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}

	g, _ := s.Graph()
	xf := g.Node(first)
	if xf.Kind != graph.KindTransform || xf.Matrix != skyboxRotation {
		t.Fatalf("skybox root = %v %v", xf.Kind, xf.Matrix)
	}
	sg := g.Node(xf.Children[0])
	if sg.Kind != graph.KindStateGroup || len(sg.StateCommands) != 2 {
		t.Fatalf("state group = %v with %d commands", sg.Kind, len(sg.StateCommands))
	}
	bind := sg.StateCommands[0].(*graph.BindPipelineCommand)
	st := bind.Pipeline.State
	if bind.Pipeline.ID != SkyboxPipelineID {
		t.Errorf("pipeline id = %q", bind.Pipeline.ID)
	}
	if st.CullMode != gputypes.CullModeFront || !st.DepthDisabled || st.PushConstantSize != pipeline.DefaultPushConstantSize {
		t.Errorf("state cull=%v depthDisabled=%v push=%d", st.CullMode, st.DepthDisabled, st.PushConstantSize)
	}
	wantLayout := []pipeline.LayoutEntry{{
		Binding:       0,
		Type:          pipeline.DescriptorSampledImage,
		Count:         1,
		Stages:        gputypes.ShaderStageFragment,
		ViewDimension: gputypes.TextureViewDimensionCube,
	}}
	if diff := cmp.Diff(wantLayout, st.SetLayouts[0].Entries); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	set := sg.StateCommands[1].(*graph.BindDescriptorSetCommand).Set
	if !set.Mirrored() || set.Descriptors[0].Binding != 0 {
		t.Errorf("descriptor set mirrored=%v binding=%d", set.Mirrored(), set.Descriptors[0].Binding)
	}
	draw := g.Node(sg.Children[0])
	if draw.Kind != graph.KindVertexIndexDraw || draw.Draw.IndexCount != 36 || draw.Draw.Arrays[0].Len() != 24 {
		t.Errorf("draw = %v with %d indices", draw.Kind, draw.Draw.IndexCount)
	}

	path := filepath.Join(t.TempDir(), "sky.vsgt")
	res, err := s.EndExport(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Nodes != 4 {
		t.Errorf("nodes = %d, want 4", res.Nodes)
	}
	doc, err := serial.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Group", "Transform", "StateGroup", "VertexIndexDraw"}, nodeKinds(doc)); diff != "" {
		t.Errorf("node kinds mismatch (-want +got):\n%s", diff)
	}
	if p := doc.Pipelines[0]; !p.DepthDisabled || p.CullMode != uint32(gputypes.CullModeFront) {
		t.Errorf("serialized pipeline depthDisabled=%v cull=%d", p.DepthDisabled, p.CullMode)
	}
}

func TestAddSkyboxErrors(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())

	if err := s.AddSkybox(cubeMap("flat", 1)); !errors.Is(err, graph.ErrDescriptorType) {
		t.Errorf("single layer: %v, want %v", err, graph.ErrDescriptorType)
	}
	if err := s.AddSkybox(DescriptorImageData{ID: "none"}); !errors.Is(err, graph.ErrDescriptorType) {
		t.Errorf("no images: %v, want %v", err, graph.ErrDescriptorType)
	}
	if s.Depth() != 1 {
		t.Errorf("depth = %d after failed skyboxes, want 1", s.Depth())
	}

	must(t, s.AddCommands())
	var serr *StructuralError
	if err := s.AddSkybox(cubeMap("sky", graph.CubeFaces)); !errors.As(err, &serr) {
		t.Errorf("under a commands head: %v, want StructuralError", err)
	}
}

func TestAddDescriptorFloatBuffer(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddStateGroup())
	must(t, s.AddBindGraphicsPipeline(PipelineData{ID: "weighted", Bindings: []DescriptorBinding{
		{Binding: 1, Type: pipeline.DescriptorStorageBuffer, Stages: gputypes.ShaderStageVertex},
	}}, TargetStateGroup))

	weights := []float32{0.5, 0.25, 0.25}
	must(t, s.AddDescriptorFloatBuffer(DescriptorFloatBufferData{ID: "w", Binding: 1, Values: weights}))
	must(t, s.CreateBindDescriptorSet(TargetStateGroup))

	g, _ := s.Graph()
	sg := g.Node(s.ActiveStateGroup())
	set := sg.StateCommands[1].(*graph.BindDescriptorSetCommand).Set
	d := set.Descriptors[0]
	if d.Type != pipeline.DescriptorStorageBuffer || !d.Uniform.Borrowed() {
		t.Errorf("descriptor type=%v borrowed=%v", d.Type, d.Uniform.Borrowed())
	}
	if diff := cmp.Diff(weights, d.Uniform.Float32s()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if !set.Mirrored() {
		t.Error("storage buffer set has no bind group")
	}

	if err := s.AddDescriptorFloatBuffer(DescriptorFloatBufferData{ID: "odd"}); err != nil {
		t.Errorf("empty buffer: %v", err)
	}
	s2 := NewSession()
	if err := s2.AddDescriptorFloatBuffer(DescriptorFloatBufferData{ID: "w"}); !errors.Is(err, ErrNoSession) {
		t.Errorf("idle session: %v", err)
	}
}
