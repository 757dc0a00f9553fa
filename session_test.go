package vsgbridge

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/serial"
	"github.com/gogpu/vsgbridge/texture"
)

var errParse = errors.New("parse error")

// fakeCompiler returns a two-word module per stage and fails any source
// containing "broken".
type fakeCompiler struct {
	calls int
}

func (c *fakeCompiler) Compile(st pipeline.ShaderStage) ([]uint32, error) {
	c.calls++
	if strings.Contains(st.Source, "broken") {
		return nil, errParse
	}
	return []uint32{0x07230203, uint32(st.Stage)}, nil
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeCompiler) {
	t.Helper()
	c := &fakeCompiler{}
	s := NewSession(append([]Option{WithCompiler(c)}, opts...)...)
	if err := s.BeginExport(); err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	t.Cleanup(func() {
		if s.Building() {
			s.teardown()
		}
	})
	return s, c
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func triangle(id string) MeshData {
	return MeshData{
		ID:       id,
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []int32{0, 1, 2},
	}
}

func translate(x, y, z float32) TransformData {
	return TransformData{Matrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, x, y, z, 1}}
}

func nodeKinds(doc *serial.Document) []string {
	var kinds []string
	for _, n := range doc.Nodes {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func TestExportTriangle(t *testing.T) {
	s, _ := newTestSession(t)
	mesh := triangle("tri")

	must(t, s.AddGroup())
	must(t, s.AddTransform(translate(5, 0, 0)))
	must(t, s.AddGeometry(mesh))
	must(t, s.EndNode())
	must(t, s.EndNode())
	if err := s.EndNode(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("EndNode on root = %v, want ErrStackUnderflow", err)
	}

	g, root := s.Graph()
	leaves := graph.CollectLeaves(g, root).Arrays

	path := filepath.Join(t.TempDir(), "tri.vsgb")
	res, err := s.EndExport(path)
	if err != nil {
		t.Fatalf("EndExport: %v", err)
	}
	if s.Building() {
		t.Error("session still building after EndExport")
	}

	want := ExportResult{Path: path, Format: serial.FormatBinary, Nodes: 3, Leaves: 2, LeafBytes: 36 + 6}
	got := *res
	got.Stats = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	for i, a := range leaves {
		if !a.Released() {
			t.Errorf("leaf %d not released", i)
		}
	}

	doc, err := serial.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Group", "Transform", "Geometry"}, nodeKinds(doc)); diff != "" {
		t.Errorf("node kinds mismatch (-want +got):\n%s", diff)
	}
	if doc.Nodes[1].Matrix[12] != 5 {
		t.Errorf("translation = %v, want 5", doc.Nodes[1].Matrix[12])
	}
}

func TestExportCommands(t *testing.T) {
	s, c := newTestSession(t, WithOutputFormat(serial.FormatText))

	must(t, s.AddGroup())
	must(t, s.AddStateGroup())
	must(t, s.AddBindGraphicsPipeline(PipelineData{ID: "flat"}, TargetStateGroup))
	must(t, s.AddCommands())
	must(t, s.AddBindVertexBuffers(VertexBuffersData{ID: "vb", Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}}))
	must(t, s.AddBindIndexBuffer(IndexBufferData{ID: "ib", Indices: []int32{0, 1, 2}}))
	must(t, s.AddDrawIndexed(DrawIndexedData{ID: "draw", IndexCount: 3}))

	if c.calls != 2 {
		t.Errorf("compiler calls = %d, want 2", c.calls)
	}

	path := filepath.Join(t.TempDir(), "cmds.vsgb")
	res, err := s.EndExport(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Format != serial.FormatText {
		t.Errorf("format = %v, want text", res.Format)
	}
	if res.Leaves != 2 {
		t.Errorf("leaves = %d, want 2", res.Leaves)
	}

	doc, err := serial.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pipelines) != 1 || doc.Pipelines[0].ID != "flat" {
		t.Fatalf("pipelines = %+v", doc.Pipelines)
	}
	cmds := doc.Nodes[2]
	var types []string
	for _, c := range cmds.Commands {
		types = append(types, c.Type)
	}
	if diff := cmp.Diff([]string{"BindVertexBuffers", "BindIndexBuffer", "DrawIndexed"}, types); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if got := cmds.Commands[2].InstanceCount; got != 1 {
		t.Errorf("instance count = %d, want 1", got)
	}
}

func TestPipelineCache(t *testing.T) {
	s, c := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddStateGroup())

	d := PipelineData{ID: "lit", HasNormals: true, ShaderMode: pipeline.ModeLighting}
	must(t, s.AddBindGraphicsPipeline(d, TargetStateGroup))
	first := s.ActivePipeline()
	must(t, s.AddBindGraphicsPipeline(d, TargetStateGroup))

	if s.ActivePipeline() != first {
		t.Error("cache hit returned a different pipeline")
	}
	if first.ID != "lit" {
		t.Errorf("active pipeline = %q, want lit", first.ID)
	}
	st := s.Stats()["pipelines"]
	if st.Builds != 1 || st.Hits != 1 {
		t.Errorf("pipeline stats = %+v, want 1 build and 1 hit", st)
	}
	if c.calls != 2 {
		t.Errorf("compiler calls = %d, want 2", c.calls)
	}
	g, _ := s.Graph()
	if n := len(g.Node(s.ActiveStateGroup()).StateCommands); n != 2 {
		t.Errorf("state commands = %d, want 2", n)
	}
}

func TestInvalidShaderKeepsActivePipeline(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddStateGroup())
	must(t, s.AddBindGraphicsPipeline(PipelineData{ID: "good"}, TargetStateGroup))
	good := s.ActivePipeline()

	bad := PipelineData{ID: "bad", Stages: []ShaderStageData{
		{Stage: gputypes.ShaderStageVertex, Source: "broken"},
		{Stage: gputypes.ShaderStageFragment, Source: "// fs"},
	}}
	err := s.AddBindGraphicsPipeline(bad, TargetStateGroup)
	if !errors.Is(err, pipeline.ErrCompile) || !errors.Is(err, errParse) {
		t.Fatalf("err = %v, want ErrCompile wrapping the parse error", err)
	}
	if s.ActivePipeline() != good {
		t.Error("failed build replaced the active pipeline")
	}
	g, _ := s.Graph()
	if n := len(g.Node(s.ActiveStateGroup()).StateCommands); n != 1 {
		t.Errorf("state commands = %d, want 1", n)
	}
	if st := s.Stats()["pipelines"]; st.Len != 1 || st.Failures != 1 {
		t.Errorf("pipeline stats = %+v", st)
	}
}

func TestDescriptorSets(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddStateGroup())

	if err := s.CreateBindDescriptorSet(TargetStateGroup); !errors.Is(err, ErrNoActivePipeline) {
		t.Fatalf("without pipeline: %v", err)
	}

	d := PipelineData{ID: "tinted", Bindings: []DescriptorBinding{
		{Binding: 0, Type: pipeline.DescriptorUniformBuffer, Stages: gputypes.ShaderStageFragment},
	}}
	must(t, s.AddBindGraphicsPipeline(d, TargetStateGroup))

	g, _ := s.Graph()
	sg := g.Node(s.ActiveStateGroup())
	if err := s.CreateBindDescriptorSet(TargetStateGroup); !errors.Is(err, ErrNoDescriptors) {
		t.Fatalf("empty accumulator: %v", err)
	}
	if len(sg.StateCommands) != 1 {
		t.Fatalf("empty accumulator mutated the state group: %d commands", len(sg.StateCommands))
	}

	tint := DescriptorVectorData{ID: "tint", Binding: 0, Value: [4]float32{1, 0, 0, 1}}
	must(t, s.AddDescriptorVector(tint))
	if n := s.PendingDescriptors(); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}
	must(t, s.CreateBindDescriptorSet(TargetStateGroup))
	if n := s.PendingDescriptors(); n != 0 {
		t.Errorf("pending after bind = %d, want 0", n)
	}

	must(t, s.AddDescriptorVector(tint))
	must(t, s.CreateBindDescriptorSet(TargetStateGroup))
	if len(sg.StateCommands) != 3 {
		t.Fatalf("state commands = %d, want 3", len(sg.StateCommands))
	}
	if sg.StateCommands[1] != sg.StateCommands[2] {
		t.Error("same descriptor ids built a second set")
	}
	bind, ok := sg.StateCommands[1].(*graph.BindDescriptorSetCommand)
	if !ok || bind.Pipeline.ID != "tinted" {
		t.Errorf("state command 1 = %#v", sg.StateCommands[1])
	}

	// A failed bind still empties the accumulator.
	must(t, s.AddDescriptorFloat(DescriptorFloatData{ID: "f", Binding: 0, Value: 1}))
	if err := s.CreateBindDescriptorSet(TargetCommands); !errors.Is(err, ErrNoCommandsHead) {
		t.Errorf("commands target under state group: %v", err)
	}
	if n := s.PendingDescriptors(); n != 0 {
		t.Errorf("pending after failed bind = %d, want 0", n)
	}
}

func TestDescriptorImage(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	if err := s.AddDescriptorImage(DescriptorImageData{ID: "empty"}); !errors.Is(err, graph.ErrDescriptorType) {
		t.Errorf("no images: %v", err)
	}
	if s.PendingDescriptors() != 0 {
		t.Error("failed image descriptor was queued")
	}
}

func TestGeometryCache(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	mesh := triangle("shared")
	must(t, s.AddGeometry(mesh))
	must(t, s.EndNode())
	must(t, s.AddGeometry(mesh))
	must(t, s.EndNode())
	must(t, s.AddVertexIndexDraw(mesh))
	must(t, s.EndNode())

	g, root := s.Graph()
	children := g.Node(root).Children
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	if children[0] != children[1] {
		t.Error("same geometry id built two nodes")
	}
	if children[0] == children[2] {
		t.Error("geometry and vertex-index draw share a node")
	}
	a, b := g.Node(children[0]).Draw, g.Node(children[2]).Draw
	if a.Arrays[0] == b.Arrays[0] {
		t.Error("different node kinds share vertex arrays")
	}
	if st := s.Stats()["geometry"]; st.Builds != 2 || st.Hits != 1 {
		t.Errorf("geometry stats = %+v", st)
	}
	if err := s.AddGeometry(MeshData{ID: "empty"}); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("empty mesh: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession(WithCompiler(&fakeCompiler{}))
	for name, call := range map[string]func() error{
		"AddGroup":  s.AddGroup,
		"EndNode":   s.EndNode,
		"AddLOD":    func() error { return s.AddLOD(CullData{}) },
		"StringVal": func() error { return s.AddStringValue("a", "b") },
		"Bind":      func() error { return s.CreateBindDescriptorSet(TargetCommands) },
		"Vector":    func() error { return s.AddDescriptorVector(DescriptorVectorData{}) },
		"EndExport": func() error { _, err := s.EndExport("x"); return err },
	} {
		if err := call(); !errors.Is(err, ErrNoSession) {
			t.Errorf("%s on idle session = %v, want ErrNoSession", name, err)
		}
	}

	must(t, s.BeginExport())
	must(t, s.AddGroup())
	g, _ := s.Graph()
	if err := s.BeginExport(); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second BeginExport = %v", err)
	}
	if g2, _ := s.Graph(); g2 != g || s.Depth() != 1 {
		t.Error("second BeginExport disturbed the running session")
	}
	s.teardown()

	must(t, s.BeginExport())
	if _, err := s.EndExport(filepath.Join(t.TempDir(), "empty.vsgb")); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("empty export = %v", err)
	}
	if s.Building() {
		t.Error("failed export left the session open")
	}
}

func TestStructuralPolicy(t *testing.T) {
	t.Run("strict", func(t *testing.T) {
		s, _ := newTestSession(t)
		must(t, s.AddGroup())
		must(t, s.AddCommands())
		err := s.AddGroup()
		var se *StructuralError
		if !errors.As(err, &se) || !errors.Is(err, ErrIncompatibleHead) {
			t.Fatalf("err = %v, want StructuralError", err)
		}
		if se.Head != graph.KindCommands || se.Op != "AddGroup" {
			t.Errorf("error = %+v", se)
		}
		if s.Depth() != 2 {
			t.Errorf("depth = %d, want 2", s.Depth())
		}

		must(t, s.EndNode())
		must(t, s.AddCull(CullData{Radius: 1}))
		must(t, s.AddGroup())
		must(t, s.EndNode())
		if err := s.AddGroup(); !errors.Is(err, graph.ErrChildLimit) {
			t.Errorf("second child of cull = %v", err)
		}
		if err := s.AddLODChild(LODChildData{MinimumScreenHeightRatio: 0.5}); !errors.Is(err, ErrIncompatibleHead) {
			t.Errorf("LOD child under cull = %v", err)
		}
	})

	t.Run("permissive", func(t *testing.T) {
		s, _ := newTestSession(t, WithStructuralPolicy(StructuralPermissive))
		must(t, s.AddGroup())
		must(t, s.AddCommands())
		must(t, s.AddGeometry(triangle("lost")))
		if s.Depth() != 3 {
			t.Errorf("depth = %d, want 3", s.Depth())
		}
		g, _ := s.Graph()
		lost := g.Node(s.Head()).Draw.Arrays[0]

		res, err := s.EndExport(filepath.Join(t.TempDir(), "p.vsgb"))
		if err != nil {
			t.Fatal(err)
		}
		if res.Detached != 1 || res.Nodes != 2 {
			t.Errorf("result = %+v, want 1 detached and 2 nodes", res)
		}
		if !lost.Released() {
			t.Error("detached geometry was not released")
		}
	})
}

func TestCommandTargets(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	if err := s.AddBindGraphicsPipeline(PipelineData{ID: "p"}, TargetStateGroup); !errors.Is(err, ErrNoActiveStateGroup) {
		t.Errorf("no state group: %v", err)
	}
	if err := s.AddBindVertexBuffers(VertexBuffersData{ID: "vb", Vertices: []float32{0, 0, 0}}); !errors.Is(err, ErrNoCommandsHead) {
		t.Errorf("vertex buffers under group: %v", err)
	}
	if st := s.Stats()["vertex-buffers"]; st.Misses != 0 {
		t.Error("vertex buffers built before the head was checked")
	}

	must(t, s.AddStateGroup())
	must(t, s.AddGroup())
	if s.ActiveStateGroup() == graph.Nil {
		t.Fatal("state group not active under a nested group")
	}
	must(t, s.AddBindGraphicsPipeline(PipelineData{ID: "p"}, TargetStateGroup))
	must(t, s.EndNode())
	must(t, s.EndNode())
	if s.ActiveStateGroup() != graph.Nil {
		t.Error("state group still active after EndNode")
	}
}

func TestMetadata(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.AddStringValue("name", "x"); !errors.Is(err, ErrIncompatibleHead) {
		t.Errorf("metadata without head = %v", err)
	}
	must(t, s.AddGroup())
	must(t, s.AddStringValue("café", "été"))
	first := []float32{1, 2}
	must(t, s.AddFloatArray("weights", first))

	g, root := s.Graph()
	n := g.Node(root)
	old, _ := n.MetaValue("weights")
	must(t, s.AddFloatArray("weights", []float32{3}))

	m, ok := n.MetaValue("caf\u00e9")
	if !ok || m.Text != "\u00e9t\u00e9" {
		t.Errorf("string meta = %+v, %v; want NFC composed", m, ok)
	}
	if !old.Floats.Released() {
		t.Error("replaced float array was not released")
	}
	if len(n.Meta) != 2 {
		t.Errorf("meta entries = %d, want 2", len(n.Meta))
	}
	cur, _ := n.MetaValue("weights")
	if cur.Floats.Len() != 1 || cur.Floats.Type() != extarray.TypeFloat {
		t.Errorf("weights = %v x %d", cur.Floats.Type(), cur.Floats.Len())
	}
}

func TestEndExportWriteFailure(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddGeometry(triangle("tri")))
	g, root := s.Graph()
	leaves := graph.CollectLeaves(g, root).Arrays

	_, err := s.EndExport(filepath.Join(t.TempDir(), "missing", "x.vsgb"))
	if err == nil {
		t.Fatal("want write error")
	}
	if s.Building() {
		t.Error("session open after failed write")
	}
	for i, a := range leaves {
		if !a.Released() {
			t.Errorf("leaf %d kept after failed write", i)
		}
	}
}

func TestAbortExport(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddGeometry(triangle("tri")))
	g, root := s.Graph()
	leaves := graph.CollectLeaves(g, root).Arrays

	must(t, s.AbortExport())
	if s.Building() {
		t.Error("session open after abort")
	}
	for i, a := range leaves {
		if !a.Released() {
			t.Errorf("leaf %d kept after abort", i)
		}
	}
	if err := s.AbortExport(); !errors.Is(err, ErrNoSession) {
		t.Errorf("second abort = %v, want ErrNoSession", err)
	}
	must(t, s.BeginExport())
}

func TestBindingSet(t *testing.T) {
	vs, fs := gputypes.ShaderStageVertex, gputypes.ShaderStageFragment
	got := bindingSet([]DescriptorBinding{
		{Binding: 0, Type: pipeline.DescriptorUniformBuffer, Stages: vs | fs},
		{Binding: pipeline.Unassigned, Type: pipeline.DescriptorSampledImage, Count: 2},
		{Binding: pipeline.Unassigned, Type: pipeline.DescriptorUniformBuffer, Stages: vs | fs},
	})
	want := pipeline.BindingSet{Stages: []pipeline.StageBindings{
		{Stage: vs, Bindings: []pipeline.Binding{
			{Binding: 0, Type: pipeline.DescriptorUniformBuffer, Count: 1},
			{Binding: pipeline.Unassigned, Type: pipeline.DescriptorUniformBuffer, Count: 1},
		}},
		{Stage: fs, Bindings: []pipeline.Binding{
			{Binding: 0, Type: pipeline.DescriptorUniformBuffer, Count: 1},
			{Binding: pipeline.Unassigned, Type: pipeline.DescriptorSampledImage, Count: 2},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bindingSet mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelineTraits(t *testing.T) {
	d := PipelineData{
		ID:       "custom",
		UseAlpha: true,
		Stages: []ShaderStageData{
			{Stage: gputypes.ShaderStageVertex, Source: "vs", CustomDefines: []string{"A"}},
			{Stage: gputypes.ShaderStageFragment, EntryPoint: "fs_main", Source: "fs"},
		},
	}
	tr := pipelineTraits(d)
	if !tr.Alpha {
		t.Error("alpha not carried")
	}
	if tr.Stages[0].EntryPoint != "main" || tr.Stages[1].EntryPoint != "fs_main" {
		t.Errorf("entry points = %q, %q", tr.Stages[0].EntryPoint, tr.Stages[1].EntryPoint)
	}
	if diff := cmp.Diff([]string{"A"}, tr.Stages[0].Defines); diff != "" {
		t.Errorf("defines mismatch (-want +got):\n%s", diff)
	}
	if len(tr.BindingSets) != 0 {
		t.Errorf("binding sets = %d, want none", len(tr.BindingSets))
	}
}

func TestDiscardedDescriptorsReleased(t *testing.T) {
	s, _ := newTestSession(t)
	must(t, s.AddGroup())
	must(t, s.AddStateGroup())
	must(t, s.AddBindGraphicsPipeline(PipelineData{ID: "lit", Bindings: []DescriptorBinding{
		{Binding: 0, Type: pipeline.DescriptorUniformBuffer},
	}}, TargetStateGroup))

	queue := func(id string, binding uint32) *extarray.Array {
		t.Helper()
		must(t, s.AddDescriptorFloatArray(DescriptorFloatArrayData{ID: id, Binding: binding, Values: []float32{1, 2}}))
		return s.pending[len(s.pending)-1].Uniform
	}

	kept := queue("tint", 0)
	must(t, s.CreateBindDescriptorSet(TargetStateGroup))
	shared := queue("tint", 0)
	must(t, s.CreateBindDescriptorSet(TargetStateGroup))
	if kept.Released() || !shared.Released() {
		t.Errorf("cache hit: kept released=%v, duplicate released=%v", kept.Released(), shared.Released())
	}

	rejected := queue("stray", 9)
	if err := s.CreateBindDescriptorSet(TargetStateGroup); !errors.Is(err, graph.ErrUnknownBinding) {
		t.Fatalf("err = %v, want %v", err, graph.ErrUnknownBinding)
	}
	if !rejected.Released() {
		t.Error("buffer of a failed set is still referenced")
	}

	if err := s.AddSkybox(cubeMap("flat", 1)); err == nil {
		t.Fatal("AddSkybox accepted a single-layer image")
	}
	tex, _, err := s.textures.GetOrBuild("flat", func() (*texture.Data, error) {
		t.Fatal("texture of the failed skybox was not cached")
		return nil, nil
	})
	must(t, err)
	left := queue("left", 0)

	must(t, s.AbortExport())
	if !tex.Array.Released() || !left.Released() {
		t.Errorf("after abort: texture released=%v, queued released=%v", tex.Array.Released(), left.Released())
	}
}
