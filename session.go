package vsgbridge

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/vsgbridge/cache"
	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

// Session builds one scene graph from a sequence of host calls.
//
// A session is idle until BeginExport and returns to idle at EndExport;
// it can then be begun again. Every add and bind operation on an idle
// session returns ErrNoSession.
//
// The stack head decides where each new node goes. Adding a node attaches
// it to the head and pushes it; EndNode pops it again. Pipelines,
// geometry, buffers, draws, textures and descriptor sets are built once
// per caller id and shared for the rest of the session.
//
// A Session is not safe for concurrent use. Independent sessions may run
// concurrently.
type Session struct {
	opts options

	dev       deviceHandle
	assembler *pipeline.Assembler

	graph    *graph.Graph
	root     graph.Handle
	stack    []graph.Handle
	detached []graph.Handle

	pipelines      *cache.Store[string, *graph.BindPipelineCommand]
	geometry       *cache.Store[string, graph.Handle]
	vertexBuffers  *cache.Store[string, *graph.BindVertexBuffersCommand]
	indexBuffers   *cache.Store[string, *graph.BindIndexBufferCommand]
	draws          *cache.Store[string, *graph.DrawIndexedCommand]
	descriptorSets *cache.Store[string, *graph.BindDescriptorSetCommand]
	textures       *cache.Store[string, *texture.Data]

	activePipeline *pipeline.Pipeline
	pending        []graph.Descriptor
	pendingIDs     []string
}

// NewSession creates an idle session.
func NewSession(opts ...Option) *Session {
	return &Session{opts: buildOptions(opts)}
}

// Building reports whether an export is in progress.
func (s *Session) Building() bool { return s.graph != nil }

// BeginExport opens the device and starts an empty graph. The first node
// added becomes the root.
func (s *Session) BeginExport() error {
	if s.Building() {
		return ErrSessionActive
	}
	dev, err := s.opts.openDevice()
	if err != nil {
		return err
	}
	a, err := pipeline.NewAssembler(dev.device, s.opts.compiler, s.opts.pipelineConfig())
	if err != nil {
		dev.close()
		return err
	}

	s.dev = dev
	s.assembler = a
	s.graph = graph.New()
	s.root = graph.Nil
	s.stack = s.stack[:0]
	s.detached = nil
	s.pipelines = cache.New[string, *graph.BindPipelineCommand]("pipelines")
	s.geometry = cache.New[string, graph.Handle]("geometry")
	s.vertexBuffers = cache.New[string, *graph.BindVertexBuffersCommand]("vertex-buffers")
	s.indexBuffers = cache.New[string, *graph.BindIndexBufferCommand]("index-buffers")
	s.draws = cache.New[string, *graph.DrawIndexedCommand]("draw-commands")
	s.descriptorSets = cache.New[string, *graph.BindDescriptorSetCommand]("descriptor-sets")
	s.textures = cache.New[string, *texture.Data]("textures")
	s.activePipeline = nil
	s.dropPending(true)

	Logger().Info("vsgbridge: export begun",
		"policy", s.opts.config.StructuralPolicy,
		"push_constants", a.Config().PushConstantSize)
	return nil
}

// Graph returns the graph under construction and its root, or nil while
// idle.
func (s *Session) Graph() (*graph.Graph, graph.Handle) { return s.graph, s.root }

// Head returns the stack head, or graph.Nil.
func (s *Session) Head() graph.Handle {
	if len(s.stack) == 0 {
		return graph.Nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of nodes on the stack.
func (s *Session) Depth() int { return len(s.stack) }

// ActivePipeline returns the most recently bound pipeline.
func (s *Session) ActivePipeline() *pipeline.Pipeline { return s.activePipeline }

// ActiveStateGroup returns the innermost state group on the stack, or
// graph.Nil.
func (s *Session) ActiveStateGroup() graph.Handle {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.graph.Kind(s.stack[i]) == graph.KindStateGroup {
			return s.stack[i]
		}
	}
	return graph.Nil
}

// Stats returns the statistics of every session cache, keyed by cache
// name. Shader modules are reported as "shader-modules".
func (s *Session) Stats() map[string]cache.Stats {
	if !s.Building() {
		return nil
	}
	return map[string]cache.Stats{
		s.pipelines.Name():      s.pipelines.Stats(),
		s.geometry.Name():       s.geometry.Stats(),
		s.vertexBuffers.Name():  s.vertexBuffers.Stats(),
		s.indexBuffers.Name():   s.indexBuffers.Stats(),
		s.draws.Name():          s.draws.Stats(),
		s.descriptorSets.Name(): s.descriptorSets.Stats(),
		s.textures.Name():       s.textures.Stats(),
		"shader-modules":        s.assembler.ModuleStats(),
	}
}

func (s *Session) check() error {
	if !s.Building() {
		return ErrNoSession
	}
	return nil
}

// canAttach reports whether the head accepts a node in role r.
func (s *Session) canAttach(head graph.Handle, r graph.Role) error {
	n := s.graph.Node(head)
	if !n.Kind.Accepts(r) {
		return fmt.Errorf("%w: %v does not accept a %v", ErrIncompatibleHead, n.Kind, r)
	}
	if r == graph.RoleChild {
		if limit := n.Kind.MaxChildren(); limit >= 0 && len(n.Children) >= limit {
			return fmt.Errorf("%w: %w", ErrIncompatibleHead, graph.ErrChildLimit)
		}
	}
	return nil
}

// addNode runs the structural contract of every add operation: check the
// head, build or fetch the node, attach it and push it.
func (s *Session) addNode(op string, role graph.Role, ratio float64, build func() (graph.Handle, error)) error {
	if err := s.check(); err != nil {
		return err
	}
	head := s.Head()
	var attachErr error
	if head != graph.Nil {
		attachErr = s.canAttach(head, role)
		if attachErr != nil && s.opts.config.StructuralPolicy == StructuralStrict {
			return &StructuralError{Op: op, Head: s.graph.Kind(head), Err: attachErr}
		}
	}

	h, err := build()
	if err != nil {
		return fmt.Errorf("vsgbridge: %s: %w", op, err)
	}

	switch {
	case head == graph.Nil:
		s.root = h
	case attachErr != nil:
		Logger().Warn("vsgbridge: node pushed detached",
			"op", op, "head", s.graph.Kind(head), "err", attachErr)
		s.detached = append(s.detached, h)
	case role == graph.RoleLODChild:
		if err := s.graph.AttachLOD(head, h, ratio); err != nil {
			return fmt.Errorf("vsgbridge: %s: %w", op, err)
		}
	default:
		if err := s.graph.Attach(head, h); err != nil {
			return fmt.Errorf("vsgbridge: %s: %w", op, err)
		}
	}
	s.stack = append(s.stack, h)
	return nil
}

func (s *Session) addSimple(op string, n graph.Node) error {
	return s.addNode(op, graph.RoleChild, 0, func() (graph.Handle, error) {
		return s.graph.Add(n), nil
	})
}

// AddGroup pushes a Group node.
func (s *Session) AddGroup() error {
	return s.addSimple("AddGroup", graph.Node{Kind: graph.KindGroup})
}

// AddTransform pushes a Transform node.
func (s *Session) AddTransform(d TransformData) error {
	n := graph.Node{Kind: graph.KindTransform}
	for i, v := range d.Matrix {
		n.Matrix[i] = float64(v)
	}
	return s.addSimple("AddTransform", n)
}

func sphere(d CullData) graph.Sphere {
	return graph.Sphere{
		Center: [3]float64{float64(d.Center[0]), float64(d.Center[1]), float64(d.Center[2])},
		Radius: float64(d.Radius),
	}
}

// AddCull pushes a Cull node, which holds exactly one child.
func (s *Session) AddCull(d CullData) error {
	return s.addSimple("AddCull", graph.Node{Kind: graph.KindCull, Bound: sphere(d)})
}

// AddCullGroup pushes a CullGroup node.
func (s *Session) AddCullGroup(d CullData) error {
	return s.addSimple("AddCullGroup", graph.Node{Kind: graph.KindCullGroup, Bound: sphere(d)})
}

// AddLOD pushes a LOD node. Its children are added with AddLODChild.
func (s *Session) AddLOD(d CullData) error {
	return s.addSimple("AddLOD", graph.Node{Kind: graph.KindLOD, Bound: sphere(d)})
}

// AddLODChild pushes a Group attached to the LOD head as a level shown
// down to the given screen height ratio.
func (s *Session) AddLODChild(d LODChildData) error {
	return s.addNode("AddLODChild", graph.RoleLODChild, float64(d.MinimumScreenHeightRatio), func() (graph.Handle, error) {
		return s.graph.Add(graph.Node{Kind: graph.KindGroup}), nil
	})
}

// AddStateGroup pushes a StateGroup node. While it is on the stack it is
// the active state group.
func (s *Session) AddStateGroup() error {
	return s.addSimple("AddStateGroup", graph.Node{Kind: graph.KindStateGroup})
}

// AddCommands pushes a Commands node.
func (s *Session) AddCommands() error {
	return s.addSimple("AddCommands", graph.Node{Kind: graph.KindCommands})
}

// AddLight pushes a Light node.
func (s *Session) AddLight(d LightData) error {
	return s.addSimple("AddLight", graph.Node{Kind: graph.KindLight, Light: graph.Light{
		Type:       d.Type,
		Color:      d.Color,
		Intensity:  d.Intensity,
		Position:   d.Position,
		Direction:  d.Direction,
		InnerAngle: d.InnerAngle,
		OuterAngle: d.OuterAngle,
		EyeFrame:   d.EyeCoordinateFrame,
	}})
}

// AddVertexIndexDraw pushes the VertexIndexDraw node for d.ID, building it
// on first use. Later calls with the same id share the node and its
// buffers.
func (s *Session) AddVertexIndexDraw(d MeshData) error {
	return s.addDraw("AddVertexIndexDraw", graph.KindVertexIndexDraw, d)
}

// AddGeometry pushes the Geometry node for d.ID. It caches like
// AddVertexIndexDraw.
func (s *Session) AddGeometry(d MeshData) error {
	return s.addDraw("AddGeometry", graph.KindGeometry, d)
}

func (s *Session) addDraw(op string, kind graph.Kind, d MeshData) error {
	return s.addNode(op, graph.RoleChild, 0, func() (graph.Handle, error) {
		h, hit, err := s.geometry.GetOrBuild(kind.String()+"|"+d.ID, func() (graph.Handle, error) {
			arrays, err := vertexArrays(d.Vertices, d.Normals, d.Tangents, d.Colors, d.UV0, d.UV1)
			if err != nil {
				return graph.Nil, err
			}
			indices, err := extarray.Indices(d.Indices, d.Use32BitIndices)
			if err != nil {
				return graph.Nil, err
			}
			return s.graph.Add(graph.Node{Kind: kind, Draw: &graph.Draw{
				Arrays:  arrays,
				Indices: indices,
				// #nosec G115 -- index count fits the host's 32-bit length field
				IndexCount:    uint32(len(d.Indices)),
				InstanceCount: 1,
			}}), nil
		})
		if hit {
			Logger().Debug("vsgbridge: geometry cache hit", "id", d.ID)
		}
		return h, err
	})
}

// vertexArrays borrows the non-empty attribute slices in binding order:
// positions, normals, tangents, colours, then texture coordinates.
func vertexArrays(vertices, normals, tangents, colors, uv0, uv1 []float32) ([]*extarray.Array, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	inputs := []struct {
		typ  extarray.Type
		data []float32
	}{
		{extarray.TypeVec3, vertices},
		{extarray.TypeVec3, normals},
		{extarray.TypeVec4, tangents},
		{extarray.TypeVec4, colors},
		{extarray.TypeVec2, uv0},
		{extarray.TypeVec2, uv1},
	}
	var out []*extarray.Array
	for _, in := range inputs {
		if len(in.data) == 0 {
			continue
		}
		a, err := extarray.BorrowFloat32(in.typ, in.data)
		if err != nil {
			return nil, fmt.Errorf("%v attribute: %w", in.typ, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// EndNode pops the stack head. The root is never popped.
func (s *Session) EndNode() error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.stack) <= 1 {
		return ErrStackUnderflow
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// headNode returns the head for a metadata operation.
func (s *Session) headNode(op string) (*graph.Node, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	n := s.graph.Node(s.Head())
	if n == nil {
		return nil, &StructuralError{Op: op, Head: graph.KindInvalid, Err: ErrIncompatibleHead}
	}
	return n, nil
}

// AddStringValue sets a string metadata value on the head. Name and value
// are stored in Unicode normalization form C.
func (s *Session) AddStringValue(name, value string) error {
	n, err := s.headNode("AddStringValue")
	if err != nil {
		return err
	}
	old, replaced := n.SetMeta(graph.Meta{Name: norm.NFC.String(name), Text: norm.NFC.String(value)})
	releaseReplaced(old, replaced)
	return nil
}

// AddFloatArray sets a float array metadata value on the head. The values
// are borrowed.
func (s *Session) AddFloatArray(name string, values []float32) error {
	n, err := s.headNode("AddFloatArray")
	if err != nil {
		return err
	}
	a, err := extarray.BorrowFloat32(extarray.TypeFloat, values)
	if err != nil {
		return fmt.Errorf("vsgbridge: AddFloatArray %q: %w", name, err)
	}
	old, replaced := n.SetMeta(graph.Meta{Name: norm.NFC.String(name), Floats: a})
	releaseReplaced(old, replaced)
	return nil
}

// releaseReplaced releases the array of a metadata entry that is no longer
// reachable from the graph.
func releaseReplaced(old graph.Meta, replaced bool) {
	if replaced && old.Floats != nil {
		old.Floats.Release()
	}
}
