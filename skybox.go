package vsgbridge

import (
	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
)

// SkyboxPipelineID is the pipeline id the built-in skybox pipeline is
// cached and serialized under.
const SkyboxPipelineID = "vsgbridge/skybox"

// skyboxRotation turns the Y-up cube map into the Z-up scene frame.
var skyboxRotation = [16]float64{
	1, 0, 0, 0,
	0, 0, 1, 0,
	0, -1, 0, 0,
	0, 0, 0, 1,
}

// skyboxVertices holds four corners per face: back, front, left, right,
// bottom, top.
var skyboxVertices = []float32{
	-1, -1, -1, 1, -1, -1, -1, 1, -1, 1, 1, -1,
	-1, -1, 1, 1, -1, 1, -1, 1, 1, 1, 1, 1,
	-1, -1, -1, -1, -1, 1, -1, 1, -1, -1, 1, 1,
	1, -1, -1, 1, -1, 1, 1, 1, -1, 1, 1, 1,
	-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, 1,
	-1, 1, -1, -1, 1, 1, 1, 1, -1, 1, 1, 1,
}

var skyboxIndices = []int32{
	0, 2, 1, 1, 2, 3,
	6, 4, 5, 7, 6, 5,
	10, 8, 9, 11, 10, 9,
	14, 13, 12, 15, 13, 14,
	17, 16, 19, 19, 16, 18,
	23, 20, 21, 22, 20, 23,
}

// AddSkybox pushes a Transform holding a unit cube textured with the cube
// map in d. The images must have six layers; d.Binding is ignored. The
// subtree is built once per d.ID with the built-in skybox pipeline and
// its own descriptor set, so the active pipeline and the descriptor queue
// are left alone.
func (s *Session) AddSkybox(d DescriptorImageData) error {
	return s.addNode("AddSkybox", graph.RoleChild, 0, func() (graph.Handle, error) {
		h, hit, err := s.geometry.GetOrBuild("Skybox|"+d.ID, func() (graph.Handle, error) {
			return s.buildSkybox(d)
		})
		if hit {
			Logger().Debug("vsgbridge: skybox cache hit", "id", d.ID)
		}
		return h, err
	})
}

func (s *Session) buildSkybox(d DescriptorImageData) (graph.Handle, error) {
	bind, _, err := s.pipelines.GetOrBuild(SkyboxPipelineID, func() (*graph.BindPipelineCommand, error) {
		p, err := s.assembler.Build(SkyboxPipelineID, pipeline.SkyboxTraits())
		if err != nil {
			return nil, err
		}
		return &graph.BindPipelineCommand{Pipeline: p}, nil
	})
	if err != nil {
		return graph.Nil, err
	}
	p := bind.Pipeline

	d.Binding = 0
	desc, err := s.imageDescriptor(d)
	if err != nil {
		return graph.Nil, err
	}
	set, _, err := s.descriptorSets.GetOrBuild(p.ID+"#"+d.ID, func() (*graph.BindDescriptorSetCommand, error) {
		ds, err := graph.BuildDescriptorSet(s.dev.device, p, 0, []graph.Descriptor{desc})
		if err != nil {
			return nil, err
		}
		return &graph.BindDescriptorSetCommand{Pipeline: p, Set: ds}, nil
	})
	if err != nil {
		return graph.Nil, err
	}

	verts, err := extarray.NewFloat32(extarray.TypeVec3, skyboxVertices)
	if err != nil {
		return graph.Nil, err
	}
	indices, err := extarray.Indices(skyboxIndices, false)
	if err != nil {
		return graph.Nil, err
	}
	xf := s.graph.Add(graph.Node{Kind: graph.KindTransform, Matrix: skyboxRotation})
	sg := s.graph.Add(graph.Node{Kind: graph.KindStateGroup})
	draw := s.graph.Add(graph.Node{Kind: graph.KindVertexIndexDraw, Draw: &graph.Draw{
		Arrays:        []*extarray.Array{verts},
		Indices:       indices,
		IndexCount:    uint32(len(skyboxIndices)),
		InstanceCount: 1,
	}})
	for _, err := range []error{
		s.graph.AddStateCommand(sg, bind),
		s.graph.AddStateCommand(sg, set),
		s.graph.Attach(sg, draw),
		s.graph.Attach(xf, sg),
	} {
		if err != nil {
			return graph.Nil, err
		}
	}
	return xf, nil
}
