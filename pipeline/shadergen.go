package pipeline

import (
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/format"
)

// AttributeMask selects the vertex attributes a generated shader reads.
type AttributeMask uint32

// Vertex attributes, in shader location order.
const (
	AttrVertex AttributeMask = 1 << iota
	AttrNormal
	AttrNormalOverall
	AttrTangent
	AttrTangentOverall
	AttrColor
	AttrColorOverall
	AttrTexCoord0
	AttrTexCoord1
	AttrTexCoord2

	AttrStandard = AttrVertex | AttrNormal | AttrTangent | AttrColor | AttrTexCoord0
)

// ShaderMode selects the shading features of a generated shader.
type ShaderMode uint32

// Shading features. Maps are bound in declaration order.
const (
	ModeLighting ShaderMode = 1 << iota
	ModeMaterial
	ModeBlend
	ModeBillboard
	ModeDiffuseMap
	ModeOpacityMap
	ModeAmbientMap
	ModeNormalMap
	ModeSpecularMap

	ModeNone ShaderMode = 0
)

type attrDef struct {
	mask   AttributeMask
	define string
	field  string
	format format.Format
}

// perVertexAttrs lists attributes that become vertex inputs. The overall
// variants are bound once per draw and are not vertex inputs.
var perVertexAttrs = []attrDef{
	{AttrVertex, "VSG_POSITION", "position", format.R32G32B32Sfloat},
	{AttrNormal, "VSG_NORMAL", "normal", format.R32G32B32Sfloat},
	{AttrTangent, "VSG_TANGENT", "tangent", format.R32G32B32A32Sfloat},
	{AttrColor, "VSG_COLOR", "color", format.R32G32B32A32Sfloat},
	{AttrTexCoord0, "VSG_TEXCOORD0", "uv0", format.R32G32Sfloat},
	{AttrTexCoord1, "VSG_TEXCOORD1", "uv1", format.R32G32Sfloat},
	{AttrTexCoord2, "VSG_TEXCOORD2", "uv2", format.R32G32Sfloat},
}

type mapDef struct {
	mode   ShaderMode
	define string
	name   string
}

var textureMaps = []mapDef{
	{ModeDiffuseMap, "VSG_DIFFUSE_MAP", "diffuse"},
	{ModeOpacityMap, "VSG_OPACITY_MAP", "opacity"},
	{ModeAmbientMap, "VSG_AMBIENT_MAP", "ambient"},
	{ModeNormalMap, "VSG_NORMAL_MAP", "normal"},
	{ModeSpecularMap, "VSG_SPECULAR_MAP", "specular"},
}

var modeDefines = []struct {
	mode   ShaderMode
	define string
}{
	{ModeLighting, "VSG_LIGHTING"},
	{ModeMaterial, "VSG_MATERIAL"},
	{ModeBlend, "VSG_BLEND"},
	{ModeBillboard, "VSG_BILLBOARD"},
}

// Defines returns the preprocessor names for a mask combination.
func Defines(attrs AttributeMask, mode ShaderMode) []string {
	var defs []string
	for _, a := range perVertexAttrs {
		if attrs&a.mask != 0 {
			defs = append(defs, a.define)
		}
	}
	for _, m := range modeDefines {
		if mode&m.mode != 0 {
			defs = append(defs, m.define)
		}
	}
	for _, m := range textureMaps {
		if mode&m.mode != 0 {
			defs = append(defs, m.define)
		}
	}
	return defs
}

// GenerateShaders returns default vertex and fragment stages for the
// given attributes and shading mode. Vertex inputs take consecutive
// locations in attribute order; texture maps take consecutive
// texture/sampler binding pairs in set 0, followed by the material
// uniform when ModeMaterial is set.
func GenerateShaders(attrs AttributeMask, mode ShaderMode) []ShaderStage {
	attrs |= AttrVertex
	defs := Defines(attrs, mode)
	return []ShaderStage{
		{
			Stage:      gputypes.ShaderStageVertex,
			EntryPoint: "vs_main",
			Source:     vertexTemplate(attrs),
			Defines:    defs,
		},
		{
			Stage:      gputypes.ShaderStageFragment,
			EntryPoint: "fs_main",
			Source:     fragmentTemplate(mode),
			Defines:    defs,
		},
	}
}

// AttributeGroups returns one per-vertex group for each attribute enabled
// in attrs, in shader location order, so each host array binds as its own
// vertex buffer. The position attribute is always present.
func AttributeGroups(attrs AttributeMask) []AttributeGroup {
	attrs |= AttrVertex
	var groups []AttributeGroup
	for _, a := range perVertexAttrs {
		if attrs&a.mask != 0 {
			groups = append(groups, AttributeGroup{Rate: RateVertex, Formats: []format.Format{a.format}})
		}
	}
	return groups
}

// GeneratedTraits returns traits matching GenerateShaders: the attribute
// groups of AttributeGroups and the set 0 bindings the fragment stage
// reads.
func GeneratedTraits(attrs AttributeMask, mode ShaderMode) Traits {
	attrs |= AttrVertex

	var bindings []Binding
	for _, m := range textureMaps {
		if mode&m.mode != 0 {
			bindings = append(bindings, Binding{Binding: Unassigned, Type: DescriptorSampledImage})
		}
	}
	if mode&ModeMaterial != 0 {
		bindings = append(bindings, Binding{Binding: Unassigned, Type: DescriptorUniformBuffer})
	}

	t := Traits{
		Attributes: AttributeGroups(attrs),
		Stages:     GenerateShaders(attrs, mode),
		Alpha:      mode&ModeBlend != 0,
	}
	if len(bindings) > 0 {
		t.BindingSets = []BindingSet{{Stages: []StageBindings{{
			Stage:    gputypes.ShaderStageFragment,
			Bindings: bindings,
		}}}}
	}
	return t
}

const skyboxVertex = `struct PushConstants {
    projection: mat4x4<f32>,
    modelview: mat4x4<f32>,
}
var<push_constant> pc: PushConstants;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uvw: vec3<f32>,
}

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.uvw = position;
    let rotation = mat3x3<f32>(pc.modelview[0].xyz, pc.modelview[1].xyz, pc.modelview[2].xyz);
    out.position = pc.projection * vec4<f32>(rotation * position, 1.0);
    return out;
}
`

const skyboxFragment = `@group(0) @binding(0) var env_tex: texture_cube<f32>;
@group(0) @binding(1) var env_samp: sampler;

@fragment
fn fs_main(@location(0) uvw: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(textureSampleLevel(env_tex, env_samp, uvw, 0.0).rgb, 1.0);
}
`

// SkyboxShaders returns the stages that draw a cube map around the eye.
// The view translation is dropped so the box never moves with the camera.
func SkyboxShaders() []ShaderStage {
	return []ShaderStage{
		{Stage: gputypes.ShaderStageVertex, EntryPoint: "vs_main", Source: skyboxVertex},
		{Stage: gputypes.ShaderStageFragment, EntryPoint: "fs_main", Source: skyboxFragment},
	}
}

// SkyboxTraits returns traits for SkyboxShaders: vec3 positions, a cube
// sampled image at binding 0, front faces culled so the inside of the box
// is drawn, and no depth test or depth write.
func SkyboxTraits() Traits {
	return Traits{
		Attributes: []AttributeGroup{{Rate: RateVertex, Formats: []format.Format{format.R32G32B32Sfloat}}},
		BindingSets: []BindingSet{{Stages: []StageBindings{{
			Stage: gputypes.ShaderStageFragment,
			Bindings: []Binding{{
				Binding:       0,
				Type:          DescriptorSampledImage,
				ViewDimension: gputypes.TextureViewDimensionCube,
			}},
		}}}},
		Stages:           SkyboxShaders(),
		CullMode:         gputypes.CullModeFront,
		DepthDisabled:    true,
		PushConstantSize: DefaultPushConstantSize,
	}
}

func vertexTemplate(attrs AttributeMask) string {
	var b strings.Builder
	b.WriteString(`struct PushConstants {
    projection: mat4x4<f32>,
    modelview: mat4x4<f32>,
}
var<push_constant> pc: PushConstants;

struct VertexInput {
`)
	loc := 0
	for _, a := range perVertexAttrs {
		if attrs&a.mask == 0 {
			continue
		}
		b.WriteString("    @location(")
		b.WriteString(strconv.Itoa(loc))
		b.WriteString(") ")
		b.WriteString(a.field)
		b.WriteString(": ")
		b.WriteString(wgslType(a.format))
		b.WriteString(",\n")
		loc++
	}
	b.WriteString(`}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) color: vec4<f32>,
    @location(2) uv: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
#ifdef VSG_BILLBOARD
    let center = pc.modelview * vec4<f32>(0.0, 0.0, 0.0, 1.0);
    out.position = pc.projection * (center + vec4<f32>(in.position.xy, 0.0, 0.0));
#else
    out.position = pc.projection * pc.modelview * vec4<f32>(in.position, 1.0);
#endif
#ifdef VSG_NORMAL
    out.normal = (pc.modelview * vec4<f32>(in.normal, 0.0)).xyz;
#else
    out.normal = vec3<f32>(0.0, 0.0, 1.0);
#endif
#ifdef VSG_COLOR
    out.color = in.color;
#else
    out.color = vec4<f32>(1.0, 1.0, 1.0, 1.0);
#endif
#ifdef VSG_TEXCOORD0
    out.uv = in.uv0;
#else
    out.uv = vec2<f32>(0.0, 0.0);
#endif
    return out;
}
`)
	return b.String()
}

func fragmentTemplate(mode ShaderMode) string {
	var b strings.Builder
	b.WriteString(`struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) color: vec4<f32>,
    @location(2) uv: vec2<f32>,
}

struct Material {
    ambient: vec4<f32>,
    diffuse: vec4<f32>,
    specular: vec4<f32>,
    shininess: f32,
}
`)
	binding := 0
	for _, m := range textureMaps {
		if mode&m.mode == 0 {
			continue
		}
		b.WriteString("#ifdef " + m.define + "\n")
		b.WriteString("@group(0) @binding(" + strconv.Itoa(binding) + ") var " + m.name + "_tex: texture_2d<f32>;\n")
		b.WriteString("@group(0) @binding(" + strconv.Itoa(binding+1) + ") var " + m.name + "_samp: sampler;\n")
		b.WriteString("#endif\n")
		binding += 2
	}
	if mode&ModeMaterial != 0 {
		b.WriteString("#ifdef VSG_MATERIAL\n")
		b.WriteString("@group(0) @binding(" + strconv.Itoa(binding) + ") var<uniform> material: Material;\n")
		b.WriteString("#endif\n")
	}
	b.WriteString(`
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    var base = in.color;
#ifdef VSG_MATERIAL
    base = base * material.diffuse;
#endif
#ifdef VSG_DIFFUSE_MAP
    base = base * textureSample(diffuse_tex, diffuse_samp, in.uv);
#endif
#ifdef VSG_OPACITY_MAP
    base.a = base.a * textureSample(opacity_tex, opacity_samp, in.uv).r;
#endif
#ifdef VSG_LIGHTING
    let n = normalize(in.normal);
    let l = normalize(vec3<f32>(0.3, 0.5, 1.0));
    let diffuse = max(dot(n, l), 0.0);
    var ambient = vec3<f32>(0.1, 0.1, 0.1);
#ifdef VSG_AMBIENT_MAP
    ambient = ambient * textureSample(ambient_tex, ambient_samp, in.uv).rgb;
#endif
    base = vec4<f32>(base.rgb * (ambient + vec3<f32>(diffuse, diffuse, diffuse)), base.a);
#endif
#ifndef VSG_BLEND
    base.a = 1.0;
#endif
    return base;
}
`)
	return b.String()
}

func wgslType(f format.Format) string {
	switch f.Size() {
	case 8:
		return "vec2<f32>"
	case 12:
		return "vec3<f32>"
	case 16:
		return "vec4<f32>"
	default:
		return "f32"
	}
}
