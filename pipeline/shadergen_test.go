package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
)

func TestDefines(t *testing.T) {
	got := Defines(AttrVertex|AttrNormal|AttrTexCoord0, ModeLighting|ModeDiffuseMap)
	want := []string{"VSG_POSITION", "VSG_NORMAL", "VSG_TEXCOORD0", "VSG_LIGHTING", "VSG_DIFFUSE_MAP"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Defines() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateShaders(t *testing.T) {
	stages := GenerateShaders(AttrNormal|AttrColor, ModeLighting)
	if len(stages) != 2 {
		t.Fatalf("len(GenerateShaders()) = %d, want 2", len(stages))
	}
	if stages[0].Stage != gputypes.ShaderStageVertex || stages[1].Stage != gputypes.ShaderStageFragment {
		t.Errorf("stages = %v, %v", stages[0].Stage, stages[1].Stage)
	}
	// Position is always present even when not requested.
	if !strings.Contains(stages[0].Source, "@location(0) position: vec3<f32>") {
		t.Error("vertex source lacks position at location 0")
	}
	if !strings.Contains(stages[0].Source, "@location(2) color: vec4<f32>") {
		t.Error("vertex source lacks color at location 2")
	}

	for _, st := range stages {
		src, err := Preprocess(st.Source, st.Defines)
		if err != nil {
			t.Fatalf("Preprocess(%v) error = %v", st.Stage, err)
		}
		if strings.Contains(src, "#") {
			t.Errorf("%v source still has directives after preprocessing", st.Stage)
		}
	}
}

func TestGenerateShadersBillboard(t *testing.T) {
	stages := GenerateShaders(AttrVertex, ModeBillboard)
	src, err := Preprocess(stages[0].Source, stages[0].Defines)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "center") {
		t.Error("billboard vertex source should offset from the view-space center")
	}
}

func TestGeneratedTraitsMatchBindings(t *testing.T) {
	mode := ModeDiffuseMap | ModeOpacityMap | ModeMaterial | ModeBlend
	tr := GeneratedTraits(AttrStandard, mode)

	if !tr.Alpha {
		t.Error("ModeBlend should request alpha blending")
	}
	if got := len(tr.Attributes); got != 5 {
		t.Errorf("attribute groups = %d, want 5", got)
	}

	s, err := DeriveState(tr, Config{})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 2, 4}
	var got []uint32
	for _, e := range s.SetLayouts[0].Entries {
		got = append(got, e.Binding)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("binding numbers mismatch (-want +got):\n%s", diff)
	}

	frag, err := Preprocess(tr.Stages[1].Source, tr.Stages[1].Defines)
	if err != nil {
		t.Fatal(err)
	}
	for _, decl := range []string{
		"@group(0) @binding(0) var diffuse_tex",
		"@group(0) @binding(1) var diffuse_samp",
		"@group(0) @binding(2) var opacity_tex",
		"@group(0) @binding(4) var<uniform> material",
	} {
		if !strings.Contains(frag, decl) {
			t.Errorf("fragment source lacks %q", decl)
		}
	}
}

func TestGeneratedTraitsNoBindings(t *testing.T) {
	tr := GeneratedTraits(AttrVertex, ModeNone)
	if len(tr.BindingSets) != 0 {
		t.Errorf("BindingSets = %d, want none", len(tr.BindingSets))
	}
	if tr.Alpha {
		t.Error("Alpha set without ModeBlend")
	}
}

func TestGeneratedShadersCompile(t *testing.T) {
	masks := []AttributeMask{
		AttrVertex,
		AttrNormal,
		AttrColor,
		AttrTexCoord0,
		AttrNormal | AttrTangent | AttrTexCoord1 | AttrTexCoord2,
		AttrStandard,
	}
	modes := []ShaderMode{
		ModeNone,
		ModeLighting,
		ModeMaterial,
		ModeBlend,
		ModeBillboard,
		ModeDiffuseMap | ModeOpacityMap,
		ModeLighting | ModeAmbientMap | ModeNormalMap | ModeSpecularMap,
		ModeLighting | ModeMaterial | ModeBlend | ModeDiffuseMap | ModeOpacityMap | ModeAmbientMap | ModeNormalMap | ModeSpecularMap,
	}
	for _, attrs := range masks {
		for _, mode := range modes {
			t.Run(fmt.Sprintf("attrs=%#x/mode=%#x", attrs, mode), func(t *testing.T) {
				for _, st := range GenerateShaders(attrs, mode) {
					words, err := NagaCompiler{}.Compile(st)
					if err != nil {
						t.Fatalf("Compile(%v) error = %v", st.Stage, err)
					}
					if len(words) == 0 || words[0] != 0x07230203 {
						t.Errorf("Compile(%v) returned no SPIR-V module", st.Stage)
					}
				}
			})
		}
	}

	t.Run("skybox", func(t *testing.T) {
		for _, st := range SkyboxShaders() {
			if _, err := (NagaCompiler{}).Compile(st); err != nil {
				t.Errorf("Compile(%v) error = %v", st.Stage, err)
			}
		}
	})
}
