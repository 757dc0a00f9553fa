package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/format"
)

// Assembly errors.
var (
	// ErrNoStages is returned when Traits carries no vertex stage.
	ErrNoStages = errors.New("pipeline: no vertex stage")

	// ErrUnsupportedVertexFormat is returned for attribute formats that
	// have a size but no GPU vertex format equivalent.
	ErrUnsupportedVertexFormat = errors.New("pipeline: unsupported vertex format")

	// ErrBindingConflict is returned when two bindings in a set claim the
	// same number with different descriptor types.
	ErrBindingConflict = errors.New("pipeline: binding conflict")
)

// VertexAttribute is one derived vertex attribute.
type VertexAttribute struct {
	Location uint32
	Offset   uint64
	Format   format.Format
}

// VertexBinding is one derived vertex buffer binding.
type VertexBinding struct {
	Binding    uint32
	Stride     uint64
	Rate       Rate
	Attributes []VertexAttribute
}

// LayoutEntry is one numbered binding of a descriptor set layout.
type LayoutEntry struct {
	Binding       uint32
	Type          DescriptorType
	Count         int
	Stages        gputypes.ShaderStages
	ViewDimension gputypes.TextureViewDimension
}

// SetLayout is a derived descriptor set layout. Entries are sorted by
// binding number.
type SetLayout struct {
	Entries []LayoutEntry
}

// Entry returns the entry with the given binding number.
func (l SetLayout) Entry(binding uint32) (LayoutEntry, bool) {
	for _, e := range l.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return LayoutEntry{}, false
}

// State is the complete declarative pipeline state. It is what gets
// serialized; the GPU objects in Pipeline are rebuilt from it.
type State struct {
	VertexBindings   []VertexBinding
	SetLayouts       []SetLayout
	PushConstantSize uint32
	Topology         gputypes.PrimitiveTopology
	CullMode         gputypes.CullMode
	DepthDisabled    bool
	Blend            []gputypes.BlendState
	ColorFormat      gputypes.TextureFormat
	DepthFormat      gputypes.TextureFormat
	Stages           []ShaderStage
}

// DeriveState computes pipeline state from traits without touching a
// device. It is deterministic for equal inputs.
func DeriveState(t Traits, cfg Config) (State, error) {
	cfg = cfg.withDefaults()

	if stageIndex(t.Stages, gputypes.ShaderStageVertex) < 0 {
		return State{}, ErrNoStages
	}

	bindings, err := VertexLayout(t.Attributes)
	if err != nil {
		return State{}, err
	}

	sets := make([]SetLayout, 0, len(t.BindingSets))
	for i, bs := range t.BindingSets {
		l, err := NumberBindings(bs)
		if err != nil {
			return State{}, fmt.Errorf("set %d: %w", i, err)
		}
		sets = append(sets, l)
	}

	pcs := cfg.PushConstantSize
	if t.PushConstantSize != 0 {
		pcs = t.PushConstantSize
	}

	blend := t.Blend
	if len(blend) == 0 {
		if t.Alpha {
			blend = []gputypes.BlendState{gputypes.BlendStateAlpha()}
		} else {
			blend = []gputypes.BlendState{gputypes.BlendStateReplace()}
		}
	}

	s := State{
		VertexBindings:   bindings,
		SetLayouts:       sets,
		PushConstantSize: pcs,
		Topology:         t.Topology,
		CullMode:         t.CullMode,
		DepthDisabled:    t.DepthDisabled,
		Blend:            append([]gputypes.BlendState(nil), blend...),
		ColorFormat:      cfg.ColorFormat,
		DepthFormat:      cfg.DepthFormat,
		Stages:           append([]ShaderStage(nil), t.Stages...),
	}
	slogger().Debug("pipeline: state derived",
		"vertexBindings", len(s.VertexBindings),
		"sets", len(s.SetLayouts),
		"pushConstants", s.PushConstantSize)
	return s, nil
}

// VertexLayout derives vertex buffer bindings. Per-vertex groups come
// first, then per-instance groups; shader locations increase across all
// groups.
func VertexLayout(groups []AttributeGroup) ([]VertexBinding, error) {
	var out []VertexBinding
	var location uint32
	for _, rate := range []Rate{RateVertex, RateInstance} {
		for _, g := range groups {
			if g.Rate != rate {
				continue
			}
			vb := VertexBinding{Binding: uint32(len(out)), Rate: rate}
			for _, f := range g.Formats {
				if _, ok := f.VertexFormat(); !ok {
					return nil, fmt.Errorf("%w: %v", ErrUnsupportedVertexFormat, f)
				}
				vb.Attributes = append(vb.Attributes, VertexAttribute{
					Location: location,
					Offset:   vb.Stride,
					Format:   f,
				})
				vb.Stride += uint64(f.Size())
				location++
			}
			out = append(out, vb)
		}
	}
	return out, nil
}

// Stride returns the byte stride of one interleaved vertex of formats.
func Stride(formats []format.Format) uint64 {
	var n uint64
	for _, f := range formats {
		n += uint64(f.Size())
	}
	return n
}

// width is the number of binding slots a descriptor type occupies. A
// sampled image is a texture view followed by its sampler.
func (t DescriptorType) width() uint32 {
	if t == DescriptorSampledImage {
		return 2
	}
	return 1
}

// NumberBindings assigns binding numbers to one set. Entries that carry a
// number keep it. Unnumbered entries take the next free slot, walking
// vertex stage entries before fragment stage entries. A number used by
// several stages with the same type becomes one entry visible to all of
// them.
func NumberBindings(bs BindingSet) (SetLayout, error) {
	stages := append([]StageBindings(nil), bs.Stages...)
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Stage < stages[j].Stage })

	byNumber := make(map[uint32]*LayoutEntry)
	used := make(map[uint32]bool)
	var order []uint32

	add := func(n uint32, b Binding, stage gputypes.ShaderStage) error {
		if e, ok := byNumber[n]; ok {
			if e.Type != b.Type {
				return fmt.Errorf("%w: binding %d is %v and %v", ErrBindingConflict, n, e.Type, b.Type)
			}
			e.Stages |= stage
			return nil
		}
		for k := uint32(0); k < b.Type.width(); k++ {
			if used[n+k] {
				return fmt.Errorf("%w: binding %d overlaps slot %d", ErrBindingConflict, n, n+k)
			}
		}
		count := b.Count
		if count <= 0 {
			count = 1
		}
		dim := b.ViewDimension
		if b.Type == DescriptorSampledImage && dim == gputypes.TextureViewDimensionUndefined {
			dim = gputypes.TextureViewDimension2D
		}
		byNumber[n] = &LayoutEntry{Binding: n, Type: b.Type, Count: count, Stages: stage, ViewDimension: dim}
		for k := uint32(0); k < b.Type.width(); k++ {
			used[n+k] = true
		}
		order = append(order, n)
		return nil
	}

	// Caller numbers are claimed first so auto-assignment can skip them.
	for _, sb := range stages {
		for _, b := range sb.Bindings {
			if b.Binding < 0 {
				continue
			}
			if err := add(uint32(b.Binding), b, sb.Stage); err != nil {
				return SetLayout{}, err
			}
		}
	}

	var next uint32
	for _, sb := range stages {
		for _, b := range sb.Bindings {
			if b.Binding >= 0 {
				continue
			}
			for !free(used, next, b.Type.width()) {
				next++
			}
			if err := add(next, b, sb.Stage); err != nil {
				return SetLayout{}, err
			}
			next += b.Type.width()
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	l := SetLayout{Entries: make([]LayoutEntry, 0, len(order))}
	for _, n := range order {
		l.Entries = append(l.Entries, *byNumber[n])
	}
	return l, nil
}

func free(used map[uint32]bool, n, width uint32) bool {
	for k := uint32(0); k < width; k++ {
		if used[n+k] {
			return false
		}
	}
	return true
}

func stageIndex(stages []ShaderStage, s gputypes.ShaderStage) int {
	for i, st := range stages {
		if st.Stage == s {
			return i
		}
	}
	return -1
}
