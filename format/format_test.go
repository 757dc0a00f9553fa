package format

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestVertexSizes(t *testing.T) {
	tests := []struct {
		f    Format
		size int
	}{
		{R32Sfloat, 4},
		{R32G32Sfloat, 8},
		{R32G32B32Sfloat, 12},
		{R32G32B32A32Sfloat, 16},
		{R8Uint, 1},
		{R8G8Uint, 2},
		{R8G8B8Uint, 3},
		{R8G8B8A8Uint, 4},
		{R16Uint, 2},
		{R16G16Uint, 4},
		{R16G16B16A16Uint, 8},
		{Undefined, 0},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := tt.f.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
		})
	}
}

func TestBlockVolume1Sizes(t *testing.T) {
	// Every packed size class appears in the table.
	want := map[uint32]bool{8: false, 16: false, 24: false, 32: false, 48: false, 64: false, 96: false, 128: false, 192: false, 256: false}
	for _, f := range All() {
		info, _ := Lookup(f)
		if info.Class != ClassBlockVolume1 {
			continue
		}
		if info.BlockWidth != 1 || info.BlockHeight != 1 {
			t.Errorf("%v: block %dx%d, want 1x1", f, info.BlockWidth, info.BlockHeight)
		}
		if _, ok := want[info.BlockBits]; ok {
			want[info.BlockBits] = true
		}
	}
	for bits, seen := range want {
		if !seen {
			t.Errorf("no block-volume-1 format with %d bits", bits)
		}
	}
}

func TestCompressedBlocks(t *testing.T) {
	tests := []struct {
		f          Format
		bits, w, h uint32
	}{
		{BC1RGBAUnorm, 64, 4, 4},
		{BC3Unorm, 128, 4, 4},
		{BC7Srgb, 128, 4, 4},
		{ETC2R8G8B8Unorm, 64, 4, 4},
		{ETC2R8G8B8A8Unorm, 128, 4, 4},
		{EACR11G11Unorm, 128, 4, 4},
		{ASTC5x4Unorm, 128, 5, 4},
		{ASTC10x8Srgb, 128, 10, 8},
		{ASTC12x12Unorm, 128, 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			info, ok := Lookup(tt.f)
			if !ok {
				t.Fatal("Lookup() failed")
			}
			if info.Class != ClassCompressed {
				t.Errorf("Class = %v, want Compressed", info.Class)
			}
			if info.BlockBits != tt.bits || info.BlockWidth != tt.w || info.BlockHeight != tt.h {
				t.Errorf("block = %d bits %dx%d, want %d bits %dx%d",
					info.BlockBits, info.BlockWidth, info.BlockHeight, tt.bits, tt.w, tt.h)
			}
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	f := Format(9999)
	if _, ok := Lookup(f); ok {
		t.Error("Lookup(9999) succeeded")
	}
	if f.Class() != ClassUnsupported {
		t.Errorf("Class() = %v, want Unsupported", f.Class())
	}
	if f.String() != "Format(9999)" {
		t.Errorf("String() = %q", f.String())
	}
}

func TestGPUMappings(t *testing.T) {
	if v, ok := R32G32B32Sfloat.VertexFormat(); !ok || v != gputypes.VertexFormatFloat32x3 {
		t.Errorf("R32G32B32Sfloat.VertexFormat() = %v, %v", v, ok)
	}
	if v, ok := R8G8B8A8Uint.VertexFormat(); !ok || v.Size() != 4 {
		t.Errorf("R8G8B8A8Uint.VertexFormat() = %v, %v", v, ok)
	}
	for _, f := range []Format{R8Uint, R8G8B8Uint, R16Uint} {
		if _, ok := f.VertexFormat(); ok {
			t.Errorf("%v.VertexFormat() should have no GPU equivalent", f)
		}
	}
	if tf, ok := R8G8B8A8Srgb.TextureFormat(); !ok || !tf.IsSrgb() {
		t.Errorf("R8G8B8A8Srgb.TextureFormat() = %v, %v", tf, ok)
	}
	if _, ok := R8G8B8Unorm.TextureFormat(); ok {
		t.Error("R8G8B8Unorm should have no GPU texture format")
	}
	// Vertex mapping sizes agree with the table.
	for _, f := range All() {
		if v, ok := f.VertexFormat(); ok && int(v.Size()) != f.Size() {
			t.Errorf("%v: vertex format size %d, table size %d", f, v.Size(), f.Size())
		}
	}
}

func TestParse(t *testing.T) {
	for _, f := range All() {
		got, ok := Parse(f.String())
		if !ok || got != f {
			t.Errorf("Parse(%q) = %v, %v", f.String(), got, ok)
		}
	}
}
