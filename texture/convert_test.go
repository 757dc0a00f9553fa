package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/format"
)

func TestCreateDataEveryFormat(t *testing.T) {
	const w, h = 24, 24
	for _, f := range format.All() {
		t.Run(f.String(), func(t *testing.T) {
			info, _ := format.Lookup(f)
			pixels := make([]byte, w*h*16)
			d, err := CreateData(Spec{Pixels: pixels, Format: f, Width: w, Height: h, Depth: 1})
			if info.ComponentBits == 64 {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("CreateData() error = %v, want ErrUnsupportedFormat", err)
				}
				if d != nil {
					t.Fatal("CreateData() returned data for an unsupported format")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateData() error = %v", err)
			}
			if got := uint32(d.Array.Stride() * 8); got != info.BlockBits {
				t.Errorf("stride = %d bits, want %d", got, info.BlockBits)
			}
			wantW := (w + int(info.BlockWidth) - 1) / int(info.BlockWidth)
			wantH := (h + int(info.BlockHeight) - 1) / int(info.BlockHeight)
			if d.Array.Width() != wantW || d.Array.Height() != wantH {
				t.Errorf("array dims = %dx%d, want %dx%d", d.Array.Width(), d.Array.Height(), wantW, wantH)
			}
			if d.Width != w || d.Height != h {
				t.Errorf("texel dims = %dx%d, want %dx%d", d.Width, d.Height, w, h)
			}
		})
	}
}

func TestCreateDataDispatch(t *testing.T) {
	tests := []struct {
		f    format.Format
		want extarray.Type
	}{
		{format.R8Unorm, extarray.TypeUbyte},
		{format.R8G8Unorm, extarray.TypeUbvec2},
		{format.R8G8B8Srgb, extarray.TypeUbvec3},
		{format.R8G8B8A8Unorm, extarray.TypeUbvec4},
		{format.R16Sfloat, extarray.TypeUshort},
		{format.R16G16B16Uint, extarray.TypeUsvec3},
		{format.R16G16B16A16Sfloat, extarray.TypeUsvec4},
		{format.R32Uint, extarray.TypeUint},
		{format.R32Sfloat, extarray.TypeFloat},
		{format.R32G32B32A32Sfloat, extarray.TypeVec4},
		{format.R32G32B32A32Uint, extarray.TypeUivec4},
		{format.R5G6B5UnormPack16, extarray.TypeUshort},
		{format.BC1RGBAUnorm, extarray.TypeBlock64},
		{format.BC7Unorm, extarray.TypeBlock128},
		{format.ASTC8x8Srgb, extarray.TypeBlock128},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			d, err := CreateData(Spec{Pixels: make([]byte, 1024), Format: tt.f, Width: 4, Height: 4})
			if err != nil {
				t.Fatal(err)
			}
			if d.Array.Type() != tt.want {
				t.Errorf("element type = %v, want %v", d.Array.Type(), tt.want)
			}
		})
	}
}

func TestCreateDataIsZeroCopy(t *testing.T) {
	pixels := make([]byte, 4*4*4)
	d, err := CreateData(Spec{Pixels: pixels, Format: format.R8G8B8A8Unorm, Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	pixels[5] = 200
	if d.Array.Bytes()[5] != 200 {
		t.Error("texture data does not alias the pixel buffer")
	}
	if !d.Array.Borrowed() {
		t.Error("texture array should be borrowed")
	}
}

func TestCreateDataCompressedDims(t *testing.T) {
	// 10x10 texels in 4x4 blocks is 3x3 blocks.
	d, err := CreateData(Spec{Pixels: make([]byte, 9*8), Format: format.BC1RGBUnorm, Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	if d.Array.Width() != 3 || d.Array.Height() != 3 {
		t.Errorf("block dims = %dx%d, want 3x3", d.Array.Width(), d.Array.Height())
	}

	// ASTC 12x10 footprint on 24x20 is 2x2 blocks.
	d, err = CreateData(Spec{Pixels: make([]byte, 4*16), Format: format.ASTC12x10Unorm, Width: 24, Height: 20})
	if err != nil {
		t.Fatal(err)
	}
	if d.Array.Width() != 2 || d.Array.Height() != 2 {
		t.Errorf("block dims = %dx%d, want 2x2", d.Array.Width(), d.Array.Height())
	}
}

func TestCreateDataFailures(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"unknown format", Spec{Pixels: make([]byte, 64), Format: format.Format(7777), Width: 4, Height: 4}, ErrUnsupportedFormat},
		{"undefined format", Spec{Pixels: make([]byte, 64), Format: format.Undefined, Width: 4, Height: 4}, ErrUnsupportedFormat},
		{"64-bit components", Spec{Pixels: make([]byte, 512), Format: format.R64Sfloat, Width: 4, Height: 4}, ErrUnsupportedFormat},
		{"zero width", Spec{Pixels: make([]byte, 64), Format: format.R8Unorm, Width: 0, Height: 4}, ErrInvalidSize},
		{"short buffer", Spec{Pixels: make([]byte, 15), Format: format.R8Unorm, Width: 4, Height: 4}, extarray.ErrShortBuffer},
		{"3D float", Spec{Pixels: make([]byte, 1024), Format: format.R32Sfloat, Width: 4, Height: 4, Depth: 4}, ErrUnsupported3D},
		{"3D rgb8", Spec{Pixels: make([]byte, 1024), Format: format.R8G8B8Unorm, Width: 4, Height: 4, Depth: 4}, ErrUnsupported3D},
		{"3D compressed", Spec{Pixels: make([]byte, 1024), Format: format.BC3Unorm, Width: 4, Height: 4, Depth: 4}, ErrUnsupported3D},
		{"3D packed", Spec{Pixels: make([]byte, 1024), Format: format.R4G4UnormPack8, Width: 4, Height: 4, Depth: 4}, ErrUnsupported3D},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := CreateData(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateData() error = %v, want %v", err, tt.want)
			}
			if d != nil {
				t.Error("CreateData() returned data on failure")
			}
		})
	}
}

func TestCreateData3D(t *testing.T) {
	for _, f := range []format.Format{format.R8Unorm, format.R8G8Unorm, format.R8G8B8A8Unorm} {
		d, err := CreateData(Spec{Pixels: make([]byte, 4*4*4*4), Format: f, Width: 4, Height: 4, Depth: 4})
		if err != nil {
			t.Errorf("CreateData(%v, depth 4) error = %v", f, err)
			continue
		}
		if d.Array.Depth() != 4 {
			t.Errorf("%v: depth = %d, want 4", f, d.Array.Depth())
		}
	}
}

func TestCreateDataDeterministic(t *testing.T) {
	s := Spec{Pixels: make([]byte, 64), Format: format.R8G8B8A8Unorm, Width: 4, Height: 4, MipCount: 3}
	a, errA := CreateData(s)
	b, errB := CreateData(s)
	if errA != nil || errB != nil {
		t.Fatal(errA, errB)
	}
	if a.Array.Type() != b.Array.Type() || a.Array.Len() != b.Array.Len() || a.MipCount != b.MipCount {
		t.Error("CreateData is not deterministic")
	}
}

func TestSamplerFor(t *testing.T) {
	s := SamplerFor(Spec{Wrap: WrapClampToEdge, Filter: FilterLinear, Mipmap: MipmapLinear, Aniso: 8, MipCount: 5})
	if s.AddressModeU != gputypes.AddressModeClampToEdge || s.AddressModeV != s.AddressModeU || s.AddressModeW != s.AddressModeU {
		t.Errorf("address modes = %v %v %v", s.AddressModeU, s.AddressModeV, s.AddressModeW)
	}
	if s.MinFilter != gputypes.FilterModeLinear || s.MagFilter != gputypes.FilterModeLinear {
		t.Errorf("filters = %v %v, want linear", s.MinFilter, s.MagFilter)
	}
	if s.MipmapFilter != gputypes.FilterModeLinear {
		t.Errorf("MipmapFilter = %v, want linear", s.MipmapFilter)
	}
	if s.Anisotropy != 8 {
		t.Errorf("Anisotropy = %d, want 8", s.Anisotropy)
	}
	if s.LodMaxClamp != 5 {
		t.Errorf("LodMaxClamp = %v, want 5", s.LodMaxClamp)
	}

	s = SamplerFor(Spec{Wrap: WrapMirroredRepeat, Aniso: 1, MipCount: 1})
	if s.AddressModeU != gputypes.AddressModeMirrorRepeat {
		t.Errorf("AddressModeU = %v, want MirrorRepeat", s.AddressModeU)
	}
	if s.Anisotropy != 1 || s.LodMaxClamp != 0 {
		t.Errorf("Anisotropy = %d LodMaxClamp = %v, want 1 and 0", s.Anisotropy, s.LodMaxClamp)
	}
	if s.MinFilter != gputypes.FilterModeNearest {
		t.Errorf("MinFilter = %v, want nearest", s.MinFilter)
	}

	if got := SamplerFor(Spec{Aniso: 64}).Anisotropy; got != maxAnisotropy {
		t.Errorf("Anisotropy clamp = %d, want %d", got, maxAnisotropy)
	}
}

func TestSpecFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})

	s := SpecFromImage(src, false)
	if s.Width != 8 || s.Height != 4 || s.MipCount != 1 {
		t.Fatalf("spec = %dx%d mips %d", s.Width, s.Height, s.MipCount)
	}
	if len(s.Pixels) != 8*4*4 {
		t.Errorf("len(Pixels) = %d, want %d", len(s.Pixels), 8*4*4)
	}
	off := 1*8*4 + 1*4
	if s.Pixels[off] != 255 || s.Pixels[off+3] != 255 {
		t.Errorf("pixel (1,1) = %v, want opaque red", s.Pixels[off:off+4])
	}

	m := SpecFromImage(src, true)
	// 8x4, 4x2, 2x1, 1x1
	if m.MipCount != 4 {
		t.Errorf("MipCount = %d, want 4", m.MipCount)
	}
	if want := (32 + 8 + 2 + 1) * 4; len(m.Pixels) != want {
		t.Errorf("len(Pixels) = %d, want %d", len(m.Pixels), want)
	}
	if _, err := CreateData(m); err != nil {
		t.Errorf("CreateData(mip chain) error = %v", err)
	}
}
