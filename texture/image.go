package texture

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/vsgbridge/format"
)

// FromImage converts any decoded image to tightly packed, non-premultiplied
// RGBA8 rows.
func FromImage(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Stride == 4*n.Rect.Dx() && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// MipChain returns the base level followed by successively halved levels
// down to 1x1, concatenated in one buffer, and the level count.
func MipChain(base *image.NRGBA) ([]byte, int) {
	w, h := base.Rect.Dx(), base.Rect.Dy()
	out := make([]byte, 0, len(base.Pix)*4/3+4)
	out = append(out, base.Pix...)
	levels := 1
	prev := base
	for w > 1 || h > 1 {
		w = max(1, w/2)
		h = max(1, h/2)
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		out = append(out, next.Pix...)
		prev = next
		levels++
	}
	return out, levels
}

// SpecFromImage builds an RGBA8 image spec from a decoded image,
// optionally with a full mip chain. The returned spec owns a fresh pixel
// buffer; the caller keeps it alive for as long as the spec is in use.
func SpecFromImage(img image.Image, mipmaps bool) Spec {
	base := FromImage(img)
	s := Spec{
		Pixels:   base.Pix,
		Format:   format.R8G8B8A8Unorm,
		Width:    base.Rect.Dx(),
		Height:   base.Rect.Dy(),
		Depth:    1,
		MipCount: 1,
		Wrap:     WrapRepeat,
		Filter:   FilterLinear,
		Mipmap:   MipmapLinear,
	}
	if mipmaps {
		s.Pixels, s.MipCount = MipChain(base)
	}
	return s
}
