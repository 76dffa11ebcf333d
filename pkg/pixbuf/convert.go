package pixbuf

import (
	"image"
	"image/draw"
)

// FromImage copies any image.Image into a 4-channel buffer with
// non-premultiplied 8-bit channels and bounds starting at (0,0).
func FromImage(src image.Image) *Buffer {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	out := &Buffer{W: b.Dx(), H: b.Dy(), C: RGBA, Pix: make([]uint8, len(dst.Pix))}
	copy(out.Pix, dst.Pix)
	return out
}

// Image renders the buffer as a stdlib image: *image.Gray for
// single-channel buffers, *image.NRGBA otherwise.
func (b *Buffer) Image() image.Image {
	if b.C == Gray {
		img := image.NewGray(b.Bounds())
		copy(img.Pix, b.Pix)
		return img
	}

	img := image.NewNRGBA(b.Bounds())
	if b.C == RGBA {
		copy(img.Pix, b.Pix)
		return img
	}
	copy(img.Pix, b.RGBA().Pix)
	return img
}
