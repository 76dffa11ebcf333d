package store

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/xfmoulet/qoi"

	"veil/pkg/pixbuf"
)

const qoiMagic = "qoif"

func decodeBytes(bs []byte) (image.Image, error) {
	if len(bs) >= len(qoiMagic) && string(bs[:len(qoiMagic)]) == qoiMagic {
		return qoi.Decode(bytes.NewReader(bs))
	}
	return imaging.Decode(bytes.NewReader(bs), imaging.AutoOrientation(true))
}

func encode(w io.Writer, buf *pixbuf.Buffer, ext string) error {
	img := buf.Image()
	switch ext {
	case ".jpg", ".jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(95))
	case ".qoi":
		return qoi.Encode(w, img)
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}

func formatKnown(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".qoi":
		return true
	}
	return false
}

// formatHasAlpha reports whether the format can carry transparency.
func formatHasAlpha(ext string) bool {
	switch ext {
	case ".png", ".qoi":
		return true
	}
	return false
}
