package remote

import "veil/pkg/pixbuf"

// Converter is the pipeline surface exposed over RPC. The local
// pipeline and the remote client both implement it.
type Converter interface {
	Convert(src *pixbuf.Buffer) (*pixbuf.Buffer, error)
}

// ConvertRequest carries a PNG-encoded source image.
type ConvertRequest struct {
	Image []byte
}

// ConvertResponse carries the PNG-encoded result.
type ConvertResponse struct {
	Image []byte
}
