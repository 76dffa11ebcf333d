package remote

import (
	"bytes"
	"image/png"
	"net/rpc"

	"veil/pkg/pixbuf"
)

func New(addr string) (Converter, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

// Client runs conversions on a remote veild instance.
type Client struct {
	rpc *rpc.Client
}

func (c *Client) Convert(src *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, src.Image()); err != nil {
		return nil, err
	}

	var resp ConvertResponse
	if err := c.rpc.Call("Service.Convert", &ConvertRequest{Image: buf.Bytes()}, &resp); err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewBuffer(resp.Image))
	if err != nil {
		return nil, err
	}

	return pixbuf.FromImage(img), nil
}
