package transform

import (
	"errors"
	"testing"

	"veil/pkg/pixbuf"
)

// red, green, blue, white
func makePrimaries() *pixbuf.Buffer {
	b, _ := pixbuf.New(2, 2, pixbuf.RGB)
	copy(b.Pix, []uint8{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	})
	return b
}

func TestGrayscale_AveragePrimaries(t *testing.T) {
	gray, err := NewGrayscaler(WithMethod(MethodAverage)).Apply(makePrimaries())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []uint8{85, 85, 85, 255}
	for i, v := range want {
		if gray.Pix[i] != v {
			t.Fatalf("pix[%d] = %d, want %d", i, gray.Pix[i], v)
		}
	}
}

func TestGrayscale_Shape(t *testing.T) {
	for _, tc := range []struct {
		name     string
		channels int
	}{
		{name: "rgb", channels: pixbuf.RGB},
		{name: "rgba", channels: pixbuf.RGBA},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src, err := pixbuf.New(5, 4, tc.channels)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for i := range src.Pix {
				src.Pix[i] = uint8(i * 7)
			}

			gray, err := NewGrayscaler().Apply(src)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if gray.W != src.W || gray.H != src.H || gray.C != pixbuf.Gray {
				t.Fatalf("unexpected shape %dx%dx%d", gray.W, gray.H, gray.C)
			}
		})
	}
}

func TestGrayscale_InvalidChannels(t *testing.T) {
	src, _ := pixbuf.New(3, 3, pixbuf.Gray)
	if _, err := NewGrayscaler().Apply(src); !errors.Is(err, pixbuf.ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
}

// Re-applying the converter to its own (replicated) output must not
// shift the values by more than rounding.
func TestGrayscale_Idempotent(t *testing.T) {
	for _, tc := range []struct {
		name   string
		method GrayMethod
	}{
		{name: "luminosity", method: MethodLuminosity},
		{name: "average", method: MethodAverage},
		{name: "linear", method: MethodLinear},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src, _ := pixbuf.New(8, 8, pixbuf.RGB)
			for i := range src.Pix {
				src.Pix[i] = uint8((i * 37) % 256)
			}

			g := NewGrayscaler(WithMethod(tc.method))
			first, err := g.Apply(src)
			if err != nil {
				t.Fatalf("first Apply: %v", err)
			}
			second, err := g.Apply(first.RGBA())
			if err != nil {
				t.Fatalf("second Apply: %v", err)
			}

			for i := range first.Pix {
				d := int(first.Pix[i]) - int(second.Pix[i])
				if d < -1 || d > 1 {
					t.Fatalf("pix[%d] drifted: %d -> %d", i, first.Pix[i], second.Pix[i])
				}
			}
		})
	}
}

func TestDesaturate(t *testing.T) {
	src, _ := pixbuf.New(2, 1, pixbuf.RGBA)
	copy(src.Pix, []uint8{200, 100, 0, 255, 10, 20, 30, 128})

	t.Run("full", func(t *testing.T) {
		out, err := Desaturate(src, 1, MethodAverage)
		if err != nil {
			t.Fatalf("Desaturate: %v", err)
		}
		if out.Pix[0] != 100 || out.Pix[1] != 100 || out.Pix[2] != 100 {
			t.Fatalf("pixel 0 = %v, want 100s", out.Pix[:3])
		}
		if out.Pix[3] != 255 || out.Pix[7] != 128 {
			t.Fatal("alpha must be preserved")
		}
	})

	t.Run("none", func(t *testing.T) {
		out, err := Desaturate(src, 0, MethodAverage)
		if err != nil {
			t.Fatalf("Desaturate: %v", err)
		}
		for i := range src.Pix {
			if out.Pix[i] != src.Pix[i] {
				t.Fatalf("pix[%d] changed with factor 0", i)
			}
		}
	})

	t.Run("out_of_range", func(t *testing.T) {
		if _, err := Desaturate(src, 1.5, MethodAverage); err == nil {
			t.Fatal("want error for factor > 1")
		}
		if _, err := Desaturate(src, -0.1, MethodAverage); err == nil {
			t.Fatal("want error for factor < 0")
		}
	})
}
