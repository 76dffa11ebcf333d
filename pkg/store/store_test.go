package store

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"veil/pkg/pixbuf"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithFs(afero.NewMemMapFs())}, opts...)
	s, err := New("", zap.NewNop(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func makeTestBuffer(w, h int) *pixbuf.Buffer {
	b, _ := pixbuf.New(w, h, pixbuf.RGBA)
	for i := 0; i < w*h; i++ {
		off := i * 4
		b.Pix[off] = uint8(i * 23)
		b.Pix[off+1] = uint8(i * 47)
		b.Pix[off+2] = uint8(i * 89)
		b.Pix[off+3] = uint8(255 - i)
	}
	return b
}

func TestSaveLoad_PNG(t *testing.T) {
	s := newTestStore(t)
	src := makeTestBuffer(8, 6)

	written, err := s.Save("out.png", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != "out.png" {
		t.Fatalf("written = %q, want out.png", written)
	}

	back, err := s.Load(written)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.W != src.W || back.H != src.H || back.C != pixbuf.RGBA {
		t.Fatalf("unexpected shape %dx%dx%d", back.W, back.H, back.C)
	}
	for i := range src.Pix {
		if back.Pix[i] != src.Pix[i] {
			t.Fatalf("pix[%d] = %d, want %d", i, back.Pix[i], src.Pix[i])
		}
	}
}

func TestSaveLoad_QOI(t *testing.T) {
	s := newTestStore(t)
	src := makeTestBuffer(8, 8)

	written, err := s.Save("out.qoi", src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != "out.qoi" {
		t.Fatalf("written = %q, want out.qoi", written)
	}

	back, err := s.Load(written)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.W != src.W || back.H != src.H {
		t.Fatalf("unexpected size %dx%d", back.W, back.H)
	}
}

func TestSave_AutoRename(t *testing.T) {
	s := newTestStore(t)
	buf := makeTestBuffer(4, 4)

	first, err := s.Save("img.png", buf)
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second, err := s.Save("img.png", buf)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if first != "img.png" || second != "img_1.png" {
		t.Fatalf("got %q then %q, want img.png then img_1.png", first, second)
	}
}

func TestSave_Overwrite(t *testing.T) {
	s := newTestStore(t, WithOverwrite())
	buf := makeTestBuffer(4, 4)

	for i := 0; i < 2; i++ {
		written, err := s.Save("img.png", buf)
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
		if written != "img.png" {
			t.Fatalf("written = %q, want img.png", written)
		}
	}
}

func TestSave_TransparentToJPEG(t *testing.T) {
	t.Run("retargets_to_png", func(t *testing.T) {
		s := newTestStore(t)
		written, err := s.Save("out.jpg", makeTestBuffer(4, 4))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if written != "out.png" {
			t.Fatalf("written = %q, want out.png", written)
		}
	})

	t.Run("strips_alpha", func(t *testing.T) {
		s := newTestStore(t, WithAlphaStrip())
		written, err := s.Save("out.jpg", makeTestBuffer(4, 4))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if written != "out.jpg" {
			t.Fatalf("written = %q, want out.jpg", written)
		}

		back, err := s.Load(written)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !back.Opaque() {
			t.Fatal("jpeg roundtrip must be opaque")
		}
	})
}

func TestSave_NestedDir(t *testing.T) {
	s := newTestStore(t)
	src := makeTestBuffer(4, 4)

	dst := filepath.Join("sub", "dir", "out.png")
	written, err := s.Save(dst, src)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != dst {
		t.Fatalf("written = %q, want %q", written, dst)
	}

	back, err := s.Load(written)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !back.SameSize(src) {
		t.Fatal("roundtrip changed dimensions")
	}
}

func TestSave_UnknownFormat(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("out.tiff", makeTestBuffer(2, 2)); err == nil {
		t.Fatal("want error for unsupported format")
	}
}

func TestLoad_MaxSize(t *testing.T) {
	mem := afero.NewMemMapFs()

	big := newTestStore(t, WithFs(mem))
	if _, err := big.Save("big.png", makeTestBuffer(32, 32)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	small := newTestStore(t, WithFs(mem), WithMaxSize(8))
	back, err := small.Load("big.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.W != 8 || back.H != 8 {
		t.Fatalf("size = %dx%d, want 8x8", back.W, back.H)
	}
}
