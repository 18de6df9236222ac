package jpegquality

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// createTestJPEG creates a JPEG image with specified quality for testing
func createTestJPEG(t *testing.T, width, height, quality int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	// Create a gradient pattern
	for y := range height {
		for x := range width {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(((x + y) * 255) / (width + height))
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

func TestNew_ValidJPEG(t *testing.T) {
	data := createTestJPEG(t, 100, 100, 85)

	qr, err := New(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	quality := qr.Quality()
	if quality < 1 || quality > 100 {
		t.Errorf("quality out of range: got %d", quality)
	}
}

func TestNewWithBytes_ValidJPEG(t *testing.T) {
	data := createTestJPEG(t, 100, 100, 90)

	qr, err := NewWithBytes(data)
	if err != nil {
		t.Fatalf("NewWithBytes failed: %v", err)
	}

	quality := qr.Quality()
	if quality < 1 || quality > 100 {
		t.Errorf("quality out of range: got %d", quality)
	}
}

func TestQuality_HighQuality(t *testing.T) {
	data := createTestJPEG(t, 100, 100, 95)

	qr, err := NewWithBytes(data)
	if err != nil {
		t.Fatalf("NewWithBytes failed: %v", err)
	}

	if quality := qr.Quality(); quality < 85 {
		t.Errorf("expected high quality (>=85), got %d", quality)
	}
}

func TestQuality_LowQuality(t *testing.T) {
	data := createTestJPEG(t, 100, 100, 50)

	qr, err := NewWithBytes(data)
	if err != nil {
		t.Fatalf("NewWithBytes failed: %v", err)
	}

	if quality := qr.Quality(); quality > 60 {
		t.Errorf("expected low quality (<=60), got %d", quality)
	}
}

func TestQuality_Ordering(t *testing.T) {
	// detected quality must grow with encoding quality
	low, err := NewWithBytes(createTestJPEG(t, 100, 100, 40))
	if err != nil {
		t.Fatal(err)
	}
	high, err := NewWithBytes(createTestJPEG(t, 100, 100, 90))
	if err != nil {
		t.Fatal(err)
	}
	if low.Quality() >= high.Quality() {
		t.Errorf("quality ordering broken: q40 detected as %d, q90 as %d", low.Quality(), high.Quality())
	}
}

func TestNew_InvalidData(t *testing.T) {
	_, err := New(bytes.NewReader([]byte("not a jpeg image")))
	if !errors.Is(err, ErrInvalidJPEG) {
		t.Errorf("expected ErrInvalidJPEG, got %v", err)
	}
}

func TestNewWithBytes_InvalidData(t *testing.T) {
	_, err := NewWithBytes([]byte("this is not jpeg"))
	if !errors.Is(err, ErrInvalidJPEG) {
		t.Errorf("expected ErrInvalidJPEG, got %v", err)
	}
}

func TestNew_EmptyData(t *testing.T) {
	if _, err := New(bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestNew_IncompleteJPEG(t *testing.T) {
	// valid SOI but nothing behind it
	if _, err := NewWithBytes([]byte{0xff, 0xd8, 0xff}); err == nil {
		t.Error("expected error for incomplete JPEG")
	}
}

func TestNew_JPEGWithoutDQT(t *testing.T) {
	// SOI immediately followed by EOI, no quantization table
	_, err := NewWithBytes([]byte{0xff, 0xd8, 0xff, 0xd9})
	if !errors.Is(err, ErrNoQuantTable) {
		t.Errorf("expected ErrNoQuantTable, got %v", err)
	}
}

func TestQuality_DifferentImageSizes(t *testing.T) {
	sizes := []struct {
		width  int
		height int
	}{
		{50, 50},
		{100, 100},
		{200, 150},
		{300, 200},
	}

	for _, size := range sizes {
		data := createTestJPEG(t, size.width, size.height, 85)

		qr, err := NewWithBytes(data)
		if err != nil {
			t.Fatalf("NewWithBytes failed for size %dx%d: %v", size.width, size.height, err)
		}

		if quality := qr.Quality(); quality < 1 || quality > 100 {
			t.Errorf("invalid quality %d for size %dx%d", quality, size.width, size.height)
		}
	}
}

func BenchmarkQualityDetection(b *testing.B) {
	data := createTestJPEG(&testing.T{}, 200, 200, 85)

	b.ResetTimer()
	for b.Loop() {
		qr, err := NewWithBytes(data)
		if err != nil {
			b.Fatalf("NewWithBytes failed: %v", err)
		}
		_ = qr.Quality()
	}
}
