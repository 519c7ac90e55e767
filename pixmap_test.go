package mockup

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestPixmapPixelAccess(t *testing.T) {
	pm := NewPixmap(10, 10)
	pm.SetRGBA(3, 4, 1, 2, 3, 4)

	r, g, b, a := pm.RGBAAt(3, 4)
	if r != 1 || g != 2 || b != 3 || a != 4 {
		t.Errorf("RGBAAt = (%d,%d,%d,%d), want (1,2,3,4)", r, g, b, a)
	}

	// Out-of-bounds access is a no-op / transparent black.
	pm.SetRGBA(-1, 0, 9, 9, 9, 9)
	pm.SetRGBA(10, 10, 9, 9, 9, 9)
	if r, g, b, a := pm.RGBAAt(-1, 0); r|g|b|a != 0 {
		t.Error("out-of-bounds read not transparent")
	}
}

func TestPixmapClone(t *testing.T) {
	pm := solid(5, 5, 100, 100, 100, 255)
	cl := pm.Clone()
	cl.SetRGBA(0, 0, 1, 1, 1, 1)
	if r, _, _, _ := pm.RGBAAt(0, 0); r != 100 {
		t.Error("Clone shares storage with the original")
	}
}

func TestPixmapFill(t *testing.T) {
	pm := NewPixmap(4, 4)
	pm.Fill(color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	r, g, b, a := pm.RGBAAt(3, 3)
	if r != 9 || g != 8 || b != 7 || a != 255 {
		t.Errorf("Fill pixel = (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pm := gradient(17, 13)

	data, err := pm.Encode("png")
	if err != nil {
		t.Fatalf("Encode png: %v", err)
	}
	back, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if !samePixels(pm, back) {
		t.Error("PNG round trip changed pixels")
	}
}

func TestEncodeJPEG(t *testing.T) {
	pm := gradient(16, 16)
	data, err := pm.Encode("jpg")
	if err != nil {
		t.Fatalf("Encode jpg: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	pm := NewPixmap(2, 2)
	if _, err := pm.Encode("gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeBytesEmpty(t *testing.T) {
	if _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("err = %v, want ErrEmptyData", err)
	}
}

func TestFromImageGeneric(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	src.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	pm := FromImage(src)
	r, g, b, _ := pm.RGBAAt(1, 1)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("pixel = (%d,%d,%d), want (10,20,30)", r, g, b)
	}
}

func TestFromImageOffsetBounds(t *testing.T) {
	// Images with a non-zero origin must be normalized to (0,0).
	src := image.NewNRGBA(image.Rect(5, 5, 8, 8))
	src.SetNRGBA(5, 5, color.NRGBA{R: 42, A: 255})
	pm := FromImage(src)
	if pm.Width() != 3 || pm.Height() != 3 {
		t.Fatalf("size = %dx%d, want 3x3", pm.Width(), pm.Height())
	}
	if r, _, _, _ := pm.RGBAAt(0, 0); r != 42 {
		t.Errorf("origin pixel r = %d, want 42", r)
	}
}
