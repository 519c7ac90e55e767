package mockup

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	// Registers the WebP decoder with image.Decode; scaffold photos
	// frequently arrive from the asset store as WebP.
	_ "golang.org/x/image/webp"
)

// JPEGQuality is the encoder quality used for "jpg" output.
const JPEGQuality = 92

// Pixmap represents a rectangular pixel buffer in non-premultiplied
// RGBA format, 4 bytes per pixel. All compositing happens on Pixmaps;
// compressed encodings exist only at the service boundary.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a new pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA format).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// Clone returns a deep copy of the pixmap. The composer works on a
// clone so the caller's frame image is never mutated.
func (p *Pixmap) Clone() *Pixmap {
	out := NewPixmap(p.width, p.height)
	copy(out.data, p.data)
	return out
}

// RGBAAt returns the color channels of a single pixel. Out-of-bounds
// reads return transparent black.
func (p *Pixmap) RGBAAt(x, y int) (r, g, b, a uint8) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0, 0, 0, 0
	}
	i := (y*p.width + x) * 4
	return p.data[i], p.data[i+1], p.data[i+2], p.data[i+3]
}

// SetRGBA sets the color channels of a single pixel. Out-of-bounds
// writes are ignored.
func (p *Pixmap) SetRGBA(x, y int, r, g, b, a uint8) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i] = r
	p.data[i+1] = g
	p.data[i+2] = b
	p.data[i+3] = a
}

// Fill fills the entire pixmap with a color.
func (p *Pixmap) Fill(c color.NRGBA) {
	for i := 0; i < len(p.data); i += 4 {
		p.data[i] = c.R
		p.data[i+1] = c.G
		p.data[i+2] = c.B
		p.data[i+3] = c.A
	}
}

// ToImage converts the pixmap to an image.NRGBA sharing no storage
// with the pixmap.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	r, g, b, a := p.RGBAAt(x, y)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}

// FromImage creates a pixmap from a standard image.Image.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	// Fast path for NRGBA images (what the decoders usually produce).
	if nrgba, ok := img.(*image.NRGBA); ok {
		if nrgba.Stride == width*4 {
			copy(pm.data, nrgba.Pix)
			return pm
		}
		for y := range height {
			srcStart := y * nrgba.Stride
			copy(pm.data[y*width*4:], nrgba.Pix[srcStart:srcStart+width*4])
		}
		return pm
	}

	// Generic slow path for any image type.
	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			pm.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}
	return pm
}

// Decode decodes an image from the reader, auto-detecting the format.
// Supported formats: PNG, JPEG, WebP.
func Decode(r io.Reader) (*Pixmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("mockup: decode image: %w", err)
	}
	return FromImage(img), nil
}

// DecodeBytes decodes an image from a byte slice, auto-detecting the
// format.
func DecodeBytes(data []byte) (*Pixmap, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// LoadImage loads an image from a file, auto-detecting the format.
func LoadImage(path string) (*Pixmap, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("mockup: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// EncodePNG encodes the pixmap as PNG to the given writer.
func (p *Pixmap) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, p.ToImage()); err != nil {
		return fmt.Errorf("mockup: encode PNG: %w", err)
	}
	return nil
}

// EncodeJPEG encodes the pixmap as JPEG to the given writer with the
// given quality (1-100).
func (p *Pixmap) EncodeJPEG(w io.Writer, quality int) error {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if err := jpeg.Encode(w, p.ToImage(), &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("mockup: encode JPEG: %w", err)
	}
	return nil
}

// Encode encodes the pixmap in the named output format ("png" or
// "jpg"/"jpeg") and returns the bytes.
func (p *Pixmap) Encode(format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := p.EncodePNG(&buf); err != nil {
			return nil, err
		}
	case "jpg", "jpeg":
		if err := p.EncodeJPEG(&buf, JPEGQuality); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("mockup: create file: %w", err)
	}

	if err := p.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
