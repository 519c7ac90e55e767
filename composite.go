package mockup

import (
	"fmt"
	"math"
)

// BlendMode defines how warped creative pixels are blended with the
// frame pixels underneath.
type BlendMode uint8

const (
	// BlendNormal performs standard alpha blending (creative over frame).
	BlendNormal BlendMode = iota

	// BlendMultiply multiplies creative and frame colors before alpha
	// blending. Result is always darker or equal; useful for creatives
	// that should pick up the texture of the underlying surface.
	BlendMultiply
)

// String returns a string representation of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	default:
		return "Unknown"
	}
}

// CompositeOptions specifies parameters for a single composite.
type CompositeOptions struct {
	// Opacity controls the overall transparency of the creative,
	// 0 (invisible) to 100 (fully opaque). The value is clamped.
	Opacity int

	// Blend specifies how creative pixels are combined with the frame.
	// Default is BlendNormal.
	Blend BlendMode
}

// DefaultCompositeOptions returns fully opaque normal blending.
func DefaultCompositeOptions() CompositeOptions {
	return CompositeOptions{Opacity: 100, Blend: BlendNormal}
}

// Composite perspective-warps the creative into the quad region of dst
// and alpha-blends it in place. dst keeps its dimensions; pixels
// outside the quad are never touched.
//
// The warp is an inverse mapping: every destination pixel center inside
// the quad is mapped back through the inverse homography into the
// creative's rectangle and sampled bilinearly. Quad edges are clipped
// hard (no feathering); the result is fully deterministic.
func Composite(dst *Pixmap, quad Quad, creative *Pixmap, opts CompositeOptions) error {
	if !quad.IsValid() {
		return fmt.Errorf("%w: area %.2f px²", ErrInvalidQuad, quad.Area())
	}

	srcW := float64(creative.Width())
	srcH := float64(creative.Height())

	fwd, err := SolveHomography(srcW, srcH, quad)
	if err != nil {
		return err
	}
	inv, ok := fwd.Invert()
	if !ok {
		return ErrInvalidQuad
	}

	opacity := float64(clampInt(opts.Opacity, 0, 100)) / 100.0

	// Scan only the quad's bounding box, clamped to the frame extent.
	box := quad.Bounds().Intersect(Rect{Width: dst.Width(), Height: dst.Height()})
	if box.Empty() {
		return nil
	}

	for y := box.Y; y < box.Y+box.Height; y++ {
		for x := box.X; x < box.X+box.Width; x++ {
			center := Pt(float64(x)+0.5, float64(y)+0.5)
			if !quad.Contains(center) {
				continue
			}

			src := inv.Apply(center)
			// Rounding at quad corners can land a hair outside the
			// creative rectangle; those pixels are skipped.
			if src.X < 0 || src.X >= srcW || src.Y < 0 || src.Y >= srcH {
				continue
			}

			sr, sg, sb, sa := sampleBilinear(creative, src.X-0.5, src.Y-0.5)

			// The creative's own alpha multiplies into the requested
			// opacity before blending.
			alpha := opacity * float64(sa) / 255.0
			if alpha <= 0 {
				continue
			}

			br, bg, bb, ba := dst.RGBAAt(x, y)

			if opts.Blend == BlendMultiply {
				sr = uint8(int(sr) * int(br) / 255)
				sg = uint8(int(sg) * int(bg) / 255)
				sb = uint8(int(sb) * int(bb) / 255)
			}

			dst.SetRGBA(x, y,
				blendChannel(br, sr, alpha),
				blendChannel(bg, sg, alpha),
				blendChannel(bb, sb, alpha),
				blendChannel(ba, 255, alpha),
			)
		}
	}
	return nil
}

// CompositeCopy is like Composite but leaves base untouched and
// returns a new pixmap with the creative composited in.
func CompositeCopy(base *Pixmap, quad Quad, creative *Pixmap, opts CompositeOptions) (*Pixmap, error) {
	out := base.Clone()
	if err := Composite(out, quad, creative, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// blendChannel blends a single channel: out = base*(1-α) + src*α.
func blendChannel(base, src uint8, alpha float64) uint8 {
	return uint8(math.Round(float64(base)*(1-alpha) + float64(src)*alpha))
}

// sampleBilinear samples the pixmap at continuous pixel coordinates
// (fx, fy), already shifted so integer values address pixel centers.
// Interpolates between the 4 neighboring pixels using linear weights;
// coordinates past the edge clamp to the border pixel.
func sampleBilinear(p *Pixmap, fx, fy float64) (r, g, b, a uint8) {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := x0 + 1
	y1 := y0 + 1

	w := p.Width()
	h := p.Height()
	x0 = clampInt(x0, 0, w-1)
	y0 = clampInt(y0, 0, h-1)
	x1 = clampInt(x1, 0, w-1)
	y1 = clampInt(y1, 0, h-1)

	r00, g00, b00, a00 := p.RGBAAt(x0, y0)
	r10, g10, b10, a10 := p.RGBAAt(x1, y0)
	r01, g01, b01, a01 := p.RGBAAt(x0, y1)
	r11, g11, b11, a11 := p.RGBAAt(x1, y1)

	// Rounding (rather than truncating) keeps integer-aligned warps
	// pixel-exact in the presence of float noise from the solve.
	r = uint8(math.Round(lerp2D(float64(r00), float64(r10), float64(r01), float64(r11), tx, ty)))
	g = uint8(math.Round(lerp2D(float64(g00), float64(g10), float64(g01), float64(g11), tx, ty)))
	b = uint8(math.Round(lerp2D(float64(b00), float64(b10), float64(b01), float64(b11), tx, ty)))
	a = uint8(math.Round(lerp2D(float64(a00), float64(a10), float64(a01), float64(a11), tx, ty)))
	return r, g, b, a
}

// lerp2D performs bilinear interpolation between 4 corner values.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

// clampInt clamps v to the range [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
