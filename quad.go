package mockup

import "math"

// Quad is an ordered set of 4 corner points defining a placement
// region. Corners are conventionally top-left, top-right, bottom-right,
// bottom-left, but any consistent winding of a simple polygon works.
type Quad [4]Point

// Rect represents an axis-aligned rectangular region in pixel coordinates.
type Rect struct {
	X, Y          int // Top-left corner
	Width, Height int // Dimensions
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the intersection of two rectangles.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.Width, o.X+o.Width)
	y1 := min(r.Y+r.Height, o.Y+o.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// RectQuad returns the quad covering the axis-aligned rectangle with
// top-left corner (x, y) and the given dimensions.
func RectQuad(x, y, w, h float64) Quad {
	return Quad{
		Pt(x, y),
		Pt(x+w, y),
		Pt(x+w, y+h),
		Pt(x, y+h),
	}
}

// degenerateAreaEpsilon is the minimum area, in square pixels, below
// which a quad is treated as degenerate.
const degenerateAreaEpsilon = 1.0

// Bounds returns the smallest axis-aligned rectangle containing all 4
// corners, rounded outward to integer pixel bounds.
func (q Quad) Bounds() Rect {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, p := range q[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	x0 := int(math.Floor(minX))
	y0 := int(math.Floor(minY))
	x1 := int(math.Ceil(maxX))
	y1 := int(math.Ceil(maxY))
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Area returns the absolute area of the quad via the shoelace formula.
func (q Quad) Area() float64 {
	sum := 0.0
	for i := range 4 {
		sum += q[i].Cross(q[(i+1)%4])
	}
	return math.Abs(sum) / 2
}

// IsValid reports whether the quad is a simple polygon with area above
// the degeneracy threshold. Self-intersecting ("bowtie") quads and
// quads with near-collinear corners are rejected; convexity is not
// required.
func (q Quad) IsValid() bool {
	if q.Area() < degenerateAreaEpsilon {
		return false
	}
	return !q.selfIntersects()
}

// selfIntersects tests the two pairs of non-adjacent edges against each
// other. For a 4-gon these are the only candidates: adjacent edges
// share an endpoint by construction.
func (q Quad) selfIntersects() bool {
	return segmentsCross(q[0], q[1], q[2], q[3]) ||
		segmentsCross(q[1], q[2], q[3], q[0])
}

// segmentsCross reports whether the open segments ab and cd properly
// intersect. Touching at endpoints does not count.
func segmentsCross(a, b, c, d Point) bool {
	d1 := d.Sub(c).Cross(a.Sub(c))
	d2 := d.Sub(c).Cross(b.Sub(c))
	d3 := b.Sub(a).Cross(c.Sub(a))
	d4 := b.Sub(a).Cross(d.Sub(a))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// Contains reports whether the point lies inside the quad, using the
// standard ray-casting (even-odd) test. Points exactly on the top or
// left edges count as inside so that adjacent quads tile without gaps.
func (q Quad) Contains(p Point) bool {
	inside := false
	j := 3
	for i := range 4 {
		pi, pj := q[i], q[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xCross := pi.X + (p.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X)
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
