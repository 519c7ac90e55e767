package mockup

import "math"

// Matrix3 represents a 3x3 projective transformation matrix in
// row-major order:
//
//	| M00  M01  M02 |
//	| M10  M11  M12 |
//	| M20  M21  M22 |
//
// Applied to a point (x, y) in homogeneous coordinates:
//
//	x' = (M00*x + M01*y + M02) / w
//	y' = (M10*x + M11*y + M12) / w
//	w  =  M20*x + M21*y + M22
type Matrix3 struct {
	M00, M01, M02 float64
	M10, M11, M12 float64
	M20, M21, M22 float64
}

// Identity3 returns the identity projective matrix.
func Identity3() Matrix3 {
	return Matrix3{
		M00: 1, M11: 1, M22: 1,
	}
}

// Apply transforms a point through the matrix, performing the
// projective divide. Returns the zero point if the homogeneous weight
// vanishes (the point maps to infinity).
func (m Matrix3) Apply(p Point) Point {
	w := m.M20*p.X + m.M21*p.Y + m.M22
	if math.Abs(w) < 1e-12 {
		return Point{}
	}
	return Point{
		X: (m.M00*p.X + m.M01*p.Y + m.M02) / w,
		Y: (m.M10*p.X + m.M11*p.Y + m.M12) / w,
	}
}

// Multiply multiplies two matrices (m * other).
func (m Matrix3) Multiply(o Matrix3) Matrix3 {
	return Matrix3{
		M00: m.M00*o.M00 + m.M01*o.M10 + m.M02*o.M20,
		M01: m.M00*o.M01 + m.M01*o.M11 + m.M02*o.M21,
		M02: m.M00*o.M02 + m.M01*o.M12 + m.M02*o.M22,
		M10: m.M10*o.M00 + m.M11*o.M10 + m.M12*o.M20,
		M11: m.M10*o.M01 + m.M11*o.M11 + m.M12*o.M21,
		M12: m.M10*o.M02 + m.M11*o.M12 + m.M12*o.M22,
		M20: m.M20*o.M00 + m.M21*o.M10 + m.M22*o.M20,
		M21: m.M20*o.M01 + m.M21*o.M11 + m.M22*o.M21,
		M22: m.M20*o.M02 + m.M21*o.M12 + m.M22*o.M22,
	}
}

// Invert returns the inverse matrix computed from the adjugate.
// The second return value is false if the matrix is singular.
func (m Matrix3) Invert() (Matrix3, bool) {
	c00 := m.M11*m.M22 - m.M12*m.M21
	c01 := m.M12*m.M20 - m.M10*m.M22
	c02 := m.M10*m.M21 - m.M11*m.M20

	det := m.M00*c00 + m.M01*c01 + m.M02*c02
	if math.Abs(det) < 1e-12 {
		return Identity3(), false
	}

	invDet := 1.0 / det
	return Matrix3{
		M00: c00 * invDet,
		M01: (m.M02*m.M21 - m.M01*m.M22) * invDet,
		M02: (m.M01*m.M12 - m.M02*m.M11) * invDet,
		M10: c01 * invDet,
		M11: (m.M00*m.M22 - m.M02*m.M20) * invDet,
		M12: (m.M02*m.M10 - m.M00*m.M12) * invDet,
		M20: c02 * invDet,
		M21: (m.M01*m.M20 - m.M00*m.M21) * invDet,
		M22: (m.M00*m.M11 - m.M01*m.M10) * invDet,
	}, true
}

// SolveHomography computes the projective transform mapping the
// corners of the axis-aligned source rectangle (0,0)-(w,h) to the
// corners of dst, in order: (0,0)→dst[0], (w,0)→dst[1], (w,h)→dst[2],
// (0,h)→dst[3].
//
// Four point correspondences determine the homography exactly, so the
// solve is a direct linear transform: 8 linear equations in the 8
// unknown matrix entries (M22 is pinned to 1), solved by Gaussian
// elimination with partial pivoting. No iterative refinement is needed.
func SolveHomography(w, h float64, dst Quad) (Matrix3, error) {
	if w <= 0 || h <= 0 {
		return Identity3(), errSourceSize(w, h)
	}
	if !dst.IsValid() {
		return Identity3(), ErrInvalidQuad
	}

	src := Quad{Pt(0, 0), Pt(w, 0), Pt(w, h), Pt(0, h)}

	// Each correspondence (x,y)→(u,v) yields two rows:
	//   x y 1 0 0 0 -u*x -u*y | u
	//   0 0 0 x y 1 -v*x -v*y | v
	var a [8][9]float64
	for i := range 4 {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	sol, ok := solveLinear8(&a)
	if !ok {
		return Identity3(), ErrInvalidQuad
	}

	return Matrix3{
		M00: sol[0], M01: sol[1], M02: sol[2],
		M10: sol[3], M11: sol[4], M12: sol[5],
		M20: sol[6], M21: sol[7], M22: 1,
	}, nil
}

// solveLinear8 solves the 8x8 system held in the augmented matrix a
// using Gaussian elimination with partial pivoting. Returns false if
// the system is singular (degenerate correspondences).
func solveLinear8(a *[8][9]float64) ([8]float64, bool) {
	var sol [8]float64

	for col := range 8 {
		// Partial pivot: pick the row with the largest magnitude in
		// this column for numerical stability.
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return sol, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1.0 / a[col][col]
		for k := col; k < 9; k++ {
			a[col][k] *= inv
		}
		for row := range 8 {
			if row == col || a[row][col] == 0 {
				continue
			}
			factor := a[row][col]
			for k := col; k < 9; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	for i := range 8 {
		sol[i] = a[i][8]
	}
	return sol, true
}
