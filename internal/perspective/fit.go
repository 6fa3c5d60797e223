package perspective

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"linkage-tracer/pkg/geometry"
)

// FitCircle fits a circle to three or more points by least squares on the
// algebraic form x²+y² = 2ax + 2by + c, solved with a QR factorization.
// ok is false for degenerate input (too few or collinear points).
func FitCircle(points []geometry.Point2D) (center geometry.Point2D, radius float64, ok bool) {
	if len(points) < 3 {
		return geometry.Point2D{}, 0, false
	}

	n := len(points)
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range points {
		a.Set(i, 0, 2*p.X)
		a.Set(i, 1, 2*p.Y)
		a.Set(i, 2, 1)
		b.SetVec(i, p.X*p.X+p.Y*p.Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return geometry.Point2D{}, 0, false
	}

	cx, cy, c := x.AtVec(0), x.AtVec(1), x.AtVec(2)
	r2 := c + cx*cx + cy*cy
	if r2 <= 0 || math.IsNaN(r2) || math.IsInf(r2, 0) {
		return geometry.Point2D{}, 0, false
	}
	return geometry.Point2D{X: cx, Y: cy}, math.Sqrt(r2), true
}

// Homography is a 3x3 planar projective transform.
type Homography [3][3]float64

// Apply maps a point through the homography.
func (h Homography) Apply(p geometry.Point2D) geometry.Point2D {
	w := h[2][0]*p.X + h[2][1]*p.Y + h[2][2]
	if w == 0 {
		return geometry.Point2D{}
	}
	return geometry.Point2D{
		X: (h[0][0]*p.X + h[0][1]*p.Y + h[0][2]) / w,
		Y: (h[1][0]*p.X + h[1][1]*p.Y + h[1][2]) / w,
	}
}

// SolveHomography computes the homography mapping the four source points to
// the four destination points by direct linear transform: eight equations
// in the eight unknowns of H with h33 fixed at 1. ok is false when the
// correspondences are degenerate.
func SolveHomography(src, dst [4]geometry.Point2D) (Homography, bool) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		s, d := src[i], dst[i]
		r := 2 * i
		a.SetRow(r, []float64{s.X, s.Y, 1, 0, 0, 0, -s.X * d.X, -s.Y * d.X})
		b.SetVec(r, d.X)
		a.SetRow(r+1, []float64{0, 0, 0, s.X, s.Y, 1, -s.X * d.Y, -s.Y * d.Y})
		b.SetVec(r+1, d.Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return Homography{}, false
	}

	h := Homography{
		{x.AtVec(0), x.AtVec(1), x.AtVec(2)},
		{x.AtVec(3), x.AtVec(4), x.AtVec(5)},
		{x.AtVec(6), x.AtVec(7), 1},
	}
	return h, true
}
