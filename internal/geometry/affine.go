package geometry

import (
	"math"

	"golang.org/x/image/math/f64"
)

// pivotEpsilon replaces a zero pivot during elimination so degenerate inputs
// still produce a finite (if meaningless) matrix.
const pivotEpsilon = 1e-12

// Affine is a 2D affine map in canvas order:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity map.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Translation returns a pure translation.
func Translation(tx, ty float64) Affine {
	return Affine{A: 1, D: 1, E: tx, F: ty}
}

// Scaling returns a scale about the origin.
func Scaling(sx, sy float64) Affine {
	return Affine{A: sx, D: sy}
}

// ScalingAbout returns a uniform scale by s that keeps p fixed.
func ScalingAbout(p Point2D, s float64) Affine {
	return Translation(p.X, p.Y).Multiply(Scaling(s, s)).Multiply(Translation(-p.X, -p.Y))
}

// Apply maps p through m.
func (m Affine) Apply(p Point2D) Point2D {
	return Point2D{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Multiply returns m·n, the map that applies n first and then m. This matches
// appending n to a canvas whose current transform is m.
func (m Affine) Multiply(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Translate returns m·T(tx, ty).
func (m Affine) Translate(tx, ty float64) Affine {
	return m.Multiply(Translation(tx, ty))
}

// Scale returns m·S(sx, sy).
func (m Affine) Scale(sx, sy float64) Affine {
	return m.Multiply(Scaling(sx, sy))
}

// Det returns the determinant of the linear part.
func (m Affine) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse map. The bool is false when m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.Det()
	if det == 0 || !isFinite(det) {
		return Affine{}, false
	}
	return Affine{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Aff3 converts m to the row-major matrix used by golang.org/x/image/draw.
func (m Affine) Aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

// Finite reports whether every coefficient is finite.
func (m Affine) Finite() bool {
	for _, v := range [...]float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// SolveAffine returns the affine map taking each src[i] to dst[i]. For
// non-collinear src triangles the result is exact up to floating point. Collinear
// or coincident inputs do not fail; they yield a finite but meaningless map.
func SolveAffine(src, dst [3]Point2D) Affine {
	// Unknowns are ordered a, c, e, b, d, f so each row reads [x y 1 0 0 0].
	var m [6][7]float64
	for i := range 3 {
		s, d := src[i], dst[i]
		m[2*i] = [7]float64{s.X, s.Y, 1, 0, 0, 0, d.X}
		m[2*i+1] = [7]float64{0, 0, 0, s.X, s.Y, 1, d.Y}
	}
	u := gaussJordan(m)
	return Affine{A: u[0], C: u[1], E: u[2], B: u[3], D: u[4], F: u[5]}
}

func gaussJordan(m [6][7]float64) [6]float64 {
	const n = 6
	for i := range n {
		maxRow := i
		for k := i + 1; k < n; k++ {
			if math.Abs(m[k][i]) > math.Abs(m[maxRow][i]) {
				maxRow = k
			}
		}
		m[i], m[maxRow] = m[maxRow], m[i]

		pivot := m[i][i]
		if pivot == 0 || math.IsNaN(pivot) {
			pivot = pivotEpsilon
		}
		for j := i; j <= n; j++ {
			m[i][j] /= pivot
		}
		for k := range n {
			if k == i {
				continue
			}
			factor := m[k][i]
			if factor == 0 {
				continue
			}
			for j := i; j <= n; j++ {
				m[k][j] -= factor * m[i][j]
			}
		}
	}

	var out [6]float64
	for i := range n {
		out[i] = m[i][n]
	}
	return out
}
