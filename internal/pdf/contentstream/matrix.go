package contentstream

// Matrix is a PDF transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity is the identity transformation
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Multiply returns m followed by n, the order PDF uses for "m cm" against the CTM n.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Apply maps the point (x, y) through m
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
