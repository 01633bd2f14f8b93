package engine

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// fix is the renderer's fixed-point scalar (12 fractional bits).
type fix = fixed.Int52_12

const fixBits = 12

func int2fix(v int) fix       { return fix(v << fixBits) }
func float2fix(v float64) fix { return fix(math.Round(v * (1 << fixBits))) }
func fix2int(v fix) int       { return v.Floor() }

// Matrix3 is a row-major 2D affine transform applied to column vectors
// (x, y, 1).
type Matrix3 [3][3]float64

func Identity() Matrix3 { return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }

func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return r
}

func Translate(x, y float64) Matrix3 { return Matrix3{{1, 0, x}, {0, 1, y}, {0, 0, 1}} }
func Scale(x, y float64) Matrix3     { return Matrix3{{x, 0, 0}, {0, y, 0}, {0, 0, 1}} }

// Rotate turns by angle degrees.
func Rotate(angle float64) Matrix3 {
	s, c := math.Sincos(angle * math.Pi / 180)
	return Matrix3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// Apply transforms the point (x, y).
func (m Matrix3) Apply(x, y float64) (float64, float64) {
	return m[0][0]*x + m[0][1]*y + m[0][2], m[1][0]*x + m[1][1]*y + m[1][2]
}
