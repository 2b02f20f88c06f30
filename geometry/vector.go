package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector is the three-dimensional real vector used throughout the core, aliasing
// github.com/golang/geo/r3.Vector so callers can use its constants (r3.Vector{}) directly. In 2D
// mode the z component is clamped to the configured plane height by ClampPlane.
type Vector = r3.Vector

func add(a, b Vector) Vector { return Vector{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }

func sub(a, b Vector) Vector { return Vector{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }

func scale(a Vector, s float64) Vector { return Vector{X: a.X * s, Y: a.Y * s, Z: a.Z * s} }

// Add, Sub, and Scale are the exported forms of the internal vector arithmetic helpers, for use
// by packages that need plain vector algebra without depending on r3.Vector's own method set.
func Add(a, b Vector) Vector     { return add(a, b) }
func Sub(a, b Vector) Vector     { return sub(a, b) }
func Scale(a Vector, s float64) Vector { return scale(a, s) }
func Dot(a, b Vector) float64   { return dot(a, b) }
func Cross(a, b Vector) Vector  { return cross(a, b) }
func Norm(a Vector) float64     { return norm(a) }

func dot(a, b Vector) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross(a, b Vector) Vector {
	return Vector{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func norm2(a Vector) float64 { return dot(a, a) }

func norm(a Vector) float64 { return math.Sqrt(norm2(a)) }

// Normalize returns a unit vector in the direction of v, or the zero vector if v is degenerate.
func Normalize(v Vector) Vector {
	n := norm(v)
	if n < 1e-12 {
		return Vector{}
	}
	return scale(v, 1/n)
}

// Lerp linearly interpolates between a and b at parameter t in [0,1].
func Lerp(a, b Vector, t float64) Vector {
	return add(a, scale(sub(b, a), t))
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vector) float64 {
	return norm(sub(a, b))
}

// ClampPlane clamps v's z coordinate to planeZ, used in 2D mode (world_dimension=2) where every
// position, velocity, and acceleration is confined to a horizontal plane at a configured height.
func ClampPlane(v Vector, planeZ float64) Vector {
	return Vector{X: v.X, Y: v.Y, Z: planeZ}
}

// Ellipsoidal returns v with its z component scaled by 1/downwash, turning inter-agent downwash
// scaling into a plain Euclidean metric on the transformed vector (§4.4 step 2).
func Ellipsoidal(v Vector, downwash float64) Vector {
	if downwash <= 0 {
		downwash = 1
	}
	return Vector{X: v.X, Y: v.Y, Z: v.Z / downwash}
}
