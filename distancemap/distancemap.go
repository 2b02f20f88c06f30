// Package distancemap declares the interface this core requires of the external occupancy-grid /
// distance-transform service (§1, §6): the core consumes queries only, and never mutates the
// map or octree it is handed.
package distancemap

import (
	"math"

	"go.viam.com/trajplan/geometry"
)

// DistanceMap gives the Euclidean distance to the nearest static obstacle at a point. It is
// read-only from the core's perspective for the duration of a tick; the external service owns
// swap-in atomicity across ticks (§5 Shared resources).
type DistanceMap interface {
	// Query returns the distance-map value at p. A negative return means p is inside an
	// obstacle, with magnitude equal to the penetration depth.
	Query(p geometry.Vector) float64
}

// Static is a simple in-memory DistanceMap over a fixed set of axis-aligned box obstacles,
// sufficient for tests and for the co-simulation harness; production deployments plug in the
// real octree-backed map service behind the same interface.
type Static struct {
	Obstacles []Box
}

// Box is an axis-aligned occupied region.
type Box struct {
	Min, Max geometry.Vector
}

// Query returns the minimum distance from p to the surface of any occupied box, or the (negative)
// penetration depth if p is inside one.
func (s Static) Query(p geometry.Vector) float64 {
	if len(s.Obstacles) == 0 {
		return 1e9
	}
	best := math.Inf(1)
	for _, box := range s.Obstacles {
		if d := distanceToBox(p, box); d < best {
			best = d
		}
	}
	return best
}

func distanceToBox(p geometry.Vector, box Box) float64 {
	outsideX := math.Max(box.Min.X-p.X, p.X-box.Max.X)
	outsideY := math.Max(box.Min.Y-p.Y, p.Y-box.Max.Y)
	outsideZ := math.Max(box.Min.Z-p.Z, p.Z-box.Max.Z)

	if outsideX > 0 || outsideY > 0 || outsideZ > 0 {
		sumSq := 0.0
		for _, d := range []float64{outsideX, outsideY, outsideZ} {
			if d > 0 {
				sumSq += d * d
			}
		}
		return math.Sqrt(sumSq)
	}
	// Fully inside on every axis: penetration depth is how far p is from the nearest face,
	// reported as a negative distance.
	return math.Max(outsideX, math.Max(outsideY, outsideZ))
}
