// Package sfc builds Safe Flight Corridors: per-segment axis-aligned boxes that keep an agent's
// control points clear of static geometry, pruned against a distance map (§4.5).
package sfc

import (
	"github.com/pkg/errors"

	"go.viam.com/trajplan/distancemap"
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/trajectory"
)

// ErrConstraintGeneration is returned when a segment's SFC could not be built.
var ErrConstraintGeneration = errors.New("SFC construction failed")

// Box is an axis-aligned box assigned to a segment (§3); all control points of that segment must
// lie inside it.
type Box struct {
	SegmentIndex int
	Min, Max     geometry.Vector
}

// Contains reports whether p lies within the box.
func (b Box) Contains(p geometry.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Params configures the expansion step size and safety radius used while inflating each box.
type Params struct {
	SelfRadius float64
	StepSize   float64 // discrete expansion step per face, §4.5
	MaxSteps   int
}

// Build constructs one Box per segment of warmStart, expanding each face outward until the next
// step would include a voxel whose distance-map value is below the agent's radius, then shrinks
// adjacent boxes until each pair shares a non-empty intersection containing their shared control
// point (§4.5).
func Build(warmStart *trajectory.Trajectory, dmap distancemap.DistanceMap, params Params) ([]Box, error) {
	if params.StepSize <= 0 {
		return nil, ErrConstraintGeneration
	}
	boxes := make([]Box, warmStart.SegmentCount())
	for k, seg := range warmStart.Segments {
		boxes[k] = inflate(seg, dmap, params)
	}
	reconcileAdjacent(boxes, warmStart)
	return boxes, nil
}

// inflate starts from the axis-aligned bounding box of seg's control points and expands each of
// the six faces independently in discrete steps, stopping a face's growth as soon as the next
// step would cross a voxel whose distance-map value is less than the agent's radius.
func inflate(seg []geometry.Vector, dmap distancemap.DistanceMap, params Params) Box {
	box := boundingBox(seg)
	faces := [6]bool{} // minX,maxX,minY,maxY,minZ,maxZ: true once that face stops growing
	for step := 0; step < params.MaxSteps; step++ {
		grew := false
		if !faces[0] {
			candidate := box.Min.X - params.StepSize
			if safeToExpandX(dmap, candidate, box, params.SelfRadius) {
				box.Min.X = candidate
				grew = true
			} else {
				faces[0] = true
			}
		}
		if !faces[1] {
			candidate := box.Max.X + params.StepSize
			if safeToExpandX(dmap, candidate, box, params.SelfRadius) {
				box.Max.X = candidate
				grew = true
			} else {
				faces[1] = true
			}
		}
		if !faces[2] {
			candidate := box.Min.Y - params.StepSize
			if safeToExpandY(dmap, candidate, box, params.SelfRadius) {
				box.Min.Y = candidate
				grew = true
			} else {
				faces[2] = true
			}
		}
		if !faces[3] {
			candidate := box.Max.Y + params.StepSize
			if safeToExpandY(dmap, candidate, box, params.SelfRadius) {
				box.Max.Y = candidate
				grew = true
			} else {
				faces[3] = true
			}
		}
		if !faces[4] {
			candidate := box.Min.Z - params.StepSize
			if safeToExpandZ(dmap, candidate, box, params.SelfRadius) {
				box.Min.Z = candidate
				grew = true
			} else {
				faces[4] = true
			}
		}
		if !faces[5] {
			candidate := box.Max.Z + params.StepSize
			if safeToExpandZ(dmap, candidate, box, params.SelfRadius) {
				box.Max.Z = candidate
				grew = true
			} else {
				faces[5] = true
			}
		}
		if !grew {
			break
		}
	}
	return box
}

func boundingBox(pts []geometry.Vector) Box {
	box := Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		box.Min.X, box.Max.X = min(box.Min.X, p.X), max(box.Max.X, p.X)
		box.Min.Y, box.Max.Y = min(box.Min.Y, p.Y), max(box.Max.Y, p.Y)
		box.Min.Z, box.Max.Z = min(box.Min.Z, p.Z), max(box.Max.Z, p.Z)
	}
	return box
}

// safeToExpandX (and its Y, Z siblings) samples the new face's plane at the box's current
// cross-section and requires every sample to clear the agent's radius in the distance map.
func safeToExpandX(dmap distancemap.DistanceMap, x float64, box Box, radius float64) bool {
	for _, y := range []float64{box.Min.Y, box.Max.Y} {
		for _, z := range []float64{box.Min.Z, box.Max.Z} {
			if dmap.Query(geometry.Vector{X: x, Y: y, Z: z}) < radius {
				return false
			}
		}
	}
	return true
}

func safeToExpandY(dmap distancemap.DistanceMap, y float64, box Box, radius float64) bool {
	for _, x := range []float64{box.Min.X, box.Max.X} {
		for _, z := range []float64{box.Min.Z, box.Max.Z} {
			if dmap.Query(geometry.Vector{X: x, Y: y, Z: z}) < radius {
				return false
			}
		}
	}
	return true
}

func safeToExpandZ(dmap distancemap.DistanceMap, z float64, box Box, radius float64) bool {
	for _, x := range []float64{box.Min.X, box.Max.X} {
		for _, y := range []float64{box.Min.Y, box.Max.Y} {
			if dmap.Query(geometry.Vector{X: x, Y: y, Z: z}) < radius {
				return false
			}
		}
	}
	return true
}

// reconcileAdjacent checks each pair of neighboring boxes for a non-empty intersection containing
// the shared control point at the segment boundary (§4.5). When a pair fails the check, both boxes
// of the pair are replaced by a thin box around the shared point; it does not choose one of the
// two boxes to shrink.
func reconcileAdjacent(boxes []Box, warmStart *trajectory.Trajectory) {
	for k := 0; k < len(boxes)-1; k++ {
		_, shared := warmStart.SegmentEndpoints(k)
		a, b := &boxes[k], &boxes[k+1]
		if intersects(*a, *b) && a.Contains(shared) && b.Contains(shared) {
			continue
		}
		// Shrink both boxes to the smallest box that still contains the shared point, which is
		// always feasible since both boxes individually contain it by construction (the warm
		// start's own control points are inside their originating bounding box).
		shrinkAround(a, shared)
		shrinkAround(b, shared)
	}
}

func intersects(a, b Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// shrinkAround replaces box with the smallest box that still contains p, a thin margin around the
// point itself rather than anything derived from box's prior extent — a genuine shrink, since the
// prior min/max-extending version only ever grew the box and so could silently push a face past
// the distance-map safety margin inflate had already established.
func shrinkAround(box *Box, p geometry.Vector) {
	margin := 1e-6
	box.Min = geometry.Vector{X: p.X - margin, Y: p.Y - margin, Z: p.Z - margin}
	box.Max = geometry.Vector{X: p.X + margin, Y: p.Y + margin, Z: p.Z + margin}
}
