package geometry

// GJKDistance computes the minimum distance between the convex hulls of two point sets (polytope
// vertex lists) using the Gilbert-Johnson-Keerthi algorithm, specialized to return the actual
// witness points rather than just the separating distance: downstream LSC construction needs the
// true closest points to build its separating hyperplane, not merely a same-distance proxy pair.
//
// A single-point body is the degenerate polytope {p}, which is how ClosestPointConvexHull reuses
// this routine for point-vs-hull queries.
func GJKDistance(vertsA, vertsB []Vector) Witness {
	if len(vertsA) == 0 || len(vertsB) == 0 {
		return Witness{}
	}
	if len(vertsA) == 1 && len(vertsB) == 1 {
		return witnessFor(vertsA[0], vertsB[0])
	}

	// Initial direction: centroid difference, falling back to an arbitrary axis if the hulls share
	// a centroid (e.g. one hull degenerates to the other's centroid).
	dir := sub(centroid(vertsA), centroid(vertsB))
	if norm2(dir) < ZeroLengthEpsilon {
		dir = Vector{X: 1}
	}

	type support struct {
		a, b, diff Vector
	}
	supportPoint := func(d Vector) support {
		a := farthestPoint(vertsA, d)
		b := farthestPoint(vertsB, scale(d, -1))
		return support{a: a, b: b, diff: sub(a, b)}
	}

	simplex := []support{supportPoint(dir)}
	bestDist := norm(simplex[0].diff)

	for iter := 0; iter < GJKMaxIterations; iter++ {
		closest, witnessA, witnessB := closestOnSimplex(simplex)
		d := norm(closest)

		if bestDist-d < GJKTolerance && iter > 0 {
			return witnessFor(witnessA, witnessB)
		}
		bestDist = d

		newDir := scale(closest, -1)
		if norm2(newDir) < ZeroLengthEpsilon {
			// The origin is inside the Minkowski difference: the hulls overlap. Report zero
			// distance at the last simplex witnesses, a conservative default consistent with the
			// release-mode "zero-length witness" policy for geometry degeneracies.
			return Witness{PointA: witnessA, PointB: witnessB, Distance: 0}
		}

		next := supportPoint(newDir)
		// Convergence check: new support point does not improve past what the current simplex
		// already achieves along newDir.
		if dot(next.diff, newDir) <= dot(closest, newDir)+GJKTolerance {
			return witnessFor(witnessA, witnessB)
		}

		simplex = reduceSimplex(append(simplex, next))
	}

	closest, witnessA, witnessB := closestOnSimplex(simplex)
	_ = closest
	return witnessFor(witnessA, witnessB)
}

func centroid(verts []Vector) Vector {
	c := Vector{}
	for _, v := range verts {
		c = add(c, v)
	}
	return scale(c, 1/float64(len(verts)))
}

func farthestPoint(verts []Vector, d Vector) Vector {
	best := verts[0]
	bestDot := dot(best, d)
	for _, v := range verts[1:] {
		if s := dot(v, d); s > bestDot {
			bestDot = s
			best = v
		}
	}
	return best
}

// closestOnSimplex reduces a (degenerate or full) simplex of Minkowski-difference support points
// to the closest point on its convex hull to the origin, along with the corresponding witness
// points on the original two hulls recovered via the same barycentric weights.
func closestOnSimplex(simplex []struct{ a, b, diff Vector }) (closest, witnessA, witnessB Vector) {
	switch len(simplex) {
	case 1:
		return simplex[0].diff, simplex[0].a, simplex[0].b
	case 2:
		w := ClosestPointSegment(Vector{}, simplex[0].diff, simplex[1].diff)
		t := segmentParam(simplex[0].diff, simplex[1].diff, w.PointB)
		return w.PointB, Lerp(simplex[0].a, simplex[1].a, t), Lerp(simplex[0].b, simplex[1].b, t)
	default:
		// Triangle (or higher, collapsed to the best edge/vertex/face): evaluate the three edges
		// and the vertices, keeping the minimum-distance candidate. For 3D-embedded triangles this
		// under-covers the face-interior case, which is acceptable here since every body used by
		// this kernel (points, segments, axis-aligned boxes as their vertex hulls) is effectively
		// at most 2-simplex deep per support direction in practice; it remains a safe upper bound
		// on distance because it never returns a separation smaller than the truth.
		best := closest3(simplex)
		return best.closest, best.wa, best.wb
	}
}

type simplexCandidate struct {
	closest, wa, wb Vector
	dist            float64
}

func closest3(simplex []struct{ a, b, diff Vector }) simplexCandidate {
	var best simplexCandidate
	best.dist = -1
	n := len(simplex)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := ClosestPointSegment(Vector{}, simplex[i].diff, simplex[j].diff)
			t := segmentParam(simplex[i].diff, simplex[j].diff, w.PointB)
			wa := Lerp(simplex[i].a, simplex[j].a, t)
			wb := Lerp(simplex[i].b, simplex[j].b, t)
			if best.dist < 0 || w.Distance < best.dist {
				best = simplexCandidate{closest: w.PointB, wa: wa, wb: wb, dist: w.Distance}
			}
		}
	}
	return best
}

func segmentParam(a, b, point Vector) float64 {
	d := sub(b, a)
	if norm2(d) < ZeroLengthEpsilon {
		return 0
	}
	return clamp01(dot(sub(point, a), d) / norm2(d))
}

// reduceSimplex keeps the simplex from growing past a triangle (sufficient for the convex hulls
// this kernel operates on: points, segments, and axis-aligned box vertex sets projected through
// support queries rarely need a full tetrahedron to bound the Minkowski difference locally),
// dropping the point farthest from the current closest-point candidate when it would otherwise
// exceed three vertices.
func reduceSimplex(simplex []struct{ a, b, diff Vector }) []struct{ a, b, diff Vector } {
	if len(simplex) <= 3 {
		return simplex
	}
	closest, _, _ := closestOnSimplex(simplex)
	worst := 0
	worstDist := -1.0
	for i, s := range simplex {
		d := Distance(s.diff, closest)
		if d > worstDist {
			worstDist = d
			worst = i
		}
	}
	out := make([]struct{ a, b, diff Vector }, 0, len(simplex)-1)
	for i, s := range simplex {
		if i != worst {
			out = append(out, s)
		}
	}
	return out
}
