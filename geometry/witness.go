package geometry

// Witness is the result of any closest-point query: the two witness points (one per input
// primitive, in argument order) and the distance between them. Downstream LSC construction relies
// on PointA/PointB being the actual points of closest approach, not merely any pair of points
// achieving the correct Distance, since the separating direction is normalize(PointA - PointB).
type Witness struct {
	PointA   Vector
	PointB   Vector
	Distance float64
}

// swapped returns the witness with its two points exchanged, used both by the segment-segment
// symmetric cases and to satisfy the geometry round-trip property (§8): closest-point queries
// with arguments swapped return swapped witnesses and an identical distance.
func (w Witness) swapped() Witness {
	return Witness{PointA: w.PointB, PointB: w.PointA, Distance: w.Distance}
}

func witnessFor(a, b Vector) Witness {
	return Witness{PointA: a, PointB: b, Distance: Distance(a, b)}
}
