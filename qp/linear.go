package qp

// warmStartVector flattens p.WarmStart's control points into the decision-vector ordering, or
// returns nil if there is no warm start to anchor to.
func warmStartVector(p *Problem) []float64 {
	if p.WarmStart == nil {
		return nil
	}
	x := make([]float64, p.NumVariables())
	for k := 0; k < p.SegmentCount && k < p.WarmStart.SegmentCount(); k++ {
		pts := p.WarmStart.Segments[k]
		for i := 0; i <= p.Degree && i < len(pts); i++ {
			for axis := 0; axis < p.Dimension; axis++ {
				x[p.varIndex(k, i, axis)] = axisValue(pts[i], axis)
			}
		}
	}
	return x
}

// linearTerm returns the objective's linear coefficient vector g for f(x) = x^T H x + g^T x. Only
// the deviation-from-warm-start penalty contributes a linear term: Deviation*||x-w||^2 expands to
// Deviation*(x^Tx - 2 w^Tx + const), so g = -2*Deviation*w.
func linearTerm(p *Problem) []float64 {
	if p.Weights.Deviation <= 0 {
		return nil
	}
	w := warmStartVector(p)
	if w == nil {
		return nil
	}
	g := make([]float64, len(w))
	for i, v := range w {
		g[i] = -2 * p.Weights.Deviation * v
	}
	return g
}
