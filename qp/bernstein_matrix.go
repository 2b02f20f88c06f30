package qp

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

// derivativeOperator returns the (n-k+1) x (n+1) matrix mapping a degree-n Bernstein control
// point vector to the control points of its k-th derivative (a degree n-k Bernstein polynomial),
// real-time scaled by the segment duration dt. This is the same finite-difference relation
// trajectory.derivativeControlPoints applies iteratively, expressed here as an explicit linear
// map so it can be composed into the QP's Hessian and bound constraints.
func derivativeOperator(n, k int, dt float64) *mat.Dense {
	op := mat.NewDense(n+1, n+1, nil)
	for i := 0; i <= n; i++ {
		op.Set(i, i, 1)
	}
	cur := op
	curN := n
	for d := 0; d < k; d++ {
		next := mat.NewDense(curN, curN+1, nil)
		scale := float64(curN) / dt
		for i := 0; i < curN; i++ {
			next.Set(i, i, -scale)
			next.Set(i, i+1, scale)
		}
		composed := mat.NewDense(curN, n+1, nil)
		composed.Mul(next, cur)
		cur = composed
		curN--
	}
	return cur
}

// gramMatrix returns the (m+1)x(m+1) Gram matrix of the degree-m Bernstein basis over [0,1]:
// G[i][j] = integral_0^1 B_i,m(t) B_j,m(t) dt = C(m,i)*C(m,j) / ((2m+1) * C(2m,i+j)).
func gramMatrix(m int) *mat.Dense {
	g := mat.NewDense(m+1, m+1, nil)
	for i := 0; i <= m; i++ {
		for j := 0; j <= m; j++ {
			num := float64(combin.Binomial(m, i)) * float64(combin.Binomial(m, j))
			den := float64(2*m+1) * float64(combin.Binomial(2*m, i+j))
			g.Set(i, j, num/den)
		}
	}
	return g
}

// segmentHessian returns the (n+1)x(n+1) Hessian, for a single axis and single segment, of the
// weighted jerk+snap objective integrated in real time over the segment (§4.6): a fixed
// positive-(semi)definite quadratic form on control points, expressed exactly in the Bernstein
// basis via the derivative operator and Gram matrix above.
func segmentHessian(n int, dt float64, jerkWeight, snapWeight float64) *mat.Dense {
	h := mat.NewDense(n+1, n+1, nil)
	if jerkWeight > 0 && n >= 3 {
		d3 := derivativeOperator(n, 3, dt)
		g := gramMatrix(n - 3)
		addQuadraticForm(h, d3, g, dt*jerkWeight)
	}
	if snapWeight > 0 && n >= 4 {
		d4 := derivativeOperator(n, 4, dt)
		g := gramMatrix(n - 4)
		addQuadraticForm(h, d4, g, dt*snapWeight)
	}
	return h
}

// addQuadraticForm accumulates weight * D^T * G * D into h.
func addQuadraticForm(h *mat.Dense, d, g *mat.Dense, weight float64) {
	var gd mat.Dense
	gd.Mul(g, d)
	var dtgd mat.Dense
	dtgd.Mul(d.T(), &gd)
	dtgd.Scale(weight, &dtgd)
	h.Add(h, &dtgd)
}
