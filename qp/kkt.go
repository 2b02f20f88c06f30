package qp

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrSingularKKT is returned when the equality-constrained KKT system is numerically singular,
// the adapter's trigger for a NUMERICAL_FAIL regularization retry (§4.6).
var ErrSingularKKT = errors.New("KKT system is numerically singular")

// solveEqualityConstrainedQP minimizes x^T H x + g^T x subject to A x = b via the KKT stationarity
// system [2H A^T; A 0][x;lambda] = [-g; b], solved by dense LU factorization. This ignores
// inequality constraints entirely; the caller checks feasibility against them afterward and
// escalates to the nonlinear local solver when they are violated.
func solveEqualityConstrainedQP(hessian *mat.SymDense, linear []float64, eq []Constraint) ([]float64, error) {
	n := hessian.SymmetricDim()
	m := len(eq)
	size := n + m

	kkt := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			kkt.Set(i, j, 2*hessian.At(i, j))
		}
	}
	for r, c := range eq {
		for i, v := range c.Row {
			kkt.Set(n+r, i, v)
			kkt.Set(i, n+r, v)
		}
	}

	rhs := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		val := 0.0
		if linear != nil {
			val = -linear[i]
		}
		rhs.SetVec(i, val)
	}
	for r, c := range eq {
		rhs.SetVec(n+r, c.RHS)
	}

	var lu mat.LU
	lu.Factorize(kkt)
	if cond := lu.Cond(); cond > 1e14 {
		return nil, ErrSingularKKT
	}

	var solution mat.VecDense
	if err := lu.SolveVecTo(&solution, false, rhs); err != nil {
		return nil, errors.Wrap(ErrSingularKKT, err.Error())
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = solution.AtVec(i)
	}
	return x, nil
}
