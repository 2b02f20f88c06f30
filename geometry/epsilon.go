package geometry

// Epsilon values are dimensionless and applied after normalization, per the centralization
// requirement on geometry numerics: a single place to tune the kernel's tolerance for
// near-parallel and near-zero-length degeneracies.
const (
	// ParallelEpsilon bounds the squared sine of the angle between two directions, below which
	// segment-segment closest-point computation takes the parallel branch instead of solving the
	// general 2x2 linear system (whose determinant would be numerically unstable near-colinear).
	ParallelEpsilon = 1e-5

	// ZeroLengthEpsilon is the squared-norm threshold below which a segment or ray direction is
	// treated as degenerate and the corresponding lower-dimensional routine is used instead.
	ZeroLengthEpsilon = 1e-10

	// GJKTolerance is the distance-improvement threshold at which the GJK support-point iteration
	// is considered converged.
	GJKTolerance = 1e-9

	// GJKMaxIterations bounds the support-point iteration so a degenerate polytope cannot spin
	// forever; in practice GJK on the small polytopes used here converges in single digits.
	GJKMaxIterations = 64
)
