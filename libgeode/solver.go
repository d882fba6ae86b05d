package libgeode

import (
	"fmt"
	"math"

	"github.com/geode-systems/go-geode/geode"
)

// Solver approximates a real root of a univariate polynomial by summing the
// truncated Hyper-Catalan series, then hands the estimate to Newton refinement.
//
// maxDegree bounds the polygon sizes enumerated (type vectors have length
// maxDegree-1) and maxTerms bounds the series truncation (total face counts
// 0..maxTerms-1).  Both are fixed at construction.
type Solver struct {
	maxDegree int
	maxTerms  int
	calc      *Calculator
	tracer    geode.Tracer
}

// NewSolver returns a Solver with the given degree and truncation bounds and a fresh Calculator.
func NewSolver(maxDegree, maxTerms int) *Solver {
	return &Solver{
		maxDegree: maxDegree,
		maxTerms:  maxTerms,
		calc:      NewCalculator(),
	}
}

// NewSolverWithTracer returns a Solver that reports debug events to the given sink.
func NewSolverWithTracer(maxDegree, maxTerms int, tracer geode.Tracer) *Solver {
	s := NewSolver(maxDegree, maxTerms)
	s.tracer = tracer
	return s
}

// Calculator exposes the solver's owned Calculator (e.g. to attach a catalog).
func (s *Solver) Calculator() *Calculator {
	return s.calc
}

// EnumTypes produces every subdigon type vector of length maxPolygonSize whose
// counts sum to exactly totalFaces, in deterministic lexicographic-ascending order.
//
// The walk is iterative (an odometer over the first maxPolygonSize-1 counts with
// the final count taking the remainder), so large bounds never deepen the stack.
// Each invocation is independent and yields identical output.
func EnumTypes(totalFaces, maxPolygonSize int) []geode.SubdigonType {
	var results []geode.SubdigonType

	if maxPolygonSize <= 0 {
		if totalFaces == 0 {
			results = append(results, geode.SubdigonType{})
		}
		return results
	}

	current := make([]int32, maxPolygonSize)
	last := maxPolygonSize - 1

	for {
		// The leading counts are set; the final count takes whatever remains.
		assigned := int32(0)
		for i := 0; i < last; i++ {
			assigned += current[i]
		}
		current[last] = int32(totalFaces) - assigned
		results = append(results, geode.NewSubdigonType(current))

		// Advance the odometer over the leading counts, rightmost first.
		i := last - 1
		for i >= 0 {
			prefix := int32(0)
			for j := 0; j <= i; j++ {
				prefix += current[j]
			}
			if prefix < int32(totalFaces) {
				current[i]++
				break
			}
			current[i] = 0
			i--
		}
		if i < 0 {
			return results
		}
		for j := i + 1; j < last; j++ {
			current[j] = 0
		}
	}
}

// StreamTypes exposes EnumTypes as a TypeStream pipeline.
func StreamTypes(totalFaces, maxPolygonSize int) *geode.TypeStream {
	next := geode.NewTypeStream()

	go func() {
		for _, st := range EnumTypes(totalFaces, maxPolygonSize) {
			next.Outlet <- st
		}
		next.Close()
	}()

	return next
}

// solveGeometricForm sums the truncated Hyper-Catalan series for a polynomial in
// geometric form 1 - a + t₂a² + t₃a³ + ... = 0, returning the series root a.
//
// tCoefs is indexed by power: tCoefs[i] holds tᵢ for i >= 2 (lower entries are ignored).
func (s *Solver) solveGeometricForm(tCoefs []float64) float64 {
	if s.tracer != nil {
		s.tracer.OnStage("series", fmt.Sprintf("maxDegree=%d maxTerms=%d", s.maxDegree, s.maxTerms))
	}

	result := 0.0

	for totalFaces := 0; totalFaces < s.maxTerms; totalFaces++ {
		for _, st := range EnumTypes(totalFaces, s.maxDegree-1) {
			number := s.calc.Calculate(st)
			numberFloat, _ := number.Float64()

			// Weight: t₂^m₀ · t₃^m₁ · t₄^m₂ · ...
			weight := 1.0
			for i, mi := range st {
				if mi > 0 && i+2 < len(tCoefs) {
					weight *= math.Pow(tCoefs[i+2], float64(mi))
				}
			}

			term := numberFloat * weight
			result += term

			if s.tracer != nil {
				s.tracer.OnSeriesTerm(st, number, term)
			}
		}
	}

	return result
}

// SolvePolynomial approximates a root of c₀ + c₁x + c₂x² + ... = 0 via the Hyper-Catalan series.
//
// The polynomial is first normalized to geometric form (tᵢ = cᵢ/c₁ for i >= 2), the
// truncated series is summed for the geometric root a, and the result is mapped back
// as x = -c₀ / (c₁·a).  The caller typically follows up with BootstrapRoot.
//
// Returns geode.ErrDegreeTooLow for fewer than 2 coefficients and
// geode.ErrZeroLinearCoef when c₁ = 0 (the normalization is undefined).
func (s *Solver) SolvePolynomial(coefficients []float64) (float64, error) {
	if len(coefficients) < 2 {
		return 0, geode.ErrDegreeTooLow
	}
	if coefficients[1] == 0 {
		return 0, geode.ErrZeroLinearCoef
	}

	// Geometric form: 1 - a + t₂a² + t₃a³ + ... = 0
	tCoefs := make([]float64, len(coefficients))
	tCoefs[0] = 1
	tCoefs[1] = -1
	for i := 2; i < len(coefficients); i++ {
		tCoefs[i] = coefficients[i] / coefficients[1]
	}

	if s.tracer != nil {
		s.tracer.OnStage("geometric-form", fmt.Sprintf("t=%v", tCoefs[2:]))
	}

	a := s.solveGeometricForm(tCoefs)

	if a == 0 {
		// The inverse mapping divides by a; substitute a defined fallback
		// rather than propagate the division by zero.
		if s.tracer != nil {
			s.tracer.OnFallback("zero series sum, returning fallback root 1.0")
		}
		return 1.0, nil
	}

	root := -coefficients[0] / (coefficients[1] * a)

	if s.tracer != nil {
		s.tracer.OnStage("root-mapping", fmt.Sprintf("a=%v x=%v P(x)=%v", a, root, EvalPolynomial(coefficients, root)))
	}

	return root, nil
}

// BootstrapRoot refines an initial root estimate with Newton-Raphson iteration on
// the original polynomial, for up to iterations steps.
//
// Each step stops early when, in priority order: the derivative magnitude falls
// below epsilon (cannot safely divide); the pre-update function value was already
// below epsilon; or the step size fell below epsilon.  BootstrapRoot never fails --
// it returns its best current estimate.
func (s *Solver) BootstrapRoot(coefficients []float64, initialGuess float64, iterations int, epsilon float64) float64 {
	x := initialGuess

	for i := 0; i < iterations; i++ {
		fx := EvalPolynomial(coefficients, x)
		dfx := EvalDerivative(coefficients, x)

		if math.Abs(dfx) < epsilon {
			if s.tracer != nil {
				s.tracer.OnStage("newton", fmt.Sprintf("iter %d: derivative near zero, stopping", i))
			}
			break
		}

		delta := fx / dfx
		x -= delta

		if s.tracer != nil {
			s.tracer.OnStage("newton", fmt.Sprintf("iter %d: f(x)=%v f'(x)=%v delta=%v x=%v", i, fx, dfx, delta, x))
		}

		if math.Abs(fx) < epsilon {
			break
		}
		if math.Abs(delta) < epsilon {
			break
		}
	}

	return x
}

// NewtonRoot is BootstrapRoot with the default epsilon, usable standalone
// when the series stage is skipped entirely.
func (s *Solver) NewtonRoot(coefficients []float64, initialGuess float64, iterations int) float64 {
	return s.BootstrapRoot(coefficients, initialGuess, iterations, geode.DefaultEpsilon)
}

// EvalPolynomial evaluates c₀ + c₁x + c₂x² + ... at x (Horner's rule).
func EvalPolynomial(coefficients []float64, x float64) float64 {
	result := 0.0
	for i := len(coefficients) - 1; i >= 0; i-- {
		result = result*x + coefficients[i]
	}
	return result
}

// EvalDerivative evaluates the first derivative c₁ + 2c₂x + 3c₃x² + ... at x.
func EvalDerivative(coefficients []float64, x float64) float64 {
	result := 0.0
	for i := len(coefficients) - 1; i >= 1; i-- {
		result = result*x + float64(i)*coefficients[i]
	}
	return result
}
