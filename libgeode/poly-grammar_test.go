package libgeode

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/geode-systems/go-geode/geode"
)

func TestParsePolyExpr(t *testing.T) {
	cases := []struct {
		expr string
		want []float64
	}{
		{"x^3 - 6*x^2 + 11*x - 6", []float64{-6, 11, -6, 1}},
		{"x^3 - 6x^2 + 11x - 6", []float64{-6, 11, -6, 1}},
		{"x^2 - 4", []float64{-4, 0, 1}},
		{"-x + 1", []float64{1, -1}},
		{"4", []float64{4}},
		{"2.5*x^2 + x", []float64{0, 1, 2.5}},
		{"X^2 + X", []float64{0, 1, 1}},
		{"x + x", []float64{0, 2}},
		{"x^2 + 3 - 1", []float64{2, 0, 1}},
	}

	for _, tc := range cases {
		got, err := ParsePolyExpr(tc.expr)
		if err != nil {
			t.Fatalf("%q: %v", tc.expr, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.expr, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q: got %v, want %v", tc.expr, got, tc.want)
			}
		}
	}
}

func TestParsePolyExprRejectsJunk(t *testing.T) {
	for _, expr := range []string{
		"",
		"y^2",
		"x^",
		"+ + x",
		"2 **",
	} {
		if _, err := ParsePolyExpr(expr); !errors.Is(err, geode.ErrBadPolyExpr) {
			t.Fatalf("%q: got %v", expr, err)
		}
	}
}

func TestParsePolyExprFeedsSolver(t *testing.T) {
	coeffs, err := ParsePolyExpr("x^2 - 3x + 2")
	if err != nil {
		t.Fatal(err)
	}

	solver := NewSolver(len(coeffs)-1, geode.DefaultMaxTerms)
	estimate, err := solver.SolvePolynomial(coeffs)
	if err != nil {
		t.Fatal(err)
	}

	root := solver.BootstrapRoot(coeffs, estimate, 20, geode.DefaultEpsilon)
	if EvalPolynomial(coeffs, root) > 1e-10 || EvalPolynomial(coeffs, root) < -1e-10 {
		t.Fatalf("root %v", root)
	}
}
