package libgeode

import (
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/geode-systems/go-geode/geode"
)

// PolyExpr is the parse tree for a polynomial expression such as
//
//	x^3 - 6x^2 + 11x - 6
//
// Terms after the first carry an explicit + or - operator.
type PolyExpr struct {
	First *Term     `parser:"@@"`
	Rest  []*OpTerm `parser:"@@*"`
}

type Term struct {
	Neg  bool     `parser:"@\"-\"?"`
	Body TermBody `parser:"@@"`
}

type OpTerm struct {
	Op   string   `parser:"@(\"+\" | \"-\")"`
	Body TermBody `parser:"@@"`
}

type TermBody struct {
	Coef *string  `parser:"( (@Float | @Int) \"*\"?"`
	Var  *VarPart `parser:"  @@?"`
	Var2 *VarPart `parser:"| @@ )"`
}

type VarPart struct {
	Name  string `parser:"@(\"x\" | \"X\")"`
	Power *int   `parser:"(\"^\" @Int)?"`
}

type polyBuilder struct {
	terms []polyTerm
}

type polyTerm struct {
	coef  float64
	power int
}

func (pb *polyBuilder) applyTerm(neg bool, body *TermBody) error {
	coef := 1.0
	if body.Coef != nil {
		parsed, err := strconv.ParseFloat(*body.Coef, 64)
		if err != nil {
			return errors.Wrapf(geode.ErrBadPolyExpr, "bad coefficient %q", *body.Coef)
		}
		coef = parsed
	}
	if neg {
		coef = -coef
	}

	vp := body.Var
	if vp == nil {
		vp = body.Var2
	}

	power := 0
	if vp != nil {
		power = 1
		if vp.Power != nil {
			power = *vp.Power
		}
		if power < 0 {
			return errors.Wrapf(geode.ErrBadPolyExpr, "negative power %d", power)
		}
	}

	pb.terms = append(pb.terms, polyTerm{coef: coef, power: power})
	return nil
}

var parsePolyExpr = participle.MustBuild[PolyExpr]()

// ParsePolyExpr parses a polynomial expression into its coefficient vector,
// constant term first.  Repeated terms at the same power accumulate.
func ParsePolyExpr(polyExpr string) ([]float64, error) {
	expr, err := parsePolyExpr.ParseString("", polyExpr)
	if err != nil {
		return nil, errors.Wrap(geode.ErrBadPolyExpr, err.Error())
	}

	var pb polyBuilder

	if err = pb.applyTerm(expr.First.Neg, &expr.First.Body); err != nil {
		return nil, err
	}
	for _, opTerm := range expr.Rest {
		if err = pb.applyTerm(opTerm.Op == "-", &opTerm.Body); err != nil {
			return nil, err
		}
	}

	degree := 0
	for _, term := range pb.terms {
		if term.power > degree {
			degree = term.power
		}
	}

	coefficients := make([]float64, degree+1)
	for _, term := range pb.terms {
		coefficients[term.power] += term.coef
	}
	return coefficients, nil
}
