package main

import (
	"bufio"
	"fmt"
	"math"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/plan-systems/klog"

	"github.com/geode-systems/go-geode/geode"
	"github.com/geode-systems/go-geode/libgeode"
)

// klogTracer feeds solver debug events into the process log.
type klogTracer struct{}

func (klogTracer) OnStage(stage, detail string) {
	klog.V(2).Infof("[%s] %s", stage, detail)
}

func (klogTracer) OnSeriesTerm(st geode.SubdigonType, number *big.Rat, term float64) {
	if math.Abs(term) > 1e-10 {
		klog.V(2).Infof("C_%v = %v, term = %v", st, number.RatString(), term)
	}
}

func (klogTracer) OnFallback(reason string) {
	klog.Warningf("%s", reason)
}

func runInteractive(trace bool) {
	fmt.Println("Hyper-Catalan Series Polynomial Solver")
	fmt.Println("Based on 'A Hyper-Catalan Series Solution to Polynomial Equations, and the Geode'")
	fmt.Println("------------------------------------------------")

	in := bufio.NewReader(os.Stdin)

	coefficients, err := readPolynomial(in)
	if err != nil {
		klog.Errorf("%v", err)
		return
	}

	var tracer geode.Tracer
	if trace {
		tracer = klogTracer{}
	}
	solver := libgeode.NewSolverWithTracer(len(coefficients)-1, geode.DefaultMaxTerms, tracer)

	seriesRoot, err := solver.SolvePolynomial(coefficients)
	if err != nil {
		klog.Errorf("%v", err)
		return
	}
	fmt.Printf("Root by Hyper-Catalan series: %v\n", seriesRoot)

	guess := promptFloat(in, fmt.Sprintf("Enter initial guess for bootstrap method (default: %v): ", seriesRoot), seriesRoot)
	iterations := promptInt(in, "Enter number of iterations for bootstrap method (default: 10): ", 10)

	refined := solver.BootstrapRoot(coefficients, guess, iterations, geode.DefaultEpsilon)
	fmt.Printf("Root by bootstrap method: %v\n", refined)
	fmt.Printf("Error: %v\n", math.Abs(libgeode.EvalPolynomial(coefficients, refined)))
}

// readPolynomial accepts either a polynomial expression (e.g. "x^2 - 4")
// or a degree followed by coefficients, constant term first.
func readPolynomial(in *bufio.Reader) ([]float64, error) {
	fmt.Print("Enter a polynomial expression, or a degree for coefficient entry: ")
	line := readLine(in)

	if degree, err := strconv.Atoi(line); err == nil {
		fmt.Printf("Enter coefficients from c0 to c%d (constant term first):\n", degree)
		coefficients := make([]float64, 0, degree+1)
		for i := 0; i <= degree; i++ {
			ci := promptFloat(in, fmt.Sprintf("c%d: ", i), 0)
			coefficients = append(coefficients, ci)
		}
		return coefficients, nil
	}

	return libgeode.ParsePolyExpr(line)
}

func readLine(in *bufio.Reader) string {
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptFloat(in *bufio.Reader, prompt string, defaultVal float64) float64 {
	fmt.Print(prompt)
	line := readLine(in)
	if len(line) == 0 {
		return defaultVal
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		klog.Warningf("not a number: %q, using %v", line, defaultVal)
		return defaultVal
	}
	return val
}

func promptInt(in *bufio.Reader, prompt string, defaultVal int) int {
	fmt.Print(prompt)
	line := readLine(in)
	if len(line) == 0 {
		return defaultVal
	}
	val, err := strconv.Atoi(line)
	if err != nil {
		klog.Warningf("not an integer: %q, using %v", line, defaultVal)
		return defaultVal
	}
	return val
}
