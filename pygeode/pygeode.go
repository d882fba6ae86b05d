package pygeode

// Copyright 2018 The go-python Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

import (
	"io"
	"os"
	"strings"

	"github.com/go-python/gpython/py"

	"github.com/geode-systems/go-geode/geode"
	"github.com/geode-systems/go-geode/libgeode"
	"github.com/geode-systems/go-geode/libgeode/catalog"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pySolverType     = py.NewType("Solver", "Hyper-Catalan polynomial solver")
	pyTypeStreamType = py.NewType("TypeStream", "geode.TypeStream")
	pyCatalogType    = py.NewType("Catalog", "geode.Catalog")
	pyWorkspaceType  = py.NewType("Workspace", "collects active session resources and catalogs")
)

type pySolver struct {
	*libgeode.Solver
}

func (s pySolver) Type() *py.Type {
	return pySolverType
}

type pyTypeStream struct {
	*geode.TypeStream
}

func (stream pyTypeStream) Type() *py.Type {
	return pyTypeStreamType
}

func wrapTypeStream(stream *geode.TypeStream) pyTypeStream {
	return pyTypeStream{stream}
}

type pyCatalog struct {
	geode.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

// loadPolyCoeffs accepts a polynomial as an expression string or a numeric sequence
// (constant term first) and returns its coefficient vector.
func loadPolyCoeffs(obj py.Object) ([]float64, error) {
	switch v := obj.(type) {
	case py.String:
		coeffs, err := libgeode.ParsePolyExpr(string(v))
		if err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		return coeffs, nil
	case py.Tuple:
		return floatsFromSeq([]py.Object(v))
	case *py.List:
		return floatsFromSeq(v.Items)
	}
	return nil, py.ExceptionNewf(py.TypeError, "expected str, tuple or list (got %v)", obj.Type().Name)
}

func floatsFromSeq(items []py.Object) ([]float64, error) {
	out := make([]float64, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case py.Int:
			out[i] = float64(n)
		case py.Float:
			out[i] = float64(n)
		default:
			return nil, py.ExceptionNewf(py.TypeError, "expected number at index %d (got %v)", i, item.Type().Name)
		}
	}
	return out, nil
}

func loadTypeVec(obj py.Object) (geode.SubdigonType, error) {
	var items []py.Object
	switch v := obj.(type) {
	case py.Tuple:
		items = []py.Object(v)
	case *py.List:
		items = v.Items
	default:
		return nil, py.ExceptionNewf(py.TypeError, "expected tuple or list (got %v)", obj.Type().Name)
	}

	st := make(geode.SubdigonType, len(items))
	for i, item := range items {
		n, ok := item.(py.Int)
		if !ok {
			return nil, py.ExceptionNewf(py.TypeError, "expected int at index %d", i)
		}
		st[i] = int32(n)
	}
	return st, nil
}

// Arg 1 (int): max_degree
// Arg 2 (int): max_terms
func py_NewSolver(module py.Object, args py.Tuple) (py.Object, error) {
	var maxDegree, maxTerms py.Object
	err := py.ParseTuple(args, "ii", &maxDegree, &maxTerms)
	if err != nil {
		return nil, err
	}
	s := libgeode.NewSolver(int(maxDegree.(py.Int)), int(maxTerms.(py.Int)))
	return py.Object(pySolver{s}), nil
}

func py_ParsePoly(module py.Object, args py.Tuple) (py.Object, error) {
	var polyExpr string
	err := py.LoadTuple(args, []interface{}{&polyExpr})
	if err != nil {
		return nil, err
	}
	coeffs, err := libgeode.ParsePolyExpr(polyExpr)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}

	out := make(py.Tuple, len(coeffs))
	for i, ci := range coeffs {
		out[i] = py.Float(ci)
	}
	return py.Object(out), nil
}

func py_EvalPoly(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) < 2 {
		return nil, py.ExceptionNewf(py.TypeError, "eval_poly expects (coefficients, x)")
	}
	coeffs, err := loadPolyCoeffs(args[0])
	if err != nil {
		return nil, err
	}
	var x float64
	if err = py.LoadTuple(args[1:], []interface{}{&x}); err != nil {
		return nil, err
	}
	return py.Object(py.Float(libgeode.EvalPolynomial(coeffs, x))), nil
}

// Arg 1 (int): total_faces
// Arg 2 (int): max_polygon_size
func py_EnumTypes(module py.Object, args py.Tuple) (py.Object, error) {
	var totalFaces, maxSize py.Object
	err := py.ParseTuple(args, "ii", &totalFaces, &maxSize)
	if err != nil {
		return nil, err
	}
	stream := libgeode.StreamTypes(int(totalFaces.(py.Int)), int(maxSize.(py.Int)))
	return wrapTypeStream(stream), nil
}

func py_Solver_SolvePolynomial(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySolver)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "solve_polynomial expects a polynomial")
	}
	coeffs, err := loadPolyCoeffs(args[0])
	if err != nil {
		return nil, err
	}
	root, err := s.SolvePolynomial(coeffs)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(py.Float(root)), nil
}

func py_Solver_BootstrapRoot(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySolver)
	if len(args) < 4 {
		return nil, py.ExceptionNewf(py.TypeError, "bootstrap_root expects (polynomial, guess, iterations, epsilon)")
	}
	coeffs, err := loadPolyCoeffs(args[0])
	if err != nil {
		return nil, err
	}
	var guess, epsilon float64
	var iterations int
	if err = py.LoadTuple(args[1:], []interface{}{&guess, &iterations, &epsilon}); err != nil {
		return nil, err
	}
	return py.Object(py.Float(s.BootstrapRoot(coeffs, guess, iterations, epsilon))), nil
}

func py_Solver_NewtonRoot(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySolver)
	if len(args) < 3 {
		return nil, py.ExceptionNewf(py.TypeError, "newton_root expects (polynomial, guess, iterations)")
	}
	coeffs, err := loadPolyCoeffs(args[0])
	if err != nil {
		return nil, err
	}
	var guess float64
	var iterations int
	if err = py.LoadTuple(args[1:], []interface{}{&guess, &iterations}); err != nil {
		return nil, err
	}
	return py.Object(py.Float(s.NewtonRoot(coeffs, guess, iterations))), nil
}

// Arg 1 (tuple): subdigon type vector
func py_Solver_HyperCatalan(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySolver)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "hyper_catalan expects a type vector")
	}
	st, err := loadTypeVec(args[0])
	if err != nil {
		return nil, err
	}
	number := s.Calculator().Calculate(st)
	return py.Object(py.String(number.RatString())), nil
}

func py_Solver_AttachCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySolver)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "attach_catalog expects a Catalog")
	}
	cat, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	s.Calculator().AttachCatalog(cat.Catalog)
	return py.None, nil
}

func py_TypeStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(pyTypeStream)
	return py.Object(py.Int(stream.PullAll())), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func py_TypeStream_Print(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(pyTypeStream)
	opts := geode.DefaultPrintOpts
	if len(args) > 0 {
		if label, ok := args[0].(py.String); ok {
			opts.Label = string(label)
		}
	}
	next := stream.Print(nopWriteCloser{os.Stdout}, opts)
	return wrapTypeStream(next), nil
}

func py_TypeStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(pyTypeStream)
	set := libgeode.NewTypeSet()
	deduped := stream.AddTo(set)

	// Close the dedupe set once the upstream drains
	next := geode.NewTypeStream()
	go func() {
		for st := range deduped.Outlet {
			next.Outlet <- st
		}
		set.Close()
		next.Close()
	}()

	return wrapTypeStream(next), nil
}

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx geode.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: geode.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags, maxPolygonSize int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags, &maxPolygonSize})
	if err != nil {
		return nil, err
	}

	opts := geode.CatalogOpts{
		ReadOnly:       (flags & READ_ONLY) != 0,
		DbPathName:     pathname,
		MaxPolygonSize: maxPolygonSize,
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	return pyCatalog{cat}, nil
}

func py_Catalog_NumTypes(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var forFaceCount int32
	err := py.LoadTuple(args, []interface{}{&forFaceCount})
	if err != nil {
		return nil, err
	}
	return py.Object(py.Int(cat.NumTypes(forFaceCount))), nil
}

func py_Catalog_Lookup(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "lookup expects a type vector")
	}
	st, err := loadTypeVec(args[0])
	if err != nil {
		return nil, err
	}
	number, found := cat.LookupNumber(st)
	if !found {
		return py.None, nil
	}
	return py.Object(py.String(number.RatString())), nil
}

func py_Catalog_Dump(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	b := strings.Builder{}
	b.Grow(256)

	onHit := make(chan geode.CatalogEntry)
	go func() {
		cat.Select(geode.DefaultCatalogSelector, onHit)
		close(onHit)
	}()

	count := 0
	for entry := range onHit {
		count++
		b.WriteString("C_")
		b.WriteString(entry.Type.String())
		b.WriteString(" = ")
		b.WriteString(entry.Number.RatString())
		b.WriteByte('\n')
	}
	os.Stdout.WriteString(b.String())

	return py.Object(py.Int(count)), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	cat.Catalog.Close()
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Solver
	{
		pySolverType.Dict["solve_polynomial"] = py.MustNewMethod("solve_polynomial", py_Solver_SolvePolynomial, 0, "approximates a root via the Hyper-Catalan series")
		pySolverType.Dict["bootstrap_root"] = py.MustNewMethod("bootstrap_root", py_Solver_BootstrapRoot, 0, "refines a root estimate with Newton iteration")
		pySolverType.Dict["newton_root"] = py.MustNewMethod("newton_root", py_Solver_NewtonRoot, 0, "")
		pySolverType.Dict["hyper_catalan"] = py.MustNewMethod("hyper_catalan", py_Solver_HyperCatalan, 0, "returns the Hyper-Catalan number of a type vector as a rational string")
		pySolverType.Dict["attach_catalog"] = py.MustNewMethod("attach_catalog", py_Solver_AttachCatalog, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["num_types"] = py.MustNewMethod("num_types", py_Catalog_NumTypes, 0, "")
		pyCatalogType.Dict["lookup"] = py.MustNewMethod("lookup", py_Catalog_Lookup, 0, "")
		pyCatalogType.Dict["dump"] = py.MustNewMethod("dump", py_Catalog_Dump, 0, "")
		pyCatalogType.Dict["close"] = py.MustNewMethod("close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["open_catalog"] = py.MustNewMethod("open_catalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["catalog_exists"] = py.MustNewMethod("catalog_exists", py_Workspace_CatalogExists, 0, "")
	}

	/////////////////////////////////
	// TypeStream
	{
		pyTypeStreamType.Dict["go"] = py.MustNewMethod("go", py_TypeStream_Go, 0, "counts the number of types output from the TypeStream")
		pyTypeStreamType.Dict["print"] = py.MustNewMethod("print", py_TypeStream_Print, 0, "prints each type from the TypeStream")
		pyTypeStreamType.Dict["drop_dupes"] = py.MustNewMethod("drop_dupes", py_TypeStream_DropDupes, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Solver", py_NewSolver, 0, ""),
			py.MustNewMethod("ParsePoly", py_ParsePoly, 0, ""),
			py.MustNewMethod("EvalPoly", py_EvalPoly, 0, ""),
			py.MustNewMethod("EnumTypes", py_EnumTypes, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PY_VERSION":  py.String("v3.4.0"),
			"MAX_POLYGON": py.Int(geode.MaxPolygonSize),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pygeode",
				Doc:  "Hyper-Catalan polynomial solver gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})

	}
}
