package geode

import (
	"io"
	"math/big"
)

const (

	// MaxPolygonSize is the max possible number of distinct polygon sizes a SubdigonType can track
	// (index 0 counts digons, so the largest polygon has MaxPolygonSize+1 sides).
	MaxPolygonSize = 63

	// DefaultMaxTerms is the series truncation used when a caller doesn't say otherwise.
	// Each increment enumerates one more total-face layer of subdigon types.
	DefaultMaxTerms = 20

	// DefaultEpsilon is the Newton refinement tolerance used by Solver.NewtonRoot().
	DefaultEpsilon = 1e-15
)

// Tracer receives structured debug events from a Solver.
//
// A nil Tracer disables tracing.  Tracing never affects computed values:
// a run with a nil Tracer and a run with any Tracer produce identical numerics.
type Tracer interface {

	// OnStage marks entry into a named solver stage (e.g. "geometric-form", "series").
	OnStage(stage, detail string)

	// OnSeriesTerm reports one accumulated term of the Hyper-Catalan series.
	OnSeriesTerm(st SubdigonType, number *big.Rat, term float64)

	// OnFallback reports a defined-fallback substitution (e.g. zero series sum).
	OnFallback(reason string)
}

// TypeAdder accepts SubdigonTypes, typically deduping them.
type TypeAdder interface {

	// Tries to add the given subdigon type to this set.
	// If true is returned, st did not exist and was added.
	TryAddType(st SubdigonType) bool
}

// OnCatalogHit is a callback channel used to return catalog entries meeting a set of selection criteria.
type OnCatalogHit chan<- CatalogEntry

// CatalogEntry is one (type, Hyper-Catalan number) pair stored in a Catalog.
type CatalogEntry struct {
	Type   SubdigonType
	Number *big.Rat
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a geode Catalog
type CatalogOpts struct {
	DbPathName     string // omit for in-memory db
	ReadOnly       bool   // open in read-only mode
	MaxPolygonSize int32  // largest type vector length this catalog accepts
}

// Catalog wraps a database of computed Hyper-Catalan numbers keyed by subdigon type.
type Catalog interface {

	// Tries to add the given (type, number) pair to this catalog.
	// If true is returned, st did not exist and was added.
	TryAddNumber(st SubdigonType, number *big.Rat) bool

	// LookupNumber returns the stored Hyper-Catalan number for st, if present.
	LookupNumber(st SubdigonType) (*big.Rat, bool)

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// MaxPolygonSize returns the largest type vector length this catalog accepts.
	MaxPolygonSize() int32

	// NumTypes returns the number of cataloged types for a given total face count.
	// An out of bounds face count returns 0.
	NumTypes(forFaceCount int32) int64

	// Select fires the given callback with each CatalogEntry that meets the selection criteria.
	Select(sel CatalogSelector, onHit OnCatalogHit)

	// ImportFrom merges every entry of src into this catalog, returning the number newly added.
	ImportFrom(src Catalog) int64

	Close() error
}

// CatalogSelector is an operator that either selects a given catalog entry or not.
type CatalogSelector struct {
	MinFaces int32 // lower face-count bound (inclusive)
	MaxFaces int32 // upper face-count bound (inclusive)
}

// DefaultCatalogSelector selects every entry in a catalog.
var DefaultCatalogSelector = CatalogSelector{
	MinFaces: 0,
	MaxFaces: 1<<31 - 1,
}

// SelectsType is a convenience function used to see if a type is selected according to a CatalogSelector.
func (sel *CatalogSelector) SelectsType(st SubdigonType) bool {
	faces := st.Faces()
	return faces >= sel.MinFaces && faces <= sel.MaxFaces
}

// PrintOpts specifies what is printed when printing a subdigon type
type PrintOpts struct {
	Label   string // Prefix label
	Counts  bool   // If set, prints the type vector
	Derived bool   // If set, prints faces / edges / vertices
}

// DefaultPrintOpts prints the type vector with its derived quantities.
var DefaultPrintOpts = PrintOpts{
	Counts:  true,
	Derived: true,
}

// TypeWriter is anything a SubdigonType can describe itself to.
type TypeWriter interface {
	io.Writer
	io.ByteWriter
}
