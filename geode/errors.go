package geode

import "errors"

// Errors
var (
	ErrUnmarshal       = errors.New("unmarshal failed")
	ErrBadCatalogParam = errors.New("bad catalog param")
	ErrDegreeTooLow    = errors.New("polynomial must be at least of degree 1")
	ErrZeroLinearCoef  = errors.New("coefficient for x^1 cannot be zero for geometric form conversion")
	ErrNonConvergent   = errors.New("series did not converge to a usable root")
	ErrBadPolyExpr     = errors.New("bad polynomial expression")
	ErrBadTypeVec      = errors.New("bad subdigon type vector")
	ErrCatalogReadOnly = errors.New("catalog is read-only")
)
