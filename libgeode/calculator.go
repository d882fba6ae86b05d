package libgeode

import (
	"fmt"
	"io"
	"math/big"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"github.com/geode-systems/go-geode/geode"
)

// Calculator computes Hyper-Catalan numbers, memoizing each result by subdigon type.
//
// The memo cache is exclusively owned by its Calculator and is not safe for
// uncoordinated concurrent mutation.  Concurrent callers each own their own
// Calculator (or serialize access externally).
type Calculator struct {
	cache   map[string]*big.Rat // TypeSpec -> exact Hyper-Catalan number
	catalog geode.Catalog       // optional second-level store
}

// NewCalculator returns a Calculator with an empty cache.
func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[string]*big.Rat),
	}
}

// AttachCatalog wires a persistent catalog behind the in-memory cache.
// Lookups go cache-first, catalog-second, compute-last; newly computed
// numbers are offered to the catalog unless it is read-only.
func (calc *Calculator) AttachCatalog(cat geode.Catalog) {
	calc.catalog = cat
}

// factorial computes n! by exact integer multiplication (1 for n <= 1).
func factorial(n int32) *big.Int {
	result := big.NewInt(1)
	if n <= 1 {
		return result
	}
	for i := int64(2); i <= int64(n); i++ {
		result.Mul(result, big.NewInt(i))
	}
	return result
}

// Calculate returns the Hyper-Catalan number for the given subdigon type as an exact rational.
//
// For a type with counts m and derived edge count e and vertex count v, the number is
//
//	C_m = e! / (v! · Π mᵢ!)
//
// Two calls on equal types return equal values and the second call never recomputes.
func (calc *Calculator) Calculate(st geode.SubdigonType) *big.Rat {
	var specBuf geode.TypeSpecBuf
	key := string(st.AppendTypeSpecTo(specBuf[:0]))

	if cached, found := calc.cache[key]; found {
		return new(big.Rat).Set(cached)
	}

	if calc.catalog != nil {
		if number, found := calc.catalog.LookupNumber(st); found {
			calc.cache[key] = number
			return new(big.Rat).Set(number)
		}
	}

	// Edge count: (2·m₀ + 3·m₁ + 4·m₂ + ...) / 2 -- each edge is counted twice
	e := int32(0)
	for i, mi := range st {
		e += (int32(i) + 2) * mi
	}
	e /= 2

	// Vertex count: 1 + 0·m₀ + 1·m₁ + 2·m₂ + ...
	v := int32(1)
	for i, mi := range st {
		v += int32(i) * mi
	}

	numerator := factorial(e)
	denominator := factorial(v)
	for _, mi := range st {
		if mi > 0 {
			denominator.Mul(denominator, factorial(mi))
		}
	}

	result := new(big.Rat).SetFrac(numerator, denominator)
	calc.cache[key] = result

	if calc.catalog != nil && !calc.catalog.IsReadOnly() {
		calc.catalog.TryAddNumber(st, result)
	}

	return new(big.Rat).Set(result)
}

// CacheLen returns the number of memoized types.
func (calc *Calculator) CacheLen() int {
	return len(calc.cache)
}

// DumpCache writes every cached (type, number) pair to out in canonical TypeSpec order.
func (calc *Calculator) DumpCache(out io.Writer) {
	ordered := redblacktree.NewWith(utils.StringComparator)
	for key, number := range calc.cache {
		ordered.Put(key, number)
	}

	fmt.Fprintf(out, "Cache contains %d entries:\n", ordered.Size())

	itr := ordered.Iterator()
	for itr.Next() {
		var st geode.SubdigonType
		if err := st.InitFromTypeSpec(geode.TypeSpec(itr.Key().(string))); err != nil {
			continue
		}
		fmt.Fprintf(out, "C_%v = %v\n", st, itr.Value().(*big.Rat).RatString())
	}
}
