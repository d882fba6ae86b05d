package libgeode

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/geode-systems/go-geode/geode"
)

func TestCalculateKnownValues(t *testing.T) {
	calc := NewCalculator()

	known := []struct {
		counts []int32
		want   string
	}{
		{[]int32{0, 0, 0}, "1"},
		{[]int32{1, 0, 0}, "1"},
		{[]int32{2, 0, 0}, "1"},
		{[]int32{3, 0, 0}, "1"},
		{[]int32{1, 1, 0}, "1"},
		{[]int32{0, 1, 0}, "1/2"},
		{[]int32{0, 2, 0}, "1/2"},
		{[]int32{2, 1, 0}, "3/2"},
		{[]int32{0, 0, 2}, "1/10"},
	}

	for _, kv := range known {
		st := geode.NewSubdigonType(kv.counts)
		got := calc.Calculate(st)
		if got.RatString() != kv.want {
			t.Fatalf("C_%v: got %v, want %v", st, got.RatString(), kv.want)
		}
	}
}

func TestCalculateIsPositive(t *testing.T) {
	calc := NewCalculator()

	for totalFaces := 0; totalFaces <= 6; totalFaces++ {
		for _, st := range EnumTypes(totalFaces, 4) {
			number := calc.Calculate(st)
			if number.Sign() <= 0 {
				t.Fatalf("C_%v = %v is not positive", st, number.RatString())
			}
		}
	}
}

func TestCalculateMemoizes(t *testing.T) {
	calc := NewCalculator()
	st := geode.NewSubdigonType([]int32{2, 1, 0})

	first := calc.Calculate(st)
	lenAfterFirst := calc.CacheLen()
	if lenAfterFirst != 1 {
		t.Fatalf("cache len: got %d", lenAfterFirst)
	}

	// Mutating a returned value must never poison the cache.
	first.Add(first, big.NewRat(1000, 1))

	second := calc.Calculate(st)
	if calc.CacheLen() != lenAfterFirst {
		t.Fatal("repeat calculation grew the cache")
	}
	if second.RatString() != "3/2" {
		t.Fatalf("cache poisoned: got %v", second.RatString())
	}

	// Equal type vectors share one cache entry regardless of how they were built.
	dup := st.MakeCopy()
	calc.Calculate(dup)
	if calc.CacheLen() != lenAfterFirst {
		t.Fatal("equal types must share a cache entry")
	}
}

func TestDumpCache(t *testing.T) {
	calc := NewCalculator()
	calc.Calculate(geode.SubdigonType{1, 0, 0})
	calc.Calculate(geode.SubdigonType{0, 1, 0})

	b := bytes.Buffer{}
	calc.DumpCache(&b)
	out := b.String()
	if !strings.Contains(out, "2 entries") {
		t.Fatalf("DumpCache: %q", out)
	}
	if !strings.Contains(out, "C_(0,1,0) = 1/2") {
		t.Fatalf("DumpCache: %q", out)
	}
}

func BenchmarkCalculate(b *testing.B) {
	calc := NewCalculator()

	types := make([]geode.SubdigonType, 0, 64)
	for totalFaces := 0; totalFaces <= 7; totalFaces++ {
		types = append(types, EnumTypes(totalFaces, 4)...)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, st := range types {
			calc.Calculate(st)
		}
	}
}
