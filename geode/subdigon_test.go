package geode_test

import (
	"strings"
	"testing"

	"github.com/geode-systems/go-geode/geode"
)

func TestDerivedQuantities(t *testing.T) {
	// 2 digons + 1 trigon: 3 faces, edges = (2*2 + 3*1)/2 = 3 (truncating), vertices = 3 - 3 + 2 = 2
	st := geode.NewSubdigonType([]int32{2, 1, 0})

	if st.Faces() != 3 {
		t.Fatalf("faces: got %d", st.Faces())
	}
	if st.Edges() != 3 {
		t.Fatalf("edges: got %d", st.Edges())
	}
	if st.Vertices() != 2 {
		t.Fatalf("vertices: got %d", st.Vertices())
	}

	// The all-zeros type is legal: 0 faces, 0 edges, 2 vertices
	zero := geode.NewSubdigonType([]int32{0, 0, 0})
	if zero.Faces() != 0 || zero.Edges() != 0 || zero.Vertices() != 2 {
		t.Fatal("zero type derivations")
	}
	if !zero.IsZero() {
		t.Fatal("IsZero")
	}
}

func TestEulerInvariant(t *testing.T) {
	types := []geode.SubdigonType{
		{},
		{0},
		{1},
		{1, 0, 0},
		{0, 1, 0},
		{2, 1, 0},
		{3, 0, 2},
		{0, 0, 0, 7},
		{5, 4, 3, 2, 1},
	}
	for _, st := range types {
		if st.Vertices() != st.Edges()-st.Faces()+2 {
			t.Fatalf("Euler invariant broken for %v", st)
		}
	}
}

func TestTypeSpecRoundTrip(t *testing.T) {
	types := []geode.SubdigonType{
		{},
		{0},
		{1, 0, 0},
		{0, 127, 128, 300},
		{5, 4, 3, 2, 1, 0, 0, 9},
	}

	var buf geode.TypeSpecBuf
	for _, st := range types {
		spec := st.AppendTypeSpecTo(buf[:0])

		var decoded geode.SubdigonType
		if err := decoded.InitFromTypeSpec(spec); err != nil {
			t.Fatal(err)
		}
		if !decoded.IsEqual(st) {
			t.Fatalf("round trip: %v != %v", decoded, st)
		}
	}
}

func TestTypeSpecIsCanonical(t *testing.T) {
	a := geode.NewSubdigonType([]int32{2, 1, 0})
	b := geode.NewSubdigonType([]int32{2, 1, 0})

	var bufA, bufB geode.TypeSpecBuf
	specA := a.AppendTypeSpecTo(bufA[:0])
	specB := b.AppendTypeSpecTo(bufB[:0])
	if string(specA) != string(specB) {
		t.Fatal("equal types must produce identical specs")
	}

	c := geode.NewSubdigonType([]int32{2, 1, 1})
	specC := c.AppendTypeSpecTo(bufB[:0])
	if string(specA) == string(specC) {
		t.Fatal("distinct types must produce distinct specs")
	}
}

func TestMakeCopyIsIndependent(t *testing.T) {
	src := []int32{1, 2, 3}
	st := geode.NewSubdigonType(src)
	src[0] = 99
	if st[0] != 1 {
		t.Fatal("NewSubdigonType must copy")
	}

	dup := st.MakeCopy()
	dup[0] = 42
	if st[0] != 1 {
		t.Fatal("MakeCopy must copy")
	}
}

func TestWriteAsString(t *testing.T) {
	st := geode.NewSubdigonType([]int32{1, 1, 0})
	if st.String() != "(1,1,0)" {
		t.Fatalf("String: got %q", st.String())
	}

	b := strings.Builder{}
	st.WriteAsString(&b, geode.DefaultPrintOpts)
	out := b.String()
	if !strings.Contains(out, "(1,1,0)") || !strings.Contains(out, "F=2") {
		t.Fatalf("WriteAsString: got %q", out)
	}
}
