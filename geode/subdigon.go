package geode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// SubdigonType records how many polygons of each size appear in a subdivided polygon ("subdigon").
// st[0] is the count of digons (2-gons), st[1] trigons, st[2] tetragons, and so on.
//
// A SubdigonType is never mutated after construction; equality and hashing are structural.
type SubdigonType []int32

// TypeSpecBuf is scratch space big enough to hold any TypeSpec.
type TypeSpecBuf [MaxPolygonSize * binary.MaxVarintLen32]byte

// TypeSpec is a canonical binary encoding of a SubdigonType.
// Each polygon count is appended as a varint; equal type vectors always produce identical specs,
// so a TypeSpec doubles as a cache / db key.
type TypeSpec []byte

// NewSubdigonType returns a SubdigonType holding a copy of the given polygon counts.
func NewSubdigonType(counts []int32) SubdigonType {
	st := make(SubdigonType, len(counts))
	copy(st, counts)
	return st
}

// Faces returns the total number of polygon faces in the subdigon.
func (st SubdigonType) Faces() int32 {
	faces := int32(0)
	for _, mi := range st {
		faces += mi
	}
	return faces
}

// Edges returns the number of edges in the subdigon: (2·m₀ + 3·m₁ + 4·m₂ + ...) / 2.
//
// The division truncates.  Well-formed subdigons never produce an odd sum, but a
// caller-built vector that does is still legal and simply truncates.
func (st SubdigonType) Edges() int32 {
	sum := int32(0)
	for i, mi := range st {
		sum += (int32(i) + 2) * mi
	}
	return sum / 2
}

// Vertices returns the number of vertices in the subdigon via Euler's formula.
func (st SubdigonType) Vertices() int32 {
	return st.Edges() - st.Faces() + 2
}

// IsEqual returns if two types have identical polygon counts.
func (st SubdigonType) IsEqual(target SubdigonType) bool {
	if len(st) != len(target) {
		return false
	}
	for i, mi := range st {
		if mi != target[i] {
			return false
		}
	}
	return true
}

// IsZero returns true if all counts of this type are 0.
func (st SubdigonType) IsZero() bool {
	for _, mi := range st {
		if mi != 0 {
			return false
		}
	}
	return true
}

// MakeCopy returns a new copy of this type.
func (st SubdigonType) MakeCopy() SubdigonType {
	return append(SubdigonType{}, st...)
}

// AppendTypeSpecTo appends a canonical binary encoding of st to out, returning it as a TypeSpec.
func (st SubdigonType) AppendTypeSpecTo(out []byte) TypeSpec {
	var scrap [binary.MaxVarintLen32]byte

	for _, mi := range st {
		n := binary.PutVarint(scrap[:], int64(mi))
		out = append(out, scrap[:n]...)
	}

	return out
}

// InitFromTypeSpec assigns this type from a binary encoding made from AppendTypeSpecTo()
func (st *SubdigonType) InitFromTypeSpec(spec TypeSpec) error {
	out := (*st)[:0]
	rdr := bytes.NewReader(spec)

	for {
		mi, err := binary.ReadVarint(rdr)
		if err != nil {
			if err == io.EOF || err == io.ErrShortBuffer {
				break
			}
			*st = out
			return ErrUnmarshal
		}
		out = append(out, int32(mi))
	}

	*st = out
	return nil
}

// String renders the type vector as "(m0,m1,...)"
func (st SubdigonType) String() string {
	b := bytes.Buffer{}
	b.Grow(4 * len(st))
	b.WriteByte('(')
	for i, mi := range st {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", mi)
	}
	b.WriteByte(')')
	return b.String()
}

// WriteAsString appends a readable description of st to the given writer.
func (st SubdigonType) WriteAsString(out TypeWriter, opts PrintOpts) {
	if len(opts.Label) > 0 {
		io.WriteString(out, opts.Label)
		out.WriteByte(' ')
	}
	if opts.Counts {
		io.WriteString(out, st.String())
	}
	if opts.Derived {
		fmt.Fprintf(out, "  F=%d, E=%d, V=%d", st.Faces(), st.Edges(), st.Vertices())
	}
}
