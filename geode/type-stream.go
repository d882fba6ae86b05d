package geode

import (
	"fmt"
	"io"
	"strings"
)

// TypeStream is a pull-based pipeline of SubdigonTypes.
// Each stage consumes its upstream Outlet and feeds a new downstream stream.
type TypeStream struct {
	Outlet chan SubdigonType
}

func NewTypeStream() *TypeStream {
	stream := &TypeStream{
		Outlet: make(chan SubdigonType),
	}
	return stream
}

// StreamType wraps a single type as a one-shot stream.
func StreamType(st SubdigonType) *TypeStream {
	next := NewTypeStream()

	go func() {
		next.Outlet <- st.MakeCopy()
		next.Close()
	}()

	return next
}

func (stream *TypeStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *TypeStream) PushType(st SubdigonType) {
	stream.Outlet <- st.MakeCopy()
}

func (stream *TypeStream) PullType() SubdigonType {
	st := <-stream.Outlet
	return st
}

// PullAll drains this stream, returning the number of types pulled.
func (stream *TypeStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Print writes each type that passes through to out, passing the type downstream.
func (stream *TypeStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *TypeStream {

	next := &TypeStream{
		Outlet: make(chan SubdigonType, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(128)

		count := 0
		for st := range stream.Outlet {
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
				buf.WriteByte(',')
			}

			count++
			fmt.Fprintf(&buf, "%06d,", count)
			st.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- st
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddTo offers each type to target, passing only newly added types downstream.
func (stream *TypeStream) AddTo(target TypeAdder) *TypeStream {
	next := &TypeStream{
		Outlet: make(chan SubdigonType, 1),
	}

	go func() {
		for st := range stream.Outlet {
			wasAdded := target.TryAddType(st)
			if wasAdded {
				next.Outlet <- st
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromStream passes through only the types matching sel.
func (stream *TypeStream) SelectFromStream(sel CatalogSelector) *TypeStream {
	next := &TypeStream{
		Outlet: make(chan SubdigonType, 1),
	}

	go func() {
		for st := range stream.Outlet {
			if sel.SelectsType(st) {
				next.Outlet <- st
			}
		}
		next.Close()
	}()

	return next
}
