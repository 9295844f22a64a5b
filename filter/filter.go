// Package filter implements the ordered, mutable-context transformation
// pipeline of spec.md §4.2 and §9: "a trivially modeled list of objects
// implementing a single-method interface." The built-in ZSTD
// compress/decompress filters live in zstd.go.
package filter

// Context is the Call Context of spec.md §3, carried through the pipeline
// on both directions. Filters mutate it in place.
type Context struct {
	Payload     []byte
	Meta        uint32
	Session     uint16
	Compression uint8 // mirrors header.Compression; kept untyped here to avoid a header<->filter import cycle
}

// Filter transforms a Context, in place or by replacing its fields.
// Filters are not commutative (spec.md §4.2): callers configure the order.
type Filter interface {
	Apply(ctx *Context) error
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(ctx *Context) error

func (f FilterFunc) Apply(ctx *Context) error { return f(ctx) }

// Pipeline is an ordered sequence of filters, applied left-to-right. The
// same type serves both directions; callers configure a separate Pipeline
// per direction (outgoing vs incoming).
type Pipeline []Filter

// Apply runs every filter in order, stopping at the first error.
func (p Pipeline) Apply(ctx *Context) error {
	for _, f := range p {
		if err := f.Apply(ctx); err != nil {
			return err
		}
	}
	return nil
}
