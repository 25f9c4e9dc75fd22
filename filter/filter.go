// Package filter defines the stream engine's filter plug-in contract
// (spec.md §4.1 "Filter contract"): a two-operation handle the engine
// invokes over contiguous byte windows as they cross a buffer boundary.
//
// A Filter is not re-entrant; the engine guarantees serial invocation per
// stream (spec.md §5 "Per-stream single-threaded").
package filter

// Filter is a plug-in transform applied to byte windows as they cross the
// buffer boundary — a checksum tap, or a compression rewrite.
type Filter interface {
	// Offset returns the last position this filter consumed from the
	// stream. The stream engine does not read it: every PubFilter call
	// carries its own windowStart.
	Offset() int64

	// PubFilter processes the window [windowStart, windowStart+len(data))
	// of the stream's buffer, possibly mutating it in place (a rewriting
	// filter) or only observing it (a checksum tap). Returns the number
	// of bytes the filter actually consumed, which may differ from
	// len(data) for a filter that buffers partial windows internally.
	PubFilter(data []byte, windowStart int64) (consumed int, err error)
}

// Rewriting is implemented by filters that mutate the byte stream in place
// (e.g. compression). The stream engine consults this to reject installing
// a rewriting filter over a memory-mapped, read-only buffer (spec.md §9
// Open Question (b)).
type Rewriting interface {
	Filter
	Rewrites() bool
}

// Chain is an ordered list of installed filters, invoked in insertion order
// on every buffer-boundary crossing (spec.md §4.1 "Filter contract": "the
// engine walks the filter list in insertion order").
type Chain struct {
	filters []Filter
}

// Add installs f at the end of the chain, pointed at the current stream
// position (the caller is responsible for seeding f's internal offset).
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Remove uninstalls f, flushing it with the pending tail window first
// (spec.md §4.1: "on removal it is flushed with the pending tail window").
// The flush is one final f.PubFilter(data, windowStart) call with the
// window the caller passes (possibly empty) before f is dropped from the
// chain.
func (c *Chain) Remove(f Filter, data []byte, windowStart int64) error {
	if _, err := f.PubFilter(data, windowStart); err != nil {
		return err
	}

	for i, cur := range c.filters {
		if cur == f {
			c.filters = append(c.filters[:i], c.filters[i+1:]...)
			return nil
		}
	}

	return nil
}

// Walk invokes PubFilter on every installed filter, in insertion order,
// over the window [windowStart, windowStart+len(data)).
func (c *Chain) Walk(data []byte, windowStart int64) error {
	for _, f := range c.filters {
		if _, err := f.PubFilter(data, windowStart); err != nil {
			return err
		}
	}

	return nil
}

// HasRewriting reports whether any installed filter mutates bytes in place.
func (c *Chain) HasRewriting() bool {
	for _, f := range c.filters {
		if r, ok := f.(Rewriting); ok && r.Rewrites() {
			return true
		}
	}

	return false
}

// Len returns the number of installed filters.
func (c *Chain) Len() int {
	return len(c.filters)
}
