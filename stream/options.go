package stream

import "github.com/gwframe/frame/internal/options"

// Option configures a Stream at Open time, built the same way the
// teacher's blob encoder options are built: small functional-option
// wrappers around internal/options.Option[T].
type Option = options.Option[*config]

type config struct {
	libraryName string
	useMMap     bool
}

func defaultConfig() *config {
	return &config{libraryName: "gwframe", useMMap: true}
}

// WithLibraryName overrides the library-name string recorded in the file
// header on write (spec.md §6 "File header").
func WithLibraryName(name string) Option {
	return options.NoError(func(c *config) { c.libraryName = name })
}

// WithMMap controls whether Open prefers a memory-mapped read-only
// backend. Declined automatically for write and read-write streams
// regardless of this setting (spec.md §4.1 "Memory-mapped I/O is a
// hint").
func WithMMap(enabled bool) Option {
	return options.NoError(func(c *config) { c.useMMap = enabled })
}
