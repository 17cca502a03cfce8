package bptree

// Options configures tree behavior.
type Options struct {
	logger   Logger
	debug    bool
	maxNodes int // Hard cap on live nodes. 0 means no limit.
}

// DefaultOptions returns safe default configuration.
//
//goland:noinspection GoUnusedExportedFunction
func DefaultOptions() Options {
	return Options{
		logger:   DiscardLogger{},
		debug:    false,
		maxNodes: 0,
	}
}

// Option configures tree options using the functional options pattern.
type Option func(*Options)

// WithLogger sets the sink for tree log output. The default discards
// everything.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.logger = l
	}
}

// WithDebug turns on per-operation debug logging: node splits, borrows,
// merges, and root transitions, tagged with the tree id. Pair it with
// WithLogger, otherwise the output goes to the discard sink.
//
//goland:noinspection GoUnusedExportedFunction
func WithDebug() Option {
	return func(opts *Options) {
		opts.debug = true
	}
}

// WithMaxNodes caps the number of live nodes the tree may hold. An insert
// that would have to allocate past the cap fails with ErrAllocationFailed
// and leaves the tree unchanged. Zero means unlimited.
//
//goland:noinspection GoUnusedExportedFunction
func WithMaxNodes(n int) Option {
	return func(opts *Options) {
		opts.maxNodes = n
	}
}
