package format

// BlockPolicy decides between `{ }` and `do ... end`.
type BlockPolicy struct {
	// MaxInlineWidth is the widest flat body a brace block may carry.
	MaxInlineWidth int
	// MaxInlineStatements is the number of statements a brace block may
	// carry on one line.
	MaxInlineStatements int
}

// ChainPolicy decides when a method chain may be split one call per line.
type ChainPolicy struct {
	// MinCalls counts the receiver and every call after it.
	MinCalls int
}

type Options struct {
	MaxWidth    int
	IndentWidth int
	Block       BlockPolicy
	Chain       ChainPolicy
	// Verify reparses the output and compares meaning trees.
	Verify bool
}

// DefaultOptions is what an empty config resolves to.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = 100
	}
	if o.IndentWidth <= 0 {
		o.IndentWidth = 2
	}
	if o.Block.MaxInlineWidth <= 0 {
		o.Block.MaxInlineWidth = 60
	}
	if o.Block.MaxInlineStatements <= 0 {
		o.Block.MaxInlineStatements = 1
	}
	if o.Chain.MinCalls <= 0 {
		o.Chain.MinCalls = 3
	}
	return o
}
