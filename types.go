package lenient

// Strategies disables individual loose-parser strategies. The zero value
// runs the full cascade.
type Strategies struct {
	NoStrict    bool
	NoMarkdown  bool
	NoMultiScan bool
	NoFixing    bool
	NoAsString  bool // never offer the raw text as a String candidate
}

// Default limits applied when a ParseOpt field is zero.
const (
	DefaultMaxDepth       = 64
	DefaultMaxNesting     = 256
	DefaultMaxParseDepth  = 8
	DefaultMaxEvaluations = 100_000
	DefaultMaxInputBytes  = 16 << 20
)

// ParseOpt bundles parse and coercion options. When several are passed the
// last one wins.
type ParseOpt struct {
	// Env is exposed read-only to coercion through Context.Env.
	Env map[string]string
	// AllowPartial treats missing required fields and failed list tails as
	// recoverable, for truncated streaming responses.
	AllowPartial bool
	// Lenient substitutes zero values for unparseable primitives.
	Lenient bool

	MaxDepth       int   // coercion recursion bound
	MaxNesting     int   // JSON container nesting in the strict pass
	MaxParseDepth  int   // loose-parser strategy recursion bound
	MaxEvaluations int64 // total coerce steps across all candidates and union options
	MaxInputBytes  int   // longest text ParseAndCoerce accepts

	// Parallelism > 1 evaluates parse candidates concurrently.
	Parallelism int
	Strategies  Strategies
	// Logger receives diagnostics; nil discards them.
	Logger Logger
}

// DefaultParseOpt returns the options used when none are passed.
func DefaultParseOpt() ParseOpt { return ParseOpt{}.withDefaults() }

func (o ParseOpt) withDefaults() ParseOpt {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNesting <= 0 {
		o.MaxNesting = DefaultMaxNesting
	}
	if o.MaxParseDepth <= 0 {
		o.MaxParseDepth = DefaultMaxParseDepth
	}
	if o.MaxEvaluations <= 0 {
		o.MaxEvaluations = DefaultMaxEvaluations
	}
	if o.MaxInputBytes <= 0 {
		o.MaxInputBytes = DefaultMaxInputBytes
	}
	if o.Parallelism <= 0 {
		o.Parallelism = 1
	}
	if o.Logger == nil {
		o.Logger = NopLogger{}
	}
	return o
}

func pickOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt.withDefaults()
}
