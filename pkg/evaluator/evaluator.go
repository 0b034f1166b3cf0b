// Package evaluator prepares and evaluates xan expressions.
//
// An expression is parsed once, then prepared against a header row: column
// references are resolved to offsets and every called function is looked up
// in the registry and checked for arity. The resulting Program is immutable
// and evaluates rows independently, so a single Program can be shared by any
// number of goroutines.
//
// # Example
//
//	ev := evaluator.New()
//	expr, err := ev.Compile("add(a, b)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	program, err := ev.Prepare(expr, []string{"a", "b"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	value, err := program.Run(ctx, []string{"1", "2"})
//
// # Errors
//
// Compile returns a *types.Error, Prepare a *types.PrepareError and
// Program.Run a *types.EvaluationError wrapping either a *types.CastError or
// a *types.ArityError.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/A-Archives-and-Forks/xan/pkg/cache"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
	"github.com/A-Archives-and-Forks/xan/pkg/parser"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Evaluator compiles and prepares expressions.
type Evaluator struct {
	opts      EvalOptions
	logger    *slog.Logger
	cache     *cache.Cache[*types.Expression] // non-nil when Caching is enabled
	customFns map[string]*FunctionDef         // user-registered custom functions
	err       error                           // first invalid custom function
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables expression compilation caching.
	// When true, compiled expressions are cached by source text.
	Caching bool
	// CacheSize sets the maximum number of cached expressions.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to 256.
	CacheSize int
	// Cache is a custom expression cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache[*types.Expression]
	// MaxDepth limits expression nesting.
	MaxDepth int
	// Logger for structured logging.
	Logger *slog.Logger
	// CustomFunctions holds user-defined functions to register with the evaluator.
	CustomFunctions []functions.CustomFunctionDef
}

// New creates a new Evaluator.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:  false,
		MaxDepth: 100,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache[*types.Expression]
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New[*types.Expression](options.CacheSize)
	}

	e := &Evaluator{
		opts:      options,
		logger:    options.Logger,
		cache:     c,
		customFns: make(map[string]*FunctionDef, len(options.CustomFunctions)),
	}

	for _, cfd := range options.CustomFunctions {
		if err := e.register(cfd); err != nil && e.err == nil {
			e.err = err
		}
	}

	return e
}

// register wraps a custom function definition into the registry format.
func (e *Evaluator) register(cfd functions.CustomFunctionDef) error {
	if err := cfd.Validate(); err != nil {
		return err
	}

	if _, ok := GetFunction(cfd.Name); ok {
		return &types.PrepareError{Code: types.ErrDuplicateFunction, Function: cfd.Name, Position: -1}
	}
	if _, ok := e.customFns[cfd.Name]; ok {
		return &types.PrepareError{Code: types.ErrDuplicateFunction, Function: cfd.Name, Position: -1}
	}

	arity := Range(cfd.MinArgs, cfd.MaxArgs)
	switch {
	case cfd.Variadic():
		arity = Min(cfd.MinArgs)
	case cfd.MinArgs == cfd.MaxArgs:
		arity = Strict(cfd.MinArgs)
	}

	help := cfd.Help
	if help == "" {
		help = fmt.Sprintf("%s(...)", cfd.Name)
	}

	fn := cfd.Fn
	e.customFns[cfd.Name] = &FunctionDef{
		Name:        cfd.Name,
		Arity:       arity,
		Category:    CategoryExtensions,
		Help:        help,
		Description: cfd.Description,
		Impl: func(ctx context.Context, args *BoundArguments) (types.Value, error) {
			if err := arity.Check(args.Len()); err != nil {
				return types.None, err
			}
			return fn(ctx, args.Values()...)
		},
	}
	return nil
}

// Err returns the error raised while registering custom functions, if any.
// Prepare fails with the same error.
func (e *Evaluator) Err() error {
	return e.err
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache[*types.Expression] {
	return e.cache
}

// Lookup returns the function registered under name, custom functions
// included.
func (e *Evaluator) Lookup(name string) (*FunctionDef, bool) {
	if fn, ok := GetFunction(name); ok {
		return fn, true
	}
	fn, ok := e.customFns[name]
	return fn, ok
}

// Functions returns every available function sorted by category then name.
func (e *Evaluator) Functions() []*FunctionDef {
	defs := BuiltinFunctions()
	for _, fd := range e.customFns {
		defs = append(defs, fd)
	}
	sortFunctionDefs(defs)
	return defs
}

func (e *Evaluator) functionNames() []string {
	initBuiltinFunctions()
	names := make([]string, 0, len(builtinFunctions)+len(e.customFns))
	for name := range builtinFunctions {
		names = append(names, name)
	}
	for name := range e.customFns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile parses an expression, going through the cache when enabled.
func (e *Evaluator) Compile(query string) (*types.Expression, error) {
	compile := func() (*types.Expression, error) {
		return parser.Compile(query, parser.WithMaxDepth(e.opts.MaxDepth))
	}
	if e.cache == nil {
		return compile()
	}
	return e.cache.GetOrCompile(query, compile)
}

// PrepareString compiles then prepares query against header.
func (e *Evaluator) PrepareString(query string, header []string, opts ...PrepareOption) (*Program, error) {
	expr, err := e.Compile(query)
	if err != nil {
		return nil, err
	}
	return e.Prepare(expr, header, opts...)
}

// findClosestMatch returns the candidate closest to target, or "".
func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		// target is not a subsequence of any candidate, try the other way around
		for _, candidate := range candidates {
			if len(candidate)*2 >= len(target) && fuzzy.MatchFold(candidate, target) {
				ranks = append(ranks, fuzzy.Rank{Source: candidate, Target: candidate, Distance: len(target) - len(candidate)})
			}
		}
	}
	if len(ranks) == 0 {
		return ""
	}

	sort.Sort(ranks)
	return ranks[0].Target
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables expression compilation caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached expressions.
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external expression cache.
func WithCache(c *cache.Cache[*types.Expression]) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum expression nesting depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithCustomFunction registers a user-defined function accepting between
// minArgs and maxArgs arguments (maxArgs -1 for no limit).
//
// Example:
//
//	evaluator.New(evaluator.WithCustomFunction("double", 1, 1, func(ctx context.Context, args ...types.Value) (types.Value, error) {
//	    n, err := args[0].AsNumber()
//	    if err != nil {
//	        return types.None, err
//	    }
//	    return n.Mul(types.IntegerNumber(2)).Value(), nil
//	}))
func WithCustomFunction(name string, minArgs, maxArgs int, fn functions.CustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, functions.CustomFunctionDef{
			Name:    name,
			MinArgs: minArgs,
			MaxArgs: maxArgs,
			Fn:      fn,
		})
	}
}

// WithFunctions registers several custom function definitions at once.
func WithFunctions(defs ...functions.CustomFunctionDef) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, defs...)
	}
}
