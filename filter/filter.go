package filter

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/bgmbot/bangumi"
)

// Filter is a compiled boolean expression over search results.
// A Filter is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache keeps up to size compiled filters keyed by expression
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// Compiler turns expressions into Filters
type Compiler struct {
	cache *lruCache
}

// NewCompiler creates a compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile is a shorthand for an uncached compiler
func Compile(expression string) (*Filter, error) {
	return NewCompiler().Compile(expression)
}

// Compile type-checks expression against Env and requires a boolean result
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(Env{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, err)
	}

	f := &Filter{expression: expression, program: program}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// CacheSize returns the number of cached filters
func (c *Compiler) CacheSize() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// Expression returns the source expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one entity
func (f *Filter) Match(e bangumi.Entity) (bool, error) {
	result, err := expr.Run(f.program, NewEnv(e))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			EntityID:   e.ID(),
			EntityName: e.NonEmpty("name", "?"),
			Err:        err,
		}
	}

	// AsBool at compile time guarantees the type
	return result.(bool), nil
}

// Apply returns a new page holding the entries that match, in their
// original order. Entries that fail to evaluate are dropped. Total is
// carried over unchanged since it describes the remote result set.
func (f *Filter) Apply(page *bangumi.Page) *bangumi.Page {
	out := &bangumi.Page{}
	if page == nil {
		return out
	}
	out.Total = page.Total

	for _, e := range page.Data {
		if ok, err := f.Match(e); err == nil && ok {
			out.Data = append(out.Data, e)
		}
	}
	return out
}
