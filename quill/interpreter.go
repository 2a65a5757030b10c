package quill

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// Config controls evaluation limits, module resolution and diagnostics.
type Config struct {
	// MaxEvalDepth is the evaluation depth one goroutine stack segment may
	// reach before the recursion guard resumes on a fresh segment. Zero
	// selects the default; a negative value disables the guard.
	MaxEvalDepth int
	// RecursionLimit caps the script call depth. Zero selects the default;
	// a negative value removes the cap.
	RecursionLimit int
	// StepQuota caps evaluation steps per run. Zero means unlimited.
	StepQuota int
	// Sources are searched for imports before ModulePaths.
	Sources           []Source
	ModulePaths       []string
	MaxCachedPrograms int
	Output            io.Writer
	Logger            *slog.Logger
}

const (
	defaultMaxEvalDepth      = 1000
	defaultRecursionLimit    = 100000
	defaultMaxCachedPrograms = 256
)

// Engine holds the host's globals and a cache of parsed modules. It is safe
// for concurrent Run calls once registration is finished.
type Engine struct {
	config  Config
	globals map[string]Value
	sources []Source
	cache   *programCache
	logger  *slog.Logger
}

// Result describes a completed run.
type Result struct {
	Root *Scope
	// Value is the value of the main program's last top-level expression
	// statement, or of its top-level return.
	Value     Value
	LoadOrder []string
	Restarts  int
	Steps     int
}

// NewEngine applies defaults, validates cfg and registers the prelude.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MaxEvalDepth == 0 {
		cfg.MaxEvalDepth = defaultMaxEvalDepth
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.StepQuota < 0 {
		cfg.StepQuota = 0
	}
	if cfg.MaxCachedPrograms <= 0 {
		cfg.MaxCachedPrograms = defaultMaxCachedPrograms
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if err := validateModulePaths(cfg.ModulePaths); err != nil {
		return nil, err
	}

	sources := slices.Clone(cfg.Sources)
	for _, dir := range cfg.ModulePaths {
		sources = append(sources, DirSource(dir))
	}

	engine := &Engine{
		config:  cfg,
		globals: make(map[string]Value),
		sources: sources,
		cache:   newProgramCache(cfg.MaxCachedPrograms),
		logger:  cfg.Logger,
	}
	engine.RegisterVariadicBuiltin("print", 0, builtinPrint)
	engine.RegisterVariadicBuiltin("assert", 1, builtinAssert)
	engine.RegisterBuiltin("len", 1, builtinLen)
	engine.RegisterBuiltin("str", 1, builtinStr)
	return engine, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Define binds name in the root scope of every subsequent run.
func (e *Engine) Define(name string, val Value) {
	e.globals[name] = val
}

// RegisterBuiltin registers a native taking exactly arity arguments.
func (e *Engine) RegisterBuiltin(name string, arity int, fn BuiltinFunc) {
	e.globals[name] = NewBuiltin(name, arity, fn)
}

// RegisterVariadicBuiltin registers a native taking minArgs or more arguments.
func (e *Engine) RegisterVariadicBuiltin(name string, minArgs int, fn BuiltinFunc) {
	e.globals[name] = NewVariadicBuiltin(name, minArgs, fn)
}

// Builtins returns a copy of the host-defined globals.
func (e *Engine) Builtins() map[string]Value {
	out := make(map[string]Value, len(e.globals))
	maps.Copy(out, e.globals)
	return out
}

// ClearProgramCache drops all cached parses and returns how many were removed.
func (e *Engine) ClearProgramCache() int {
	return e.cache.clear()
}

// ConfigSummary provides a human-readable description of the interpreter limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("max_eval_depth=%d recursion=%d steps=%d sources=%d cache=%d",
		e.config.MaxEvalDepth, e.config.RecursionLimit, e.config.StepQuota, len(e.sources), e.config.MaxCachedPrograms)
}

// Compile parses source without running it.
func (e *Engine) Compile(source string) (*Program, error) {
	return e.parse("", source)
}

// Resolve parses source and its import closure without running anything
// and returns the modules in load order.
func (e *Engine) Resolve(source string) ([]string, error) {
	prog, err := e.parse("", source)
	if err != nil {
		return nil, err
	}
	res := &resolver{sources: e.sources, parse: e.parse}
	units, err := res.resolve(prog)
	if err != nil {
		return nil, err
	}
	order := make([]string, len(units))
	for i, unit := range units {
		order[i] = unit.name
	}
	return order, nil
}

// Run resolves source's imports, runs every module once in load order and
// then runs source itself, all against one fresh root scope.
func (e *Engine) Run(ctx context.Context, source string) (*Result, error) {
	return e.NewSession().Run(ctx, source)
}

// parse goes through the program cache. Failed parses are not cached.
func (e *Engine) parse(module, source string) (*Program, error) {
	key := digest(sha256.Sum256([]byte(source)))
	if prog, ok := e.cache.get(key); ok {
		e.logger.Debug("program cache hit", "module", module)
		return prog, nil
	}
	prog, err := parseModule(module, source)
	if err != nil {
		return nil, err
	}
	e.cache.add(key, prog)
	return prog, nil
}

func (e *Engine) newRoot() *Scope {
	root := NewScope(nil)
	root.Declare("Reflect", reflectObject())
	for name, val := range e.globals {
		root.Declare(name, val)
	}
	return root
}
