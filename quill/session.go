package quill

import "context"

// Session runs programs against one persistent root scope. A module runs at
// most once per session no matter how many later programs import it.
type Session struct {
	engine  *Engine
	root    *Scope
	loaded  map[string]bool
	sources map[string]string
}

// NewSession starts a session with a fresh root scope.
func (e *Engine) NewSession() *Session {
	return &Session{
		engine:  e,
		root:    e.newRoot(),
		loaded:  make(map[string]bool),
		sources: make(map[string]string),
	}
}

func (s *Session) Root() *Scope { return s.root }

// Run parses source, loads the modules it imports that have not run yet in
// this session, and then runs source.
func (s *Session) Run(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.engine
	prog, err := e.parse("", source)
	if err != nil {
		return nil, err
	}
	res := &resolver{sources: e.sources, parse: e.parse, loaded: s.loaded}
	units, err := res.resolve(prog)
	if err != nil {
		return nil, err
	}
	loadOrder := make([]string, len(units))
	for i, unit := range units {
		loadOrder[i] = unit.name
		s.sources[unit.name] = unit.source
	}
	s.sources[""] = source
	if len(loadOrder) > 0 {
		e.logger.Debug("resolved imports", "load_order", loadOrder)
	}

	exec := s.newExecution(ctx)
	stop := context.AfterFunc(ctx, func() { exec.interrupted.Store(true) })
	defer stop()

	for _, unit := range units {
		if err := exec.runModule(unit.name, unit.program); err != nil {
			return nil, err
		}
		s.loaded[unit.name] = true
	}
	if err := exec.runModule("", prog); err != nil {
		return nil, err
	}

	e.logger.Debug("run complete", "steps", exec.steps, "restarts", exec.guard.restarts)
	return &Result{
		Root:      s.root,
		Value:     exec.lastValue,
		LoadOrder: loadOrder,
		Restarts:  exec.guard.restarts,
		Steps:     exec.steps,
	}, nil
}

func (s *Session) newExecution(ctx context.Context) *Execution {
	cfg := s.engine.config
	callLimit := cfg.RecursionLimit
	if callLimit < 0 {
		callLimit = 0
	}
	return &Execution{
		engine:    s.engine,
		ctx:       ctx,
		root:      s.root,
		out:       cfg.Output,
		quota:     cfg.StepQuota,
		callLimit: callLimit,
		sources:   s.sources,
		guard:     newGuard(cfg.MaxEvalDepth),
	}
}
