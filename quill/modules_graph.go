package quill

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

type moduleUnit struct {
	name    string
	source  string
	program *Program
	imports []string
}

type importRequest struct {
	name       string
	importedBy string
}

// resolver finds the import closure of a program and orders it so every
// module runs after the modules it imports.
type resolver struct {
	sources []Source
	parse   func(module, source string) (*Program, error)
	// loaded names modules that already ran in this session; they are
	// satisfied and take no part in ordering.
	loaded map[string]bool
}

// resolve returns the modules reachable from prog's imports in load order.
func (r *resolver) resolve(prog *Program) ([]*moduleUnit, error) {
	units, discovered, err := r.discover(prog)
	if err != nil {
		return nil, err
	}
	return orderModules(units, discovered)
}

// discover walks imports breadth-first. The returned set holds module names
// in discovery order.
func (r *resolver) discover(prog *Program) (map[string]*moduleUnit, *linkedhashset.Set, error) {
	units := make(map[string]*moduleUnit)
	discovered := linkedhashset.New()
	frontier := linkedlistqueue.New()

	enqueue := func(imports []ImportDecl, importedBy string) ([]string, error) {
		names := make([]string, 0, len(imports))
		for _, imp := range imports {
			name, err := normalizeModuleName(imp.Name)
			if err != nil {
				return nil, fmt.Errorf("import at %s: %w", imp.Pos(), err)
			}
			names = append(names, name)
			if !r.loaded[name] {
				frontier.Enqueue(importRequest{name: name, importedBy: importedBy})
			}
		}
		return names, nil
	}
	if _, err := enqueue(prog.Imports, ""); err != nil {
		return nil, nil, err
	}

	for !frontier.Empty() {
		next, _ := frontier.Dequeue()
		req := next.(importRequest)
		if discovered.Contains(req.name) {
			continue
		}
		source, err := r.load(req)
		if err != nil {
			return nil, nil, err
		}
		parsed, err := r.parse(req.name, source)
		if err != nil {
			return nil, nil, err
		}
		discovered.Add(req.name)
		unit := &moduleUnit{name: req.name, source: source, program: parsed}
		if unit.imports, err = enqueue(parsed.Imports, req.name); err != nil {
			return nil, nil, fmt.Errorf("module %s: %w", req.name, err)
		}
		units[req.name] = unit
	}
	return units, discovered, nil
}

// load asks each source in order; the first hit wins.
func (r *resolver) load(req importRequest) (string, error) {
	for _, src := range r.sources {
		text, err := src.Load(req.name)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrModuleNotFound) {
			return "", fmt.Errorf("loading module %s: %w", req.name, err)
		}
	}
	return "", &UnresolvedImportError{Name: req.name, ImportedBy: req.importedBy}
}

// orderModules runs Kahn's algorithm over the import graph with edges
// pointing from each module to the modules that import it. Ties resolve in
// discovery order. Modules left over sit on or behind a cycle.
func orderModules(units map[string]*moduleUnit, discovered *linkedhashset.Set) ([]*moduleUnit, error) {
	names := make([]string, 0, discovered.Size())
	for _, v := range discovered.Values() {
		names = append(names, v.(string))
	}

	pending := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		seen := make(map[string]bool)
		for _, dep := range units[name].imports {
			if _, ok := units[dep]; !ok || seen[dep] {
				continue
			}
			seen[dep] = true
			pending[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := linkedlistqueue.New()
	for _, name := range names {
		if pending[name] == 0 {
			ready.Enqueue(name)
		}
	}
	order := make([]*moduleUnit, 0, len(names))
	for !ready.Empty() {
		next, _ := ready.Dequeue()
		name := next.(string)
		order = append(order, units[name])
		for _, importer := range dependents[name] {
			pending[importer]--
			if pending[importer] == 0 {
				ready.Enqueue(importer)
			}
		}
	}

	if len(order) < len(names) {
		return nil, &CircularDependencyError{Cycle: findCycle(names, units, pending)}
	}
	return order, nil
}

// findCycle follows unresolved imports from the first stuck module until a
// module repeats. Every stuck module imports at least one other stuck
// module, so the walk always closes a cycle.
func findCycle(names []string, units map[string]*moduleUnit, pending map[string]int) []string {
	stuck := func(name string) bool {
		_, ok := units[name]
		return ok && pending[name] > 0
	}
	var start string
	for _, name := range names {
		if stuck(name) {
			start = name
			break
		}
	}

	index := make(map[string]int)
	var path []string
	for cur := start; ; {
		if at, ok := index[cur]; ok {
			cycle := append([]string(nil), path[at:]...)
			return append(cycle, cur)
		}
		index[cur] = len(path)
		path = append(path, cur)
		next := ""
		for _, dep := range units[cur].imports {
			if stuck(dep) {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		cur = next
	}
}
