package quill

import "sort"

// Scope is one level of lexical bindings. Closures hold the Scope that was
// active when their literal was evaluated, so bindings outlive the block
// that created them.
type Scope struct {
	parent *Scope
	values map[string]Value
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, values: make(map[string]Value)}
}

func (s *Scope) Parent() *Scope { return s.parent }

// Declare binds name in this scope, shadowing any outer binding.
func (s *Scope) Declare(name string, val Value) {
	s.values[name] = val
}

// Lookup resolves name through the chain, innermost first.
func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if val, ok := cur.values[name]; ok {
			return val, true
		}
	}
	return Value{}, false
}

// Assign overwrites the nearest existing binding of name. It reports false
// when no scope in the chain declares name.
func (s *Scope) Assign(name string, val Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.values[name]; ok {
			cur.values[name] = val
			return true
		}
	}
	return false
}

// Names returns the names bound directly in this scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
