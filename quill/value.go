package quill

type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
	KindFunction
	KindBuiltin
	KindHost
)

// Value is a dynamically-typed runtime value. The zero Value is undefined.
// Lists, objects, functions and host values are references: copying a
// Value shares the underlying structure.
type Value struct {
	kind ValueKind
	data any
}

// List is an ordered, mutable sequence.
type List struct {
	items []Value
}

// Object maps field names to values.
type Object struct {
	fields map[string]Value
}

// Function is a closure over the scope that was active where its literal
// was evaluated.
type Function struct {
	Name   string
	Params []string
	Body   *BlockStmt
	Scope  *Scope
	Pos    Position
	Module string
}

type BuiltinFunc func(exec *Execution, args []Value) (Value, error)

// Builtin is a native callable. A variadic builtin accepts Arity or more
// arguments; otherwise exactly Arity.
type Builtin struct {
	Name     string
	Arity    int
	Variadic bool
	Fn       BuiltinFunc
}

// FieldHolder lets hosts expose their own field-bearing objects to scripts.
type FieldHolder interface {
	GetField(name string) (Value, bool)
	SetField(name string, value Value) error
	HasField(name string) bool
	Fields() []string
}
