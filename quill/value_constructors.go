package quill

func Undefined() Value               { return Value{} }
func NewBool(b bool) Value           { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value           { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value       { return Value{kind: KindFloat, data: f} }
func NewString(s string) Value       { return Value{kind: KindString, data: s} }
func NewHost(h FieldHolder) Value    { return Value{kind: KindHost, data: h} }
func NewFunction(fn *Function) Value { return Value{kind: KindFunction, data: fn} }

// NewList wraps items without copying them.
func NewList(items ...Value) Value {
	return Value{kind: KindList, data: &List{items: items}}
}

// NewObject copies fields into a fresh object.
func NewObject(fields map[string]Value) Value {
	obj := &Object{fields: make(map[string]Value, len(fields))}
	for k, v := range fields {
		obj.fields[k] = v
	}
	return Value{kind: KindObject, data: obj}
}

// NewBuiltin creates a native callable taking exactly arity arguments.
func NewBuiltin(name string, arity int, fn BuiltinFunc) Value {
	return Value{kind: KindBuiltin, data: &Builtin{Name: name, Arity: arity, Fn: fn}}
}

// NewVariadicBuiltin creates a native callable taking minArgs or more arguments.
func NewVariadicBuiltin(name string, minArgs int, fn BuiltinFunc) Value {
	return Value{kind: KindBuiltin, data: &Builtin{Name: name, Arity: minArgs, Variadic: true, Fn: fn}}
}
