package quill

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNumber() bool    { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsCallable() bool  { return v.kind == KindFunction || v.kind == KindBuiltin }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	default:
		return 0
	}
}

func (v Value) List() *List {
	if v.kind != KindList {
		return nil
	}
	return v.data.(*List)
}

func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.data.(*Object)
}

func (v Value) Function() *Function {
	if v.kind != KindFunction {
		return nil
	}
	return v.data.(*Function)
}

func (v Value) Builtin() *Builtin {
	if v.kind != KindBuiltin {
		return nil
	}
	return v.data.(*Builtin)
}

func (v Value) Host() FieldHolder {
	if v.kind != KindHost {
		return nil
	}
	return v.data.(FieldHolder)
}

// Items returns the list's backing slice. Callers must not retain it across
// mutations.
func (l *List) Items() []Value { return l.items }

func (l *List) Len() int { return len(l.items) }

func (l *List) Append(vals ...Value) { l.items = append(l.items, vals...) }

// Index reads element i, failing with IndexOutOfBounds.
func (l *List) Index(i int64) (Value, error) {
	if i < 0 || i >= int64(len(l.items)) {
		return Undefined(), faultf(ErrorIndexOutOfBounds, "list index %d out of bounds (length %d)", i, len(l.items))
	}
	return l.items[i], nil
}

// SetIndex overwrites element i, failing with IndexOutOfBounds.
func (l *List) SetIndex(i int64, val Value) error {
	if i < 0 || i >= int64(len(l.items)) {
		return faultf(ErrorIndexOutOfBounds, "list index %d out of bounds (length %d)", i, len(l.items))
	}
	l.items[i] = val
	return nil
}

func (o *Object) Get(name string) (Value, bool) {
	val, ok := o.fields[name]
	return val, ok
}

func (o *Object) Set(name string, val Value) { o.fields[name] = val }

func (o *Object) Len() int { return len(o.fields) }
