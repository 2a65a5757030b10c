package quill

import (
	"errors"
	"sort"
	"unicode/utf8"
)

var (
	listFieldNames     = []string{"contains", "length", "pop", "push"}
	stringFieldNames   = []string{"length"}
	callableFieldNames = []string{"arity", "name"}
)

// GetField reads a named field. Lists, strings and callables expose a fixed
// set of read-only fields; objects and host values expose their own.
func (v Value) GetField(name string) (Value, error) {
	switch v.kind {
	case KindObject:
		if val, ok := v.data.(*Object).fields[name]; ok {
			return val, nil
		}
	case KindList:
		if val, ok := listField(v.data.(*List), name); ok {
			return val, nil
		}
	case KindString:
		if name == "length" {
			return NewInt(int64(utf8.RuneCountInString(v.data.(string)))), nil
		}
	case KindFunction:
		fn := v.data.(*Function)
		switch name {
		case "name":
			return NewString(fn.Name), nil
		case "arity":
			return NewInt(int64(len(fn.Params))), nil
		}
	case KindBuiltin:
		b := v.data.(*Builtin)
		switch name {
		case "name":
			return NewString(b.Name), nil
		case "arity":
			return NewInt(int64(b.Arity)), nil
		}
	case KindHost:
		if val, ok := v.data.(FieldHolder).GetField(name); ok {
			return val, nil
		}
	}
	return Undefined(), faultf(ErrorNoSuchField, "%s has no field %q", v.kind, name)
}

// SetField writes a named field. Only objects and host values are writable;
// objects gain the field if it is absent.
func (v Value) SetField(name string, val Value) error {
	switch v.kind {
	case KindObject:
		v.data.(*Object).fields[name] = val
		return nil
	case KindHost:
		err := v.data.(FieldHolder).SetField(name, val)
		if err == nil {
			return nil
		}
		var fault *Fault
		if errors.As(err, &fault) {
			return fault
		}
		return faultf(ErrorHost, "%s", err.Error())
	default:
		return faultf(ErrorType, "cannot set field %q on %s", name, v.kind)
	}
}

func (v Value) HasField(name string) bool {
	switch v.kind {
	case KindObject:
		_, ok := v.data.(*Object).fields[name]
		return ok
	case KindHost:
		return v.data.(FieldHolder).HasField(name)
	default:
		for _, field := range v.Fields() {
			if field == name {
				return true
			}
		}
		return false
	}
}

// Fields lists the value's field names in sorted order.
func (v Value) Fields() []string {
	var names []string
	switch v.kind {
	case KindObject:
		fields := v.data.(*Object).fields
		names = make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
	case KindHost:
		names = append(names, v.data.(FieldHolder).Fields()...)
	case KindList:
		names = append(names, listFieldNames...)
	case KindString:
		names = append(names, stringFieldNames...)
	case KindFunction, KindBuiltin:
		names = append(names, callableFieldNames...)
	default:
		return []string{}
	}
	sort.Strings(names)
	return names
}

func listField(l *List, name string) (Value, bool) {
	switch name {
	case "length":
		return NewInt(int64(len(l.items))), true
	case "push":
		return NewVariadicBuiltin("push", 1, func(_ *Execution, args []Value) (Value, error) {
			l.items = append(l.items, args...)
			return NewInt(int64(len(l.items))), nil
		}), true
	case "pop":
		return NewBuiltin("pop", 0, func(_ *Execution, _ []Value) (Value, error) {
			if len(l.items) == 0 {
				return Undefined(), faultf(ErrorIndexOutOfBounds, "pop from empty list")
			}
			last := l.items[len(l.items)-1]
			l.items[len(l.items)-1] = Value{}
			l.items = l.items[:len(l.items)-1]
			return last, nil
		}), true
	case "contains":
		return NewBuiltin("contains", 1, func(_ *Execution, args []Value) (Value, error) {
			for _, item := range l.items {
				if item.Equal(args[0]) {
					return NewBool(true), nil
				}
			}
			return NewBool(false), nil
		}), true
	default:
		return Undefined(), false
	}
}
