package quill

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func builtinPrint(exec *Execution, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	if _, err := fmt.Fprintln(exec.Output(), strings.Join(parts, " ")); err != nil {
		return Undefined(), fmt.Errorf("print: %w", err)
	}
	return Undefined(), nil
}

func builtinAssert(exec *Execution, args []Value) (Value, error) {
	if len(args) > 2 {
		return Undefined(), Errorf(ErrorArityMismatch, "assert expects a condition and an optional message")
	}
	if args[0].Truthy() {
		return Undefined(), nil
	}
	message := "assertion failed"
	if len(args) == 2 {
		message = args[1].String()
	}
	return Undefined(), Errorf(ErrorAssertion, "%s", message)
}

func builtinLen(exec *Execution, args []Value) (Value, error) {
	v := args[0]
	switch v.Kind() {
	case KindString:
		return NewInt(int64(utf8.RuneCountInString(v.String()))), nil
	case KindList:
		return NewInt(int64(v.List().Len())), nil
	case KindObject:
		return NewInt(int64(v.Object().Len())), nil
	default:
		return Undefined(), Errorf(ErrorType, "len: unsupported %s", v.Kind())
	}
}

func builtinStr(exec *Execution, args []Value) (Value, error) {
	return NewString(args[0].String()), nil
}

// reflectObject exposes the generalized field operations to scripts.
func reflectObject() Value {
	return NewObject(map[string]Value{
		"typeOf": NewBuiltin("Reflect.typeOf", 1, func(exec *Execution, args []Value) (Value, error) {
			return NewString(args[0].Kind().String()), nil
		}),
		"getField": NewBuiltin("Reflect.getField", 2, func(exec *Execution, args []Value) (Value, error) {
			name, err := fieldName("Reflect.getField", args[1])
			if err != nil {
				return Undefined(), err
			}
			return args[0].GetField(name)
		}),
		"setField": NewBuiltin("Reflect.setField", 3, func(exec *Execution, args []Value) (Value, error) {
			name, err := fieldName("Reflect.setField", args[1])
			if err != nil {
				return Undefined(), err
			}
			if err := args[0].SetField(name, args[2]); err != nil {
				return Undefined(), err
			}
			return args[2], nil
		}),
		"hasField": NewBuiltin("Reflect.hasField", 2, func(exec *Execution, args []Value) (Value, error) {
			name, err := fieldName("Reflect.hasField", args[1])
			if err != nil {
				return Undefined(), err
			}
			return NewBool(args[0].HasField(name)), nil
		}),
		"fields": NewBuiltin("Reflect.fields", 1, func(exec *Execution, args []Value) (Value, error) {
			names := args[0].Fields()
			items := make([]Value, len(names))
			for i, name := range names {
				items[i] = NewString(name)
			}
			return NewList(items...), nil
		}),
		"hash": NewBuiltin("Reflect.hash", 1, func(exec *Execution, args []Value) (Value, error) {
			return NewInt(int64(args[0].Hash())), nil
		}),
	})
}

func fieldName(fn string, v Value) (string, error) {
	if v.Kind() != KindString {
		return "", Errorf(ErrorType, "%s expects a string field name, got %s", fn, v.Kind())
	}
	return v.String(), nil
}
