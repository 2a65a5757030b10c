package quill

import "unicode/utf8"

// evalExpr evaluates expr at the given evaluation depth. Only throw and
// abort signals escape an expression.
func (exec *Execution) evalExpr(expr Expression, scope *Scope, depth int) (Value, *signal) {
	if exec.guard.exhausted(depth) {
		out := exec.guard.resume(func(fresh int) outcome {
			v, sig := exec.evalExpr(expr, scope, fresh)
			return outcome{value: v, sig: sig}
		})
		return out.value, out.sig
	}
	if sig := exec.step(); sig != nil {
		return Value{}, sig
	}
	depth++

	switch e := expr.(type) {
	case *Literal:
		return e.Value, nil
	case *Identifier:
		val, ok := scope.Lookup(e.Name)
		if !ok {
			return Value{}, exec.throwf(e.position, ErrorUndefinedVariable, "undefined variable %s", e.Name)
		}
		return val, nil
	case *UnaryExpr:
		return exec.evalUnary(e, scope, depth)
	case *BinaryExpr:
		return exec.evalBinary(e, scope, depth)
	case *CallExpr:
		return exec.evalCall(e, scope, depth)
	case *MemberExpr:
		obj, sig := exec.evalExpr(e.Object, scope, depth)
		if sig != nil {
			return Value{}, sig
		}
		val, err := obj.GetField(e.Property)
		if err != nil {
			return Value{}, exec.throwError(e.position, err)
		}
		return val, nil
	case *IndexExpr:
		return exec.evalIndex(e, scope, depth)
	case *ListLiteral:
		items := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			val, sig := exec.evalExpr(el, scope, depth)
			if sig != nil {
				return Value{}, sig
			}
			items = append(items, val)
		}
		return NewList(items...), nil
	case *ObjectLiteral:
		fields := make(map[string]Value, len(e.Fields))
		for _, f := range e.Fields {
			val, sig := exec.evalExpr(f.Value, scope, depth)
			if sig != nil {
				return Value{}, sig
			}
			fields[f.Key] = val
		}
		return NewObject(fields), nil
	case *FunctionLiteral:
		return NewFunction(&Function{
			Name:   e.Name,
			Params: e.Params,
			Body:   e.Body,
			Scope:  scope,
			Pos:    e.position,
			Module: exec.module,
		}), nil
	default:
		return Value{}, exec.throwf(expr.Pos(), ErrorType, "unsupported expression %T", expr)
	}
}

func (exec *Execution) evalIndex(e *IndexExpr, scope *Scope, depth int) (Value, *signal) {
	obj, sig := exec.evalExpr(e.Object, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	idx, sig := exec.evalExpr(e.Index, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	val, err := indexValue(obj, idx)
	if err != nil {
		return Value{}, exec.throwError(e.position, err)
	}
	return val, nil
}

// indexValue implements subscript reads: lists and strings by integer
// position, objects and host values by field name.
func indexValue(obj, idx Value) (Value, error) {
	switch obj.Kind() {
	case KindList:
		if idx.Kind() != KindInt {
			return Value{}, faultf(ErrorType, "list index must be int, got %s", idx.Kind())
		}
		return obj.List().Index(idx.Int())
	case KindString:
		if idx.Kind() != KindInt {
			return Value{}, faultf(ErrorType, "string index must be int, got %s", idx.Kind())
		}
		s := obj.data.(string)
		i := idx.Int()
		if i < 0 || i >= int64(utf8.RuneCountInString(s)) {
			return Value{}, faultf(ErrorIndexOutOfBounds, "string index %d out of bounds (length %d)", i, utf8.RuneCountInString(s))
		}
		return NewString(string([]rune(s)[i])), nil
	case KindObject, KindHost:
		if idx.Kind() != KindString {
			return Value{}, faultf(ErrorType, "%s key must be string, got %s", obj.Kind(), idx.Kind())
		}
		return obj.GetField(idx.data.(string))
	default:
		return Value{}, faultf(ErrorType, "cannot index %s", obj.Kind())
	}
}
