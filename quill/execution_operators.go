package quill

import (
	"errors"
	"math"
)

func (exec *Execution) evalUnary(e *UnaryExpr, scope *Scope, depth int) (Value, *signal) {
	operand, sig := exec.evalExpr(e.Operand, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	switch e.Operator {
	case "!":
		return NewBool(!operand.Truthy()), nil
	case "-":
		switch operand.Kind() {
		case KindInt:
			return NewInt(-operand.Int()), nil
		case KindFloat:
			return NewFloat(-operand.Float()), nil
		}
		return Value{}, exec.throwf(e.position, ErrorType, "cannot negate %s", operand.Kind())
	default:
		return Value{}, exec.throwf(e.position, ErrorType, "unknown unary operator %s", e.Operator)
	}
}

func (exec *Execution) evalBinary(e *BinaryExpr, scope *Scope, depth int) (Value, *signal) {
	left, sig := exec.evalExpr(e.Left, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	switch e.Operator {
	case "&&":
		if !left.Truthy() {
			return NewBool(false), nil
		}
		return exec.truthOf(e.Right, scope, depth)
	case "||":
		if left.Truthy() {
			return NewBool(true), nil
		}
		return exec.truthOf(e.Right, scope, depth)
	}
	right, sig := exec.evalExpr(e.Right, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	val, err := binaryOp(e.Operator, left, right)
	if err != nil {
		return Value{}, exec.throwError(e.position, err)
	}
	return val, nil
}

func (exec *Execution) truthOf(expr Expression, scope *Scope, depth int) (Value, *signal) {
	ok, sig := exec.condition(expr, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	return NewBool(ok), nil
}

// binaryOp applies a strict (non short-circuit) binary operator.
func binaryOp(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return NewBool(left.Equal(right)), nil
	case "!=":
		return NewBool(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		c, err := left.Compare(right)
		if errors.Is(err, ErrUnordered) {
			return NewBool(false), nil
		}
		if err != nil {
			return Value{}, err
		}
		switch op {
		case "<":
			return NewBool(c < 0), nil
		case "<=":
			return NewBool(c <= 0), nil
		case ">":
			return NewBool(c > 0), nil
		default:
			return NewBool(c >= 0), nil
		}
	case "+":
		if left.Kind() == KindString || right.Kind() == KindString {
			return NewString(left.String() + right.String()), nil
		}
		return arithmetic(op, left, right)
	case "-", "*", "/", "%":
		return arithmetic(op, left, right)
	default:
		return Value{}, faultf(ErrorType, "unknown operator %s", op)
	}
}

// arithmetic keeps int op int in int64 with wrapping overflow and promotes
// any other numeric pairing to double.
func arithmetic(op string, left, right Value) (Value, error) {
	if !left.IsNumber() || !right.IsNumber() {
		return Value{}, faultf(ErrorType, "unsupported operand types for %s: %s and %s", op, left.Kind(), right.Kind())
	}
	if left.Kind() == KindInt && right.Kind() == KindInt {
		a, b := left.Int(), right.Int()
		switch op {
		case "+":
			return NewInt(a + b), nil
		case "-":
			return NewInt(a - b), nil
		case "*":
			return NewInt(a * b), nil
		case "/":
			if b == 0 {
				return Value{}, faultf(ErrorDivisionByZero, "integer division by zero")
			}
			return NewInt(a / b), nil
		default:
			if b == 0 {
				return Value{}, faultf(ErrorDivisionByZero, "integer modulo by zero")
			}
			return NewInt(a % b), nil
		}
	}
	a, b := left.Float(), right.Float()
	switch op {
	case "+":
		return NewFloat(a + b), nil
	case "-":
		return NewFloat(a - b), nil
	case "*":
		return NewFloat(a * b), nil
	case "/":
		return NewFloat(a / b), nil
	default:
		return NewFloat(math.Mod(a, b)), nil
	}
}
