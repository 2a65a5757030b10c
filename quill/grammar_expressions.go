package quill

import (
	"github.com/mgomes/quill/parsec"
)

type postfixOp func(Expression) Expression

func (g *grammar) buildExpressions() {
	lx := g.lx
	expr := parsec.Lazy(func() parsec.Parser[Expression] { return g.expression })

	literal := func(p parsec.Parser[Value]) parsec.Parser[Expression] {
		return located(p, func(pos Position, v Value) Expression { return &Literal{Value: v, position: pos} })
	}
	keywordValue := func(kw string, v Value) parsec.Parser[Expression] {
		return literal(parsec.Map(lx.keyword(kw), func(string) Value { return v }))
	}

	identifier := located(lx.identifier, func(pos Position, name string) Expression {
		return &Identifier{Name: name, position: pos}
	})

	group := parsec.Right(lx.symbol("("), parsec.Cut(parsec.Left(expr, lx.symbol(")"))))

	elements := parsec.SepBy(expr, lx.symbol(","))
	list := located(
		parsec.Right(lx.symbol("["), parsec.Cut(parsec.Left(elements, lx.symbol("]")))),
		func(pos Position, items []Expression) Expression {
			return &ListLiteral{Elements: items, position: pos}
		},
	)

	fieldKey := parsec.Label(parsec.Or(lx.str, g.anyWord()), "field name")
	field := parsec.Then(fieldKey, parsec.Right(parsec.Cut(lx.symbol(":")), parsec.Cut(expr)), func(key string, val Expression) ObjectField {
		return ObjectField{Key: key, Value: val}
	})
	object := located(
		parsec.Right(lx.symbol("{"), parsec.Cut(parsec.Left(parsec.SepBy(field, lx.symbol(",")), lx.symbol("}")))),
		func(pos Position, fields []ObjectField) Expression {
			return &ObjectLiteral{Fields: fields, position: pos}
		},
	)

	function := located(
		parsec.Right(lx.keyword("function"), parsec.Cut(parsec.Then(parsec.Optional(lx.identifier, ""), g.functionTail(), func(name string, fn *FunctionLiteral) *FunctionLiteral {
			fn.Name = name
			return fn
		}))),
		func(pos Position, fn *FunctionLiteral) Expression {
			fn.position = pos
			return fn
		},
	)

	primary := parsec.Label(parsec.Or(
		literal(lx.number),
		literal(parsec.Map(lx.str, NewString)),
		keywordValue("true", NewBool(true)),
		keywordValue("false", NewBool(false)),
		keywordValue("undefined", Undefined()),
		function,
		identifier,
		group,
		list,
		object,
	), "expression")

	call := located(
		parsec.Right(lx.symbol("("), parsec.Cut(parsec.Left(parsec.SepBy(expr, lx.symbol(",")), lx.symbol(")")))),
		func(pos Position, args []Expression) postfixOp {
			return func(callee Expression) Expression {
				return &CallExpr{Callee: callee, Args: args, position: pos}
			}
		},
	)
	member := located(
		parsec.Right(lx.symbol("."), parsec.Cut(parsec.Label(g.anyWord(), "field name"))),
		func(pos Position, name string) postfixOp {
			return func(obj Expression) Expression {
				return &MemberExpr{Object: obj, Property: name, position: pos}
			}
		},
	)
	index := located(
		parsec.Right(lx.symbol("["), parsec.Cut(parsec.Left(expr, lx.symbol("]")))),
		func(pos Position, idx Expression) postfixOp {
			return func(obj Expression) Expression {
				return &IndexExpr{Object: obj, Index: idx, position: pos}
			}
		},
	)
	postfix := parsec.Then(primary, parsec.Many(parsec.Or(call, member, index)), func(base Expression, ops []postfixOp) Expression {
		for _, op := range ops {
			base = op(base)
		}
		return base
	})

	var unary parsec.Parser[Expression]
	prefix := located(
		parsec.Then(lexeme(lx, parsec.OneOf("-", "!")), parsec.Cut(parsec.Lazy(func() parsec.Parser[Expression] { return unary })), func(op string, operand Expression) *UnaryExpr {
			return &UnaryExpr{Operator: op, Operand: operand}
		}),
		func(pos Position, u *UnaryExpr) Expression {
			u.position = pos
			return u
		},
	)
	unary = parsec.Or(prefix, postfix)

	level := func(operand parsec.Parser[Expression], ops ...string) parsec.Parser[Expression] {
		op := located(lexeme(lx, parsec.OneOf(ops...)), func(pos Position, s string) binaryToken {
			return binaryToken{op: s, pos: pos}
		})
		return parsec.ChainLeft(operand, op, func(left Expression, op binaryToken, right Expression) Expression {
			return &BinaryExpr{Operator: op.op, Left: left, Right: right, position: op.pos}
		})
	}
	multiplicative := level(unary, "*", "/", "%")
	additive := level(multiplicative, "+", "-")
	relational := level(additive, "<=", ">=", "<", ">")
	equality := level(relational, "==", "!=")
	and := level(equality, "&&")
	g.expression = level(and, "||")
}

type binaryToken struct {
	op  string
	pos Position
}

// anyWord matches identifier-shaped text, keywords included. Field names
// may be keywords.
func (g *grammar) anyWord() parsec.Parser[string] {
	word := parsec.Then(
		parsec.Satisfy("field name", isIdentStart),
		parsec.TakeWhile(isIdentChar),
		func(first rune, rest string) string { return string(first) + rest },
	)
	return lexeme(g.lx, word)
}

// functionTail parses the parameter list and body after the function
// keyword and optional name.
func (g *grammar) functionTail() parsec.Parser[*FunctionLiteral] {
	lx := g.lx
	params := parsec.Right(lx.symbol("("), parsec.Cut(parsec.Left(parsec.SepBy(lx.identifier, lx.symbol(",")), lx.symbol(")"))))
	body := parsec.Lazy(func() parsec.Parser[*BlockStmt] { return g.block })
	return parsec.Then(params, parsec.Cut(body), func(names []string, b *BlockStmt) *FunctionLiteral {
		return &FunctionLiteral{Params: names, Body: b}
	})
}
