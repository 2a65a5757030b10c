package quill

import (
	"errors"

	"github.com/mgomes/quill/parsec"
)

type ifTail struct {
	elseIf []ElseIfClause
	orElse Statement
}

type tryTail struct {
	catchName string
	catch     *BlockStmt
	finally   *BlockStmt
}

type forClauses struct {
	init      Statement
	condition Expression
	update    Statement
	body      Statement
}

func (g *grammar) buildStatements() {
	lx := g.lx
	expr := parsec.Lazy(func() parsec.Parser[Expression] { return g.expression })
	stmt := parsec.Lazy(func() parsec.Parser[Statement] { return g.statement })
	semi := parsec.Cut(lx.symbol(";"))
	open := parsec.Cut(lx.symbol("("))
	closeParen := parsec.Cut(lx.symbol(")"))
	condition := parsec.Right(open, parsec.Left(parsec.Cut(expr), closeParen))
	noExpr := parsec.Pure[Expression](nil)

	g.block = located(
		parsec.Right(lx.symbol("{"), parsec.Cut(parsec.Left(parsec.Many(stmt), lx.symbol("}")))),
		func(pos Position, stmts []Statement) *BlockStmt {
			return &BlockStmt{Statements: stmts, position: pos}
		},
	)
	block := parsec.Map(g.block, func(b *BlockStmt) Statement { return b })

	// Clauses without a terminator, shared with the for header.
	varClause := located(
		parsec.Right(lx.keyword("var"), parsec.Cut(parsec.Then(
			lx.identifier,
			parsec.Or(parsec.Right(lx.symbol("="), parsec.Cut(expr)), noExpr),
			func(name string, val Expression) *VarStmt { return &VarStmt{Name: name, Value: val} },
		))),
		func(pos Position, s *VarStmt) Statement {
			s.position = pos
			return s
		},
	)
	assignOp := lexeme(lx, parsec.NotFollowedBy(parsec.String("="), parsec.Rune('='), `"="`))
	simpleClause := located(
		parsec.Then(expr, parsec.Or(parsec.Right(assignOp, parsec.Cut(expr)), noExpr), func(target, value Expression) Statement {
			if value == nil {
				return &ExprStmt{Expr: target}
			}
			return &AssignStmt{Target: target, Value: value}
		}),
		func(pos Position, s Statement) Statement {
			switch n := s.(type) {
			case *ExprStmt:
				n.position = pos
			case *AssignStmt:
				n.position = pos
			}
			return s
		},
	)

	varStmt := parsec.Left(varClause, semi)
	simpleStmt := parsec.Left(simpleClause, semi)

	funcDecl := located(
		parsec.Right(lx.keyword("function"), parsec.Then(lx.identifier, parsec.Cut(g.functionTail()), func(name string, fn *FunctionLiteral) *FunctionLiteral {
			fn.Name = name
			return fn
		})),
		func(pos Position, fn *FunctionLiteral) Statement {
			fn.position = pos
			return &VarStmt{Name: fn.Name, Value: fn, position: pos}
		},
	)

	elseIf := parsec.Right(lx.keyword("else"), parsec.Right(lx.keyword("if"), parsec.Cut(parsec.Then(condition, parsec.Cut(stmt), func(c Expression, body Statement) ElseIfClause {
		return ElseIfClause{Condition: c, Body: body}
	}))))
	elseBranch := parsec.Or(parsec.Right(lx.keyword("else"), parsec.Cut(stmt)), parsec.Pure[Statement](nil))
	ifStmt := located(
		parsec.Right(lx.keyword("if"), parsec.Cut(parsec.Then(
			parsec.Then(condition, parsec.Cut(stmt), func(c Expression, then Statement) *IfStmt { return &IfStmt{Condition: c, Then: then} }),
			parsec.Then(parsec.Many(elseIf), elseBranch, func(clauses []ElseIfClause, orElse Statement) ifTail {
				return ifTail{elseIf: clauses, orElse: orElse}
			}),
			func(s *IfStmt, tail ifTail) *IfStmt {
				s.ElseIf = tail.elseIf
				s.Else = tail.orElse
				return s
			},
		))),
		func(pos Position, s *IfStmt) Statement {
			s.position = pos
			return s
		},
	)

	whileStmt := located(
		parsec.Right(lx.keyword("while"), parsec.Cut(parsec.Then(condition, parsec.Cut(stmt), func(c Expression, body Statement) *WhileStmt {
			return &WhileStmt{Condition: c, Body: body}
		}))),
		func(pos Position, s *WhileStmt) Statement {
			s.position = pos
			return s
		},
	)

	noStmt := parsec.Pure[Statement](nil)
	forInit := parsec.Left(parsec.Or(varClause, simpleClause, noStmt), semi)
	forCond := parsec.Left(parsec.Or(expr, noExpr), semi)
	forUpdate := parsec.Left(parsec.Or(simpleClause, noStmt), closeParen)
	forHeader := parsec.Then(
		parsec.Right(open, parsec.Then(forInit, forCond, func(init Statement, c Expression) forClauses {
			return forClauses{init: init, condition: c}
		})),
		parsec.Then(forUpdate, parsec.Cut(stmt), func(update, body Statement) forClauses {
			return forClauses{update: update, body: body}
		}),
		func(head, tail forClauses) *ForStmt {
			return &ForStmt{Init: head.init, Condition: head.condition, Update: tail.update, Body: tail.body}
		},
	)
	forStmt := located(
		parsec.Right(lx.keyword("for"), parsec.Cut(forHeader)),
		func(pos Position, s *ForStmt) Statement {
			s.position = pos
			return s
		},
	)

	breakStmt := located(parsec.Left(lx.keyword("break"), semi), func(pos Position, _ string) Statement {
		return &BreakStmt{position: pos}
	})
	continueStmt := located(parsec.Left(lx.keyword("continue"), semi), func(pos Position, _ string) Statement {
		return &ContinueStmt{position: pos}
	})
	returnStmt := located(
		parsec.Right(lx.keyword("return"), parsec.Left(parsec.Or(expr, noExpr), semi)),
		func(pos Position, val Expression) Statement {
			return &ReturnStmt{Value: val, position: pos}
		},
	)
	throwStmt := located(
		parsec.Right(lx.keyword("throw"), parsec.Cut(parsec.Left(expr, semi))),
		func(pos Position, val Expression) Statement {
			return &ThrowStmt{Value: val, position: pos}
		},
	)

	catchClause := parsec.Right(lx.keyword("catch"), parsec.Cut(parsec.Then(
		parsec.Right(lx.symbol("("), parsec.Left(parsec.Cut(lx.identifier), closeParen)),
		parsec.Cut(g.block),
		func(name string, body *BlockStmt) tryTail { return tryTail{catchName: name, catch: body} },
	)))
	finallyClause := parsec.Right(lx.keyword("finally"), parsec.Cut(g.block))
	handlers := parsec.MapErr(
		parsec.Then(
			parsec.Optional(catchClause, tryTail{}),
			parsec.Optional(finallyClause, (*BlockStmt)(nil)),
			func(t tryTail, fin *BlockStmt) tryTail {
				t.finally = fin
				return t
			},
		),
		func(t tryTail) (tryTail, error) {
			if t.catch == nil && t.finally == nil {
				return t, errors.New("try requires a catch or finally block")
			}
			return t, nil
		},
	)
	tryStmt := located(
		parsec.Right(lx.keyword("try"), parsec.Cut(parsec.Then(g.block, handlers, func(body *BlockStmt, t tryTail) *TryStmt {
			return &TryStmt{Body: body, CatchName: t.catchName, Catch: t.catch, Finally: t.finally}
		}))),
		func(pos Position, s *TryStmt) Statement {
			s.position = pos
			return s
		},
	)

	misplacedImport := parsec.MapErr(lx.keyword("import"), func(string) (Statement, error) {
		return nil, errors.New("import declarations must precede all statements")
	})

	g.statement = parsec.Label(parsec.Or(
		block,
		varStmt,
		funcDecl,
		ifStmt,
		whileStmt,
		forStmt,
		breakStmt,
		continueStmt,
		returnStmt,
		throwStmt,
		tryStmt,
		misplacedImport,
		simpleStmt,
	), "statement")

	moduleName := lexeme(lx, parsec.Label(parsec.TakeWhile1("module name", func(r rune) bool {
		return isIdentChar(r) || r == '/' || r == '.' || r == '-'
	}), "module name"))
	importDecl := located(
		parsec.Right(lx.keyword("import"), parsec.Cut(parsec.Left(moduleName, semi))),
		func(pos Position, name string) ImportDecl {
			return ImportDecl{Name: name, position: pos}
		},
	)

	g.program = parsec.Right(lx.spacing, parsec.Left(
		parsec.Then(parsec.Many(importDecl), parsec.Many(g.statement), func(imports []ImportDecl, stmts []Statement) *Program {
			return &Program{Imports: imports, Statements: stmts}
		}),
		parsec.EOF(),
	))
}
