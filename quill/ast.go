package quill

import "fmt"

// Position locates a node in its module's source. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

// Program is a parsed module: its import declarations followed by its
// top-level statements.
type Program struct {
	Imports    []ImportDecl
	Statements []Statement
}

func (p *Program) Pos() Position {
	if len(p.Imports) > 0 {
		return p.Imports[0].position
	}
	if len(p.Statements) == 0 {
		return Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Pos()
}

// ImportNames returns the imported module names in declaration order.
func (p *Program) ImportNames() []string {
	names := make([]string, len(p.Imports))
	for i, imp := range p.Imports {
		names[i] = imp.Name
	}
	return names
}

type ImportDecl struct {
	Name     string
	position Position
}

func (d ImportDecl) Pos() Position { return d.position }

type Literal struct {
	Value    Value
	position Position
}

func (e *Literal) exprNode()     {}
func (e *Literal) Pos() Position { return e.position }

type Identifier struct {
	Name     string
	position Position
}

func (e *Identifier) exprNode()     {}
func (e *Identifier) Pos() Position { return e.position }

type UnaryExpr struct {
	Operator string
	Operand  Expression
	position Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.position }

type BinaryExpr struct {
	Operator string
	Left     Expression
	Right    Expression
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }

type CallExpr struct {
	Callee   Expression
	Args     []Expression
	position Position
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.position }

type MemberExpr struct {
	Object   Expression
	Property string
	position Position
}

func (e *MemberExpr) exprNode()     {}
func (e *MemberExpr) Pos() Position { return e.position }

type IndexExpr struct {
	Object   Expression
	Index    Expression
	position Position
}

func (e *IndexExpr) exprNode()     {}
func (e *IndexExpr) Pos() Position { return e.position }

type ListLiteral struct {
	Elements []Expression
	position Position
}

func (e *ListLiteral) exprNode()     {}
func (e *ListLiteral) Pos() Position { return e.position }

type ObjectField struct {
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	Fields   []ObjectField
	position Position
}

func (e *ObjectLiteral) exprNode()     {}
func (e *ObjectLiteral) Pos() Position { return e.position }

// FunctionLiteral is a callable literal. Name is set for function
// declarations and only used in stack traces.
type FunctionLiteral struct {
	Name     string
	Params   []string
	Body     *BlockStmt
	position Position
}

func (e *FunctionLiteral) exprNode()     {}
func (e *FunctionLiteral) Pos() Position { return e.position }
