package quill

import (
	"context"
	"fmt"
)

// Visitor is implemented by tree-walking passes. C is the context value
// threaded through the walk and R is the per-node result.
type Visitor[C, R any] interface {
	VisitProgram(*Program, C) (R, error)

	VisitLiteral(*Literal, C) (R, error)
	VisitIdentifier(*Identifier, C) (R, error)
	VisitUnary(*UnaryExpr, C) (R, error)
	VisitBinary(*BinaryExpr, C) (R, error)
	VisitCall(*CallExpr, C) (R, error)
	VisitMember(*MemberExpr, C) (R, error)
	VisitIndex(*IndexExpr, C) (R, error)
	VisitList(*ListLiteral, C) (R, error)
	VisitObject(*ObjectLiteral, C) (R, error)
	VisitFunction(*FunctionLiteral, C) (R, error)

	VisitBlock(*BlockStmt, C) (R, error)
	VisitVar(*VarStmt, C) (R, error)
	VisitAssign(*AssignStmt, C) (R, error)
	VisitIf(*IfStmt, C) (R, error)
	VisitWhile(*WhileStmt, C) (R, error)
	VisitFor(*ForStmt, C) (R, error)
	VisitBreak(*BreakStmt, C) (R, error)
	VisitContinue(*ContinueStmt, C) (R, error)
	VisitReturn(*ReturnStmt, C) (R, error)
	VisitThrow(*ThrowStmt, C) (R, error)
	VisitTry(*TryStmt, C) (R, error)
	VisitExprStmt(*ExprStmt, C) (R, error)
}

// Visit dispatches node to the matching Visitor method. A cancelled ctx
// aborts the walk before dispatch.
func Visit[C, R any](ctx context.Context, node Node, v Visitor[C, R], c C) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	switch n := node.(type) {
	case *Program:
		return v.VisitProgram(n, c)
	case *Literal:
		return v.VisitLiteral(n, c)
	case *Identifier:
		return v.VisitIdentifier(n, c)
	case *UnaryExpr:
		return v.VisitUnary(n, c)
	case *BinaryExpr:
		return v.VisitBinary(n, c)
	case *CallExpr:
		return v.VisitCall(n, c)
	case *MemberExpr:
		return v.VisitMember(n, c)
	case *IndexExpr:
		return v.VisitIndex(n, c)
	case *ListLiteral:
		return v.VisitList(n, c)
	case *ObjectLiteral:
		return v.VisitObject(n, c)
	case *FunctionLiteral:
		return v.VisitFunction(n, c)
	case *BlockStmt:
		return v.VisitBlock(n, c)
	case *VarStmt:
		return v.VisitVar(n, c)
	case *AssignStmt:
		return v.VisitAssign(n, c)
	case *IfStmt:
		return v.VisitIf(n, c)
	case *WhileStmt:
		return v.VisitWhile(n, c)
	case *ForStmt:
		return v.VisitFor(n, c)
	case *BreakStmt:
		return v.VisitBreak(n, c)
	case *ContinueStmt:
		return v.VisitContinue(n, c)
	case *ReturnStmt:
		return v.VisitReturn(n, c)
	case *ThrowStmt:
		return v.VisitThrow(n, c)
	case *TryStmt:
		return v.VisitTry(n, c)
	case *ExprStmt:
		return v.VisitExprStmt(n, c)
	default:
		return zero, fmt.Errorf("quill: unsupported node %T", node)
	}
}

// Children returns the direct child nodes of node in source order.
func Children(node Node) []Node {
	var out []Node
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}
	addStmt := func(s Statement) {
		if s != nil {
			out = append(out, s)
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			addStmt(s)
		}
	case *UnaryExpr:
		addExpr(n.Operand)
	case *BinaryExpr:
		addExpr(n.Left)
		addExpr(n.Right)
	case *CallExpr:
		addExpr(n.Callee)
		for _, a := range n.Args {
			addExpr(a)
		}
	case *MemberExpr:
		addExpr(n.Object)
	case *IndexExpr:
		addExpr(n.Object)
		addExpr(n.Index)
	case *ListLiteral:
		for _, e := range n.Elements {
			addExpr(e)
		}
	case *ObjectLiteral:
		for _, f := range n.Fields {
			addExpr(f.Value)
		}
	case *FunctionLiteral:
		if n.Body != nil {
			out = append(out, n.Body)
		}
	case *BlockStmt:
		for _, s := range n.Statements {
			addStmt(s)
		}
	case *VarStmt:
		addExpr(n.Value)
	case *AssignStmt:
		addExpr(n.Target)
		addExpr(n.Value)
	case *IfStmt:
		addExpr(n.Condition)
		addStmt(n.Then)
		for _, clause := range n.ElseIf {
			addExpr(clause.Condition)
			addStmt(clause.Body)
		}
		addStmt(n.Else)
	case *WhileStmt:
		addExpr(n.Condition)
		addStmt(n.Body)
	case *ForStmt:
		addStmt(n.Init)
		addExpr(n.Condition)
		addStmt(n.Update)
		addStmt(n.Body)
	case *ReturnStmt:
		addExpr(n.Value)
	case *ThrowStmt:
		addExpr(n.Value)
	case *TryStmt:
		if n.Body != nil {
			out = append(out, n.Body)
		}
		if n.Catch != nil {
			out = append(out, n.Catch)
		}
		if n.Finally != nil {
			out = append(out, n.Finally)
		}
	case *ExprStmt:
		addExpr(n.Expr)
	}
	return out
}

// Walk calls fn for node and its descendants in pre-order. Returning false
// from fn skips the node's children.
func Walk(ctx context.Context, node Node, fn func(Node) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !fn(node) {
		return nil
	}
	for _, child := range Children(node) {
		if err := Walk(ctx, child, fn); err != nil {
			return err
		}
	}
	return nil
}
