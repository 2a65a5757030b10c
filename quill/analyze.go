package quill

import (
	"context"
	"fmt"
	"sort"
)

// Diagnostic is a problem found by Analyze without running the program.
type Diagnostic struct {
	Pos      Position
	Function string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Function)
}

type analysisScope struct {
	ctx      context.Context
	function string
	inLoop   bool
}

// analyzer reports whether each statement always leaves its block early
// (return, throw, break or continue on every path).
type analyzer struct {
	diagnostics []Diagnostic
}

// Analyze reports unreachable statements, break or continue outside a loop,
// duplicate parameters and assignments to targets that cannot be assigned.
// Diagnostics are ordered by position.
func Analyze(ctx context.Context, prog *Program) ([]Diagnostic, error) {
	a := &analyzer{}
	if _, err := a.visit(prog, analysisScope{ctx: ctx, function: "<main>"}); err != nil {
		return nil, err
	}
	sort.SliceStable(a.diagnostics, func(i, j int) bool {
		return a.diagnostics[i].Pos.Offset < a.diagnostics[j].Pos.Offset
	})
	return a.diagnostics, nil
}

func (a *analyzer) visit(node Node, s analysisScope) (bool, error) {
	return Visit[analysisScope, bool](s.ctx, node, a, s)
}

func (a *analyzer) report(pos Position, s analysisScope, format string, args ...any) {
	a.diagnostics = append(a.diagnostics, Diagnostic{Pos: pos, Function: s.function, Message: fmt.Sprintf(format, args...)})
}

func (a *analyzer) statements(stmts []Statement, s analysisScope) (bool, error) {
	terminated := false
	for _, stmt := range stmts {
		if terminated {
			a.report(stmt.Pos(), s, "unreachable statement")
			continue
		}
		t, err := a.visit(stmt, s)
		if err != nil {
			return false, err
		}
		terminated = t
	}
	return terminated, nil
}

// children visits every child of node and never terminates.
func (a *analyzer) children(node Node, s analysisScope) (bool, error) {
	for _, child := range Children(node) {
		if _, err := a.visit(child, s); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (a *analyzer) VisitProgram(p *Program, s analysisScope) (bool, error) {
	_, err := a.statements(p.Statements, s)
	return false, err
}

func (a *analyzer) VisitLiteral(*Literal, analysisScope) (bool, error)       { return false, nil }
func (a *analyzer) VisitIdentifier(*Identifier, analysisScope) (bool, error) { return false, nil }

func (a *analyzer) VisitUnary(e *UnaryExpr, s analysisScope) (bool, error)   { return a.children(e, s) }
func (a *analyzer) VisitBinary(e *BinaryExpr, s analysisScope) (bool, error) { return a.children(e, s) }
func (a *analyzer) VisitCall(e *CallExpr, s analysisScope) (bool, error)     { return a.children(e, s) }
func (a *analyzer) VisitMember(e *MemberExpr, s analysisScope) (bool, error) { return a.children(e, s) }
func (a *analyzer) VisitIndex(e *IndexExpr, s analysisScope) (bool, error)   { return a.children(e, s) }
func (a *analyzer) VisitList(e *ListLiteral, s analysisScope) (bool, error)  { return a.children(e, s) }

func (a *analyzer) VisitObject(e *ObjectLiteral, s analysisScope) (bool, error) {
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if seen[f.Key] {
			a.report(e.position, s, "duplicate field %q in object literal", f.Key)
		}
		seen[f.Key] = true
	}
	return a.children(e, s)
}

func (a *analyzer) VisitFunction(e *FunctionLiteral, s analysisScope) (bool, error) {
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	inner := analysisScope{ctx: s.ctx, function: name}
	seen := make(map[string]bool, len(e.Params))
	for _, p := range e.Params {
		if seen[p] {
			a.report(e.position, inner, "duplicate parameter %s", p)
		}
		seen[p] = true
	}
	_, err := a.statements(e.Body.Statements, inner)
	return false, err
}

func (a *analyzer) VisitBlock(b *BlockStmt, s analysisScope) (bool, error) {
	return a.statements(b.Statements, s)
}

func (a *analyzer) VisitVar(v *VarStmt, s analysisScope) (bool, error) {
	return a.children(v, s)
}

func (a *analyzer) VisitAssign(as *AssignStmt, s analysisScope) (bool, error) {
	switch as.Target.(type) {
	case *Identifier, *MemberExpr, *IndexExpr:
	default:
		a.report(as.position, s, "cannot assign to %s", describeTarget(as.Target))
	}
	return a.children(as, s)
}

func (a *analyzer) VisitIf(st *IfStmt, s analysisScope) (bool, error) {
	if _, err := a.visit(st.Condition, s); err != nil {
		return false, err
	}
	all, err := a.visit(st.Then, s)
	if err != nil {
		return false, err
	}
	for _, clause := range st.ElseIf {
		if _, err := a.visit(clause.Condition, s); err != nil {
			return false, err
		}
		t, err := a.visit(clause.Body, s)
		if err != nil {
			return false, err
		}
		all = all && t
	}
	if st.Else == nil {
		return false, nil
	}
	t, err := a.visit(st.Else, s)
	if err != nil {
		return false, err
	}
	return all && t, nil
}

func (a *analyzer) VisitWhile(st *WhileStmt, s analysisScope) (bool, error) {
	if _, err := a.visit(st.Condition, s); err != nil {
		return false, err
	}
	body := s
	body.inLoop = true
	_, err := a.visit(st.Body, body)
	return false, err
}

func (a *analyzer) VisitFor(st *ForStmt, s analysisScope) (bool, error) {
	var header []Node
	if st.Init != nil {
		header = append(header, st.Init)
	}
	if st.Condition != nil {
		header = append(header, st.Condition)
	}
	if st.Update != nil {
		header = append(header, st.Update)
	}
	for _, n := range header {
		if _, err := a.visit(n, s); err != nil {
			return false, err
		}
	}
	body := s
	body.inLoop = true
	_, err := a.visit(st.Body, body)
	return false, err
}

func (a *analyzer) VisitBreak(b *BreakStmt, s analysisScope) (bool, error) {
	if !s.inLoop {
		a.report(b.position, s, "break outside of a loop")
	}
	return true, nil
}

func (a *analyzer) VisitContinue(c *ContinueStmt, s analysisScope) (bool, error) {
	if !s.inLoop {
		a.report(c.position, s, "continue outside of a loop")
	}
	return true, nil
}

func (a *analyzer) VisitReturn(r *ReturnStmt, s analysisScope) (bool, error) {
	_, err := a.children(r, s)
	return true, err
}

func (a *analyzer) VisitThrow(t *ThrowStmt, s analysisScope) (bool, error) {
	_, err := a.children(t, s)
	return true, err
}

func (a *analyzer) VisitTry(t *TryStmt, s analysisScope) (bool, error) {
	body, err := a.visit(t.Body, s)
	if err != nil {
		return false, err
	}
	handled := body
	if t.Catch != nil {
		caught, err := a.statements(t.Catch.Statements, s)
		if err != nil {
			return false, err
		}
		handled = body && caught
	}
	if t.Finally != nil {
		final, err := a.visit(t.Finally, s)
		if err != nil {
			return false, err
		}
		return handled || final, nil
	}
	return handled, nil
}

func (a *analyzer) VisitExprStmt(e *ExprStmt, s analysisScope) (bool, error) {
	return a.children(e, s)
}
