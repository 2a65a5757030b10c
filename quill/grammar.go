package quill

import (
	"errors"
	"sync"

	"github.com/mgomes/quill/parsec"
)

// grammar is the full language grammar expressed with parsec combinators.
// It holds no per-parse state, so one instance serves every parse.
type grammar struct {
	lx         *lexer
	expression parsec.Parser[Expression]
	statement  parsec.Parser[Statement]
	block      parsec.Parser[*BlockStmt]
	program    parsec.Parser[*Program]
}

var (
	grammarOnce   sync.Once
	sharedGrammar *grammar
)

func languageGrammar() *grammar {
	grammarOnce.Do(func() {
		g := &grammar{lx: newLexer()}
		g.buildExpressions()
		g.buildStatements()
		sharedGrammar = g
	})
	return sharedGrammar
}

// Parse parses a complete program. Failures are reported as *SyntaxError.
func Parse(source string) (*Program, error) {
	return parseModule("", source)
}

// ParseExpression parses a single expression.
func ParseExpression(source string) (Expression, error) {
	g := languageGrammar()
	p := parsec.Right(g.lx.spacing, g.expression)
	expr, err := parsec.Run(p, source)
	if err != nil {
		return nil, syntaxErrorFrom("", source, err)
	}
	return expr, nil
}

func parseModule(module, source string) (*Program, error) {
	prog, err := parsec.Run(languageGrammar().program, source)
	if err != nil {
		return nil, syntaxErrorFrom(module, source, err)
	}
	return prog, nil
}

func syntaxErrorFrom(module, source string, err error) error {
	var fail *parsec.Failure
	if !errors.As(err, &fail) {
		return err
	}
	pos := positionOf(fail.Pos)
	return &SyntaxError{
		Module:    module,
		Pos:       pos,
		Message:   fail.Reason(),
		CodeFrame: formatCodeFrame(source, pos),
	}
}
