package parsec

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"unicode"
)

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func numberParsers() (Parser[string], Parser[string]) {
	digits := TakeWhile1("digit", isDigit)
	integer := NotFollowedBy(digits, Then(Rune('.'), Satisfy("digit", isDigit), func(rune, rune) struct{} { return struct{}{} }), "integer")
	double := Then(Left(digits, Rune('.')), digits, func(whole, frac string) string { return whole + "." + frac })
	return integer, double
}

func TestCursorTracksLinesAndColumns(t *testing.T) {
	c := NewCursor("ab\ncd")
	c = c.Advance(4)
	if c.Line() != 2 || c.Column() != 2 {
		t.Fatalf("expected 2:2, got %s", c)
	}
	if c.Rest() != "d" {
		t.Fatalf("unexpected rest %q", c.Rest())
	}
	end := c.Advance(100)
	if !end.AtEnd() || end.Offset() != 5 {
		t.Fatalf("advance should clamp at end, got offset %d", end.Offset())
	}
}

func TestOrRetriesFromOriginalPosition(t *testing.T) {
	integer, double := numberParsers()
	number := Or(
		Map(integer, func(s string) string { return "int:" + s }),
		Map(double, func(s string) string { return "double:" + s }),
	)

	got, err := Run(number, "123.4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != "double:123.4" {
		t.Fatalf("expected double literal, got %q", got)
	}

	got, err = Run(number, "123")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != "int:123" {
		t.Fatalf("expected integer literal, got %q", got)
	}
}

func TestOrStopsAtFatalFailure(t *testing.T) {
	tried := false
	committed := Right(String("("), Cut(String("x")))
	fallback := func(c Cursor) (string, Cursor, *Failure) {
		tried = true
		return "fallback", c.Advance(len(c.Rest())), nil
	}

	_, err := Run(Or(committed, fallback), "(y")
	if err == nil {
		t.Fatalf("expected fatal failure")
	}
	if tried {
		t.Fatalf("alternative after a fatal failure must not run")
	}
	var fail *Failure
	if !errors.As(err, &fail) || !fail.Fatal {
		t.Fatalf("expected fatal *Failure, got %T %v", err, err)
	}
	if fail.Pos.Column() != 2 {
		t.Fatalf("expected failure at column 2, got %d", fail.Pos.Column())
	}
}

func TestOrReportsFurthestFailure(t *testing.T) {
	p := Or(
		Seq(String("a"), String("b"), String("c")),
		Seq(String("a"), String("x")),
	)
	_, _, fail := p(NewCursor("abz"))
	if fail == nil {
		t.Fatalf("expected failure")
	}
	if fail.Pos.Offset() != 2 {
		t.Fatalf("expected furthest failure at offset 2, got %d", fail.Pos.Offset())
	}
	if !strings.Contains(fail.Error(), `"c"`) {
		t.Fatalf("unexpected message: %v", fail)
	}
}

func TestManyStopsOnZeroWidthMatch(t *testing.T) {
	p := Many(TakeWhile(unicode.IsSpace))
	got, next, fail := p(NewCursor("abc"))
	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	if len(got) != 0 || next.Offset() != 0 {
		t.Fatalf("expected no progress, got %v at %d", got, next.Offset())
	}
}

func TestMany1RequiresOneMatch(t *testing.T) {
	p := Many1(Rune('a'))
	if _, _, fail := p(NewCursor("b")); fail == nil {
		t.Fatalf("expected failure")
	}
	got, err := Run(p, "aaa")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
}

func TestChainLeftFoldsLeftAssociatively(t *testing.T) {
	ws := TakeWhile(unicode.IsSpace)
	num := Skip(MapErr(TakeWhile1("digit", isDigit), func(s string) (int, error) { return strconv.Atoi(s) }), ws)
	op := Skip(OneOf("-", "+"), ws)
	expr := ChainLeft(num, op, func(l int, o string, r int) int {
		if o == "-" {
			return l - r
		}
		return l + r
	})

	got, err := Run(expr, "10 - 3 - 2 + 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}

	_, err = Run(expr, "10 -")
	var fail *Failure
	if !errors.As(err, &fail) || !fail.Fatal {
		t.Fatalf("missing operand should be fatal, got %v", err)
	}
	if fail.Pos.Column() != 5 {
		t.Fatalf("expected failure at truncation point column 5, got %d", fail.Pos.Column())
	}
}

func TestLazySupportsRecursion(t *testing.T) {
	var nested Parser[int]
	nested = Or(
		Map(Between(Rune('('), Lazy(func() Parser[int] { return nested }), Rune(')')), func(depth int) int { return depth + 1 }),
		Pure(0),
	)
	got, err := Run(nested, "((()))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected depth 3, got %d", got)
	}
}

func TestSepByAndOptional(t *testing.T) {
	item := TakeWhile1("letter", unicode.IsLetter)
	list := Between(Rune('['), SepBy(item, Rune(',')), Rune(']'))

	got, err := Run(list, "[a,bc,d]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Join(got, "|") != "a|bc|d" {
		t.Fatalf("unexpected items %v", got)
	}
	empty, err := Run(list, "[]")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v %v", empty, err)
	}
	if _, err := Run(list, "[a,]"); err == nil {
		t.Fatalf("dangling separator should fail")
	}

	sign := Optional(String("-"), "+")
	got2, err := Run(Then(sign, item, func(s, w string) string { return s + w }), "x")
	if err != nil || got2 != "+x" {
		t.Fatalf("optional fallback not applied: %q %v", got2, err)
	}
}

func TestRunRejectsTrailingInput(t *testing.T) {
	_, err := Run(String("ab"), "abc")
	if err == nil {
		t.Fatalf("expected trailing input failure")
	}
	if !strings.Contains(err.Error(), "expected end of input") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLabelRenamesExpectation(t *testing.T) {
	p := Label(TakeWhile1("digit", isDigit), "number")
	_, err := Run(p, "x")
	if err == nil || !strings.Contains(err.Error(), "expected number") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFilterRejectsWithoutConsuming(t *testing.T) {
	word := TakeWhile1("letter", unicode.IsLetter)
	notIf := Filter(word, func(s string) bool { return s != "if" }, "name")
	p := Or(notIf, Map(String("if"), strings.ToUpper))

	got, err := Run(p, "if")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "IF" {
		t.Fatalf("expected keyword branch, got %q", got)
	}
	got, err = Run(p, "iffy")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "iffy" {
		t.Fatalf("expected name branch, got %q", got)
	}
}
