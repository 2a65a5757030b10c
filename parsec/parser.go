// Package parsec is a small parser-combinator library over a position-tracked
// cursor. A Parser either yields a value and the cursor after it, or a
// Failure. Failures come in two strengths: recoverable failures let
// alternation try the next branch from the original position, fatal failures
// abort alternation and surface directly to the caller.
//
//	digits := parsec.TakeWhile1("digit", unicode.IsDigit)
//	sum := parsec.ChainLeft(number, parsec.String("+"), add)
//	value, err := parsec.Run(sum, "1+2+3")
package parsec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser consumes input starting at a cursor.
type Parser[T any] func(Cursor) (T, Cursor, *Failure)

// Failure describes why a parser did not match.
type Failure struct {
	Pos      Cursor
	Expected []string
	Message  string
	Fatal    bool
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%d:%d: %s", f.Pos.Line(), f.Pos.Column(), f.Reason())
}

// Reason is the failure text without the position prefix.
func (f *Failure) Reason() string {
	if f.Message != "" {
		return f.Message
	}
	found := "end of input"
	if r, ok := f.Pos.Peek(); ok {
		found = strconv.QuoteRune(r)
	}
	if len(f.Expected) == 0 {
		return "unexpected " + found
	}
	return fmt.Sprintf("expected %s, found %s", strings.Join(f.Expected, " or "), found)
}

// Expected builds a recoverable failure at pos.
func Expected(pos Cursor, labels ...string) *Failure {
	return &Failure{Pos: pos, Expected: labels}
}

// Fatalf builds a fatal failure at pos.
func Fatalf(pos Cursor, format string, args ...any) *Failure {
	return &Failure{Pos: pos, Message: fmt.Sprintf(format, args...), Fatal: true}
}

// furthest picks the failure that got deepest into the input, merging
// expectations when both stopped at the same offset.
func furthest(a, b *Failure) *Failure {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Pos.Offset() > a.Pos.Offset():
		return b
	case a.Pos.Offset() > b.Pos.Offset():
		return a
	}
	if a.Message != "" || b.Message != "" {
		return a
	}
	merged := &Failure{Pos: a.Pos, Expected: append([]string(nil), a.Expected...)}
	for _, label := range b.Expected {
		if !containsLabel(merged.Expected, label) {
			merged.Expected = append(merged.Expected, label)
		}
	}
	return merged
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// String matches lit exactly.
func String(lit string) Parser[string] {
	label := strconv.Quote(lit)
	return func(c Cursor) (string, Cursor, *Failure) {
		if strings.HasPrefix(c.Rest(), lit) {
			return lit, c.Advance(len(lit)), nil
		}
		return "", c, Expected(c, label)
	}
}

// Rune matches a single rune.
func Rune(r rune) Parser[rune] {
	return Satisfy(strconv.QuoteRune(r), func(got rune) bool { return got == r })
}

// Satisfy matches one rune accepted by pred.
func Satisfy(label string, pred func(rune) bool) Parser[rune] {
	return func(c Cursor) (rune, Cursor, *Failure) {
		r, ok := c.Peek()
		if !ok || !pred(r) {
			return 0, c, Expected(c, label)
		}
		return r, c.Advance(utf8.RuneLen(r)), nil
	}
}

// TakeWhile consumes the longest (possibly empty) run of runes accepted by pred.
func TakeWhile(pred func(rune) bool) Parser[string] {
	return func(c Cursor) (string, Cursor, *Failure) {
		rest := c.Rest()
		n := 0
		for n < len(rest) {
			r, w := utf8.DecodeRuneInString(rest[n:])
			if !pred(r) {
				break
			}
			n += w
		}
		return rest[:n], c.Advance(n), nil
	}
}

// TakeWhile1 is TakeWhile requiring at least one rune.
func TakeWhile1(label string, pred func(rune) bool) Parser[string] {
	inner := TakeWhile(pred)
	return func(c Cursor) (string, Cursor, *Failure) {
		s, next, _ := inner(c)
		if s == "" {
			return "", c, Expected(c, label)
		}
		return s, next, nil
	}
}

// EOF succeeds only at the end of input.
func EOF() Parser[struct{}] {
	return func(c Cursor) (struct{}, Cursor, *Failure) {
		if c.AtEnd() {
			return struct{}{}, c, nil
		}
		return struct{}{}, c, Expected(c, "end of input")
	}
}

// Pos yields the current cursor without consuming input.
func Pos() Parser[Cursor] {
	return func(c Cursor) (Cursor, Cursor, *Failure) {
		return c, c, nil
	}
}

// Pure succeeds with v without consuming input.
func Pure[T any](v T) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		return v, c, nil
	}
}

// Run applies p to src and requires the whole input to be consumed.
func Run[T any](p Parser[T], src string) (T, error) {
	v, next, fail := p(NewCursor(src))
	if fail != nil {
		var zero T
		return zero, fail
	}
	if !next.AtEnd() {
		var zero T
		return zero, Expected(next, "end of input")
	}
	return v, nil
}
