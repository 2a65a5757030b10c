package quill

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mgomes/quill/parsec"
)

var keywords = map[string]bool{
	"var": true, "function": true, "if": true, "else": true, "while": true,
	"for": true, "break": true, "continue": true, "return": true, "throw": true,
	"try": true, "catch": true, "finally": true, "import": true,
	"true": true, "false": true, "undefined": true,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string {
	return slices.Sorted(maps.Keys(keywords))
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool { return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isIdentChar(r rune) bool  { return isIdentStart(r) || isDigit(r) }
func isSpace(r rune) bool      { return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' }

func discard[T any](T) struct{} { return struct{}{} }

func positionOf(c parsec.Cursor) Position {
	return Position{Line: c.Line(), Column: c.Column(), Offset: c.Offset()}
}

// located records the cursor where p starts and hands it to build.
func located[T, R any](p parsec.Parser[T], build func(Position, T) R) parsec.Parser[R] {
	return parsec.Then(parsec.Pos(), p, func(c parsec.Cursor, v T) R {
		return build(positionOf(c), v)
	})
}

// lexer holds the token-level rules. Every token parser skips the
// whitespace and comments that follow it.
type lexer struct {
	spacing    parsec.Parser[struct{}]
	identifier parsec.Parser[string]
	number     parsec.Parser[Value]
	str        parsec.Parser[string]
}

func newLexer() *lexer {
	lx := &lexer{}

	space := parsec.Map(parsec.TakeWhile1("whitespace", isSpace), discard[string])
	lineComment := parsec.Map(
		parsec.Right(parsec.String("//"), parsec.TakeWhile(func(r rune) bool { return r != '\n' })),
		discard[string],
	)
	commentText := parsec.Or(
		parsec.Satisfy("comment text", func(r rune) bool { return r != '*' }),
		parsec.NotFollowedBy(parsec.Rune('*'), parsec.Rune('/'), "comment text"),
	)
	blockComment := parsec.Map(
		parsec.Right(parsec.String("/*"), parsec.Cut(parsec.Left(parsec.Many(commentText), parsec.Label(parsec.String("*/"), "end of comment")))),
		discard[[]rune],
	)
	lx.spacing = parsec.Map(parsec.Many(parsec.Or(space, lineComment, blockComment)), discard[[]struct{}])

	word := parsec.Then(
		parsec.Satisfy("identifier", isIdentStart),
		parsec.TakeWhile(isIdentChar),
		func(first rune, rest string) string { return string(first) + rest },
	)
	lx.identifier = lexeme(lx, parsec.Label(
		parsec.Filter(word, func(w string) bool { return !keywords[w] }, "identifier"),
		"identifier",
	))

	lx.number = lexeme(lx, parsec.Label(parsec.Or(integerLiteral(), floatLiteral()), "number"))

	lx.str = lexeme(lx, parsec.Or(quoted('"'), quoted('\'')))
	return lx
}

func lexeme[T any](lx *lexer, p parsec.Parser[T]) parsec.Parser[T] {
	return parsec.Skip(p, lx.spacing)
}

func (lx *lexer) symbol(s string) parsec.Parser[string] {
	return lexeme(lx, parsec.String(s))
}

// keyword matches kw only when it is not the prefix of a longer word.
func (lx *lexer) keyword(kw string) parsec.Parser[string] {
	return lexeme(lx, parsec.NotFollowedBy(
		parsec.String(kw),
		parsec.Satisfy("identifier character", isIdentChar),
		strconv.Quote(kw),
	))
}

func digits() parsec.Parser[string] {
	return parsec.TakeWhile1("digit", isDigit)
}

// integerLiteral refuses digits followed by '.digit' so the double rule
// gets to see them.
func integerLiteral() parsec.Parser[Value] {
	fraction := parsec.Then(parsec.Rune('.'), parsec.Satisfy("digit", isDigit), func(rune, rune) struct{} { return struct{}{} })
	return parsec.MapErr(parsec.NotFollowedBy(digits(), fraction, "integer"), func(text string) (Value, error) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("integer literal %s out of range", text)
		}
		return NewInt(n), nil
	})
}

func floatLiteral() parsec.Parser[Value] {
	exponent := parsec.Map(
		parsec.Seq(parsec.OneOf("e", "E"), parsec.Optional(parsec.OneOf("+", "-"), ""), digits()),
		func(parts []string) string { return strings.Join(parts, "") },
	)
	text := parsec.Seq(digits(), parsec.String("."), parsec.Cut(digits()), parsec.Optional(exponent, ""))
	return parsec.MapErr(text, func(parts []string) (Value, error) {
		f, err := strconv.ParseFloat(strings.Join(parts, ""), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %s", strings.Join(parts, ""))
		}
		return NewFloat(f), nil
	})
}

// quoted parses a string literal delimited by quote. After the opening
// quote the literal must be terminated on the same line.
func quoted(quote rune) parsec.Parser[string] {
	plain := parsec.Satisfy("string character", func(r rune) bool {
		return r != quote && r != '\\' && r != '\n'
	})
	escape := parsec.Right(parsec.Rune('\\'), parsec.Cut(parsec.MapErr(
		parsec.Satisfy("escape character", func(rune) bool { return true }),
		decodeEscape,
	)))
	body := parsec.Many(parsec.Or(escape, plain))
	closing := parsec.Label(parsec.Rune(quote), "closing "+strconv.QuoteRune(quote))
	return parsec.Right(parsec.Rune(quote), parsec.Cut(parsec.Left(
		parsec.Map(body, func(rs []rune) string { return string(rs) }),
		closing,
	)))
}

func decodeEscape(r rune) (rune, error) {
	switch r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return r, nil
	default:
		return 0, fmt.Errorf("unknown escape sequence \\%c", r)
	}
}
