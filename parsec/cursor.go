package parsec

import (
	"fmt"
	"unicode/utf8"
)

// Cursor is an immutable position in source text. Advancing returns a new
// Cursor; the receiver is never modified.
type Cursor struct {
	src    string
	offset int
	line   int
	column int
}

// NewCursor returns a cursor at the start of src (line 1, column 1).
func NewCursor(src string) Cursor {
	return Cursor{src: src, line: 1, column: 1}
}

func (c Cursor) Offset() int { return c.offset }
func (c Cursor) Line() int   { return c.line }
func (c Cursor) Column() int { return c.column }

// Source returns the full text the cursor walks over.
func (c Cursor) Source() string { return c.src }

// Rest returns the unconsumed input.
func (c Cursor) Rest() string { return c.src[c.offset:] }

func (c Cursor) AtEnd() bool { return c.offset >= len(c.src) }

// Peek decodes the next rune without consuming it.
func (c Cursor) Peek() (rune, bool) {
	if c.AtEnd() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.src[c.offset:])
	return r, true
}

// Advance consumes n bytes, tracking line and column. n is clamped to the
// remaining input.
func (c Cursor) Advance(n int) Cursor {
	end := c.offset + n
	if end > len(c.src) {
		end = len(c.src)
	}
	for c.offset < end {
		r, w := utf8.DecodeRuneInString(c.src[c.offset:])
		c.offset += w
		if r == '\n' {
			c.line++
			c.column = 1
		} else {
			c.column++
		}
	}
	return c
}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.line, c.column)
}
