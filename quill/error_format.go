package quill

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	traceHead = 8
	traceTail = 8
)

func (re *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", re.Kind, re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	if len(re.Frames) <= traceHead+traceTail {
		for _, frame := range re.Frames {
			writeFrame(&b, frame)
		}
		return b.String()
	}
	for _, frame := range re.Frames[:traceHead] {
		writeFrame(&b, frame)
	}
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", len(re.Frames)-traceHead-traceTail)
	for _, frame := range re.Frames[len(re.Frames)-traceTail:] {
		writeFrame(&b, frame)
	}
	return b.String()
}

func writeFrame(b *strings.Builder, frame StackFrame) {
	b.WriteString("\n  at ")
	b.WriteString(frame.Function)
	switch {
	case frame.Module != "" && frame.Pos.Line > 0:
		fmt.Fprintf(b, " (%s:%s)", frame.Module, frame.Pos)
	case frame.Pos.Line > 0:
		fmt.Fprintf(b, " (%s)", frame.Pos)
	case frame.Module != "":
		fmt.Fprintf(b, " (%s)", frame.Module)
	}
}

// formatCodeFrame renders the source line at pos with a caret under the
// column. It returns "" when pos is outside source.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[pos.Line-1], "\r")
	width := len([]rune(text))
	column := min(max(pos.Column, 1), width+1)

	label := strconv.Itoa(pos.Line)
	gutter := strings.Repeat(" ", len(label))
	var b strings.Builder
	fmt.Fprintf(&b, "  --> line %d, column %d\n", pos.Line, column)
	fmt.Fprintf(&b, " %s |\n", gutter)
	fmt.Fprintf(&b, " %s | %s\n", label, text)
	fmt.Fprintf(&b, " %s | %s^", gutter, strings.Repeat(" ", column-1))
	return b.String()
}
