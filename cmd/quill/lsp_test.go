package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/mgomes/quill/quill"
)

func newTestLSP() *lspServer {
	return &lspServer{
		engine: quill.MustNewEngine(quill.Config{}),
		docs:   make(map[string]string),
	}
}

func frame(t *testing.T, msg map[string]any) string {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
}

func TestRunLSPExitsOnEOF(t *testing.T) {
	var out bytes.Buffer
	if err := runLSP(strings.NewReader(""), &out); err != nil {
		t.Fatalf("runLSP failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunLSPRoundTrip(t *testing.T) {
	input := frame(t, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize"}) +
		frame(t, map[string]any{"jsonrpc": "2.0", "id": 2, "method": "shutdown"}) +
		frame(t, map[string]any{"jsonrpc": "2.0", "method": "exit"})
	var out bytes.Buffer
	if err := runLSP(strings.NewReader(input), &out); err != nil {
		t.Fatalf("runLSP failed: %v", err)
	}
	if got := strings.Count(out.String(), "Content-Length:"); got != 2 {
		t.Fatalf("expected two responses, got %d in %q", got, out.String())
	}
	if !strings.Contains(out.String(), `"hoverProvider":true`) {
		t.Fatalf("missing capabilities in %q", out.String())
	}
}

func TestDiagnosticsForSourceWithoutErrors(t *testing.T) {
	diags := diagnosticsForSource("function run() {\n  return 1;\n}\n")
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestDiagnosticsForSourceWithParseError(t *testing.T) {
	diags := diagnosticsForSource("var a = 1;\nvar b = (2 *")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	first := diags[0]
	if first["severity"] != severityError {
		t.Fatalf("expected severity 1, got %#v", first["severity"])
	}
	start := first["range"].(map[string]any)["start"].(map[string]any)
	if start["line"] != 1 || start["character"] != 12 {
		t.Fatalf("unexpected start %#v", start)
	}
	message, ok := first["message"].(string)
	if !ok || !strings.Contains(message, "end of input") {
		t.Fatalf("unexpected diagnostic message %#v", first["message"])
	}
}

func TestDiagnosticsForSourceIncludesAnalyzerWarnings(t *testing.T) {
	diags := diagnosticsForSource("function run() {\n  return 1;\n  2;\n}\nbreak;")
	if len(diags) != 2 {
		t.Fatalf("expected two warnings, got %v", diags)
	}
	for _, d := range diags {
		if d["severity"] != severityWarning {
			t.Fatalf("expected warning severity, got %#v", d["severity"])
		}
	}
	if msg := diags[0]["message"].(string); msg != "unreachable statement (run)" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCompletionItemsAreSortedAndCategorized(t *testing.T) {
	items := completionItems(quill.MustNewEngine(quill.Config{}))
	if len(items) == 0 {
		t.Fatalf("expected completion items")
	}

	labels := make([]string, 0, len(items))
	for _, item := range items {
		label, ok := item["label"].(string)
		if !ok {
			t.Fatalf("unexpected completion label: %#v", item["label"])
		}
		labels = append(labels, label)
	}
	if !slices.IsSorted(labels) {
		t.Fatalf("expected sorted completion labels, got %v", labels)
	}

	keyword := findCompletionItem(t, items, "while")
	if keyword["detail"] != "keyword" || keyword["kind"] != completionKeyword {
		t.Fatalf("unexpected keyword item %#v", keyword)
	}

	builtin := findCompletionItem(t, items, "assert")
	if builtin["detail"] != "builtin" || builtin["kind"] != completionFunction {
		t.Fatalf("unexpected builtin item %#v", builtin)
	}

	findCompletionItem(t, items, "Reflect")
}

func TestHandleMessageDidOpenPublishesDiagnostics(t *testing.T) {
	server := newTestLSP()
	payload, err := json.Marshal(map[string]any{
		"textDocument": map[string]any{
			"uri":  "file:///tmp/test.ql",
			"text": "var a = ;",
		},
	})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	messages := server.handleMessage(lspInboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/didOpen",
		Params:  payload,
	})
	if len(messages) != 1 {
		t.Fatalf("expected one publishDiagnostics notification, got %d", len(messages))
	}
	if messages[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("unexpected method: %q", messages[0].Method)
	}
	paramsMap, ok := messages[0].Params.(map[string]any)
	if !ok {
		t.Fatalf("unexpected params payload: %#v", messages[0].Params)
	}
	diags, ok := paramsMap["diagnostics"].([]map[string]any)
	if !ok || len(diags) == 0 {
		t.Fatalf("expected diagnostics for invalid source, got %#v", paramsMap["diagnostics"])
	}
	if server.docs["file:///tmp/test.ql"] != "var a = ;" {
		t.Fatalf("document not tracked")
	}
}

func TestHandleMessageHoverClassifiesBuiltins(t *testing.T) {
	server := newTestLSP()
	server.docs["file:///tmp/test.ql"] = "function run() {\n  assert(true);\n}\n"
	payload, err := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///tmp/test.ql"},
		"position":     map[string]any{"line": 1, "character": 3},
	})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	messages := server.handleMessage(lspInboundMessage{
		JSONRPC: "2.0",
		ID:      rawID("1"),
		Method:  "textDocument/hover",
		Params:  payload,
	})
	if len(messages) != 1 {
		t.Fatalf("expected one response, got %d", len(messages))
	}
	result, ok := messages[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected hover result: %#v", messages[0].Result)
	}
	value := result["contents"].(map[string]any)["value"].(string)
	if !strings.Contains(value, "`assert`") || !strings.Contains(value, "Quill builtin") {
		t.Fatalf("expected builtin classification in hover value, got %q", value)
	}
}

func TestHandleMessageUnknownRequest(t *testing.T) {
	messages := newTestLSP().handleMessage(lspInboundMessage{
		JSONRPC: "2.0",
		ID:      rawID("7"),
		Method:  "textDocument/rename",
	})
	if len(messages) != 1 || messages[0].Error == nil || messages[0].Error.Code != -32601 {
		t.Fatalf("expected method not found, got %#v", messages)
	}
}

func TestWordAtPosition(t *testing.T) {
	source := "function run() {\n  print(\"1\");\n}\n"
	if word := wordAtPosition(source, 1, 4); word != "print" {
		t.Fatalf("expected print, got %q", word)
	}
	if word := wordAtPosition(source, 1, 7); word != "print" {
		t.Fatalf("expected word before cursor, got %q", word)
	}
	if word := wordAtPosition(source, 5, 0); word != "" {
		t.Fatalf("expected no word past the end, got %q", word)
	}
}

func TestWordAtPositionUsesUTF16CharacterOffsets(t *testing.T) {
	source := "😀😀x y\n"
	word := wordAtPosition(source, 0, 4)
	if word != "x" {
		t.Fatalf("expected x, got %q", word)
	}
}

func rawID(value string) *json.RawMessage {
	raw := json.RawMessage(value)
	return &raw
}

func findCompletionItem(t *testing.T, items []map[string]any, label string) map[string]any {
	t.Helper()
	for _, item := range items {
		itemLabel, ok := item["label"].(string)
		if ok && itemLabel == label {
			return item
		}
	}
	t.Fatalf("missing completion item %q", label)
	return nil
}
