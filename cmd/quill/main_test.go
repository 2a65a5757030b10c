package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"quill", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"quill", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommandRunsPipedInput(t *testing.T) {
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = orig })

	withStdin(t, "var a = 20;\na + 22;")
	out, err := captureStdout(t, func() error {
		return runCLI([]string{"quill"})
	})
	if err != nil {
		t.Fatalf("runCLI failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "42" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandPrintsOutputAndResult(t *testing.T) {
	scriptPath := writeScript(t, `function greet(name) {
  return "hello " + name;
}
print("start");
greet("quill");`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "start\nhello quill\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestRunCommandOmitsUndefinedResult(t *testing.T) {
	scriptPath := writeScript(t, `var x = 1;`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestRunCommandResolvesModulesNextToScript(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "helpers.ql"), []byte("function double(n) { return n * 2; }"), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
	extra := t.TempDir()
	if err := os.WriteFile(filepath.Join(extra, "base.ql"), []byte("var base = 5;"), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
	scriptPath := filepath.Join(dir, "main.ql")
	if err := os.WriteFile(scriptPath, []byte("import helpers;\nimport base;\ndouble(base);"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-module-path", extra, scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "10" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandReportsRuntimeErrors(t *testing.T) {
	scriptPath := writeScript(t, "var x = 1;\nmissing + x;")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected runtime error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "execution failed") || !strings.Contains(msg, "UndefinedVariable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandStepLimit(t *testing.T) {
	scriptPath := writeScript(t, "while (true) {}")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{"-steps", "500", scriptPath})
	})
	if err == nil || !strings.Contains(err.Error(), "step") {
		t.Fatalf("expected step quota error, got %v", err)
	}
}

func TestRunCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "quill.yaml")
	if err := os.WriteFile(config, []byte("modules:\n  greeting: |\n    var greeting = \"from config\";\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	scriptPath := writeScript(t, "import greeting;\ngreeting;")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-config", config, scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "from config" {
		t.Fatalf("unexpected stdout: %q", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_depth: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := runCommand([]string{"-config", bad, scriptPath}); err == nil {
		t.Fatalf("expected unknown config key error")
	}
}

func TestRunCommandRequiresScriptPath(t *testing.T) {
	err := runCommand(nil)
	if err == nil {
		t.Fatalf("expected script path error")
	}
	if !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckCommandListsLoadOrder(t *testing.T) {
	dir := t.TempDir()
	modules := map[string]string{
		"a.ql":    "import b;\nprint(\"should not run\");",
		"b.ql":    "var b = 1;",
		"main.ql": "import a;\nprint(\"main\");",
	}
	for name, src := range modules {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	out, err := captureStdout(t, func() error {
		return checkCommand([]string{filepath.Join(dir, "main.ql")})
	})
	if err != nil {
		t.Fatalf("checkCommand failed: %v", err)
	}
	if out != "b\na\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestCheckCommandReportsCycles(t *testing.T) {
	dir := t.TempDir()
	for name, src := range map[string]string{"a.ql": "import b;", "b.ql": "import a;"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	scriptPath := filepath.Join(dir, "main.ql")
	if err := os.WriteFile(scriptPath, []byte("import a;"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	err := checkCommand([]string{scriptPath})
	if err == nil || !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestAnalyzeCommandNoIssues(t *testing.T) {
	scriptPath := writeScript(t, `function run() {
  var value = 1;
  return value;
}`)

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected analyze output: %q", out)
	}
}

func TestAnalyzeCommandReportsUnreachableStatements(t *testing.T) {
	scriptPath := writeScript(t, `function run() {
  return 1;
  2;
}`)

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected analyze command to report lint failures")
	}
	if !strings.Contains(err.Error(), "analysis found 1 issue(s)") {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	if !strings.Contains(out, ":3:3: unreachable statement (run)") {
		t.Fatalf("expected unreachable statement warning, got %q", out)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "", false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	if logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatalf("default level should hide info")
	}

	logger, err = newLogger(&buf, "info", true)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Fatalf("verbose should enable debug")
	}

	if _, err := newLogger(&buf, "loud", false); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestComputeModulePathsIncludesScriptDirAndDedupesExtras(t *testing.T) {
	scriptDir := t.TempDir()
	scriptPath := filepath.Join(scriptDir, "main.ql")
	extraDir := t.TempDir()

	dirs, err := computeModulePaths(scriptPath, []string{scriptDir, extraDir, extraDir})
	if err != nil {
		t.Fatalf("computeModulePaths failed: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 dirs, got %d (%v)", len(dirs), dirs)
	}

	wantScript, _ := filepath.Abs(scriptDir)
	wantExtra, _ := filepath.Abs(extraDir)
	if dirs[0] != wantScript {
		t.Fatalf("expected first dir %q, got %q", wantScript, dirs[0])
	}
	if dirs[1] != wantExtra {
		t.Fatalf("expected second dir %q, got %q", wantExtra, dirs[1])
	}
}

func TestComputeModulePathsWithoutScript(t *testing.T) {
	extraDir := t.TempDir()
	dirs, err := computeModulePaths("", []string{extraDir})
	if err != nil {
		t.Fatalf("computeModulePaths failed: %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("expected only the extra dir, got %v", dirs)
	}
}

func TestComputeModulePathsRejectsNonDirectoryExtra(t *testing.T) {
	scriptDir := t.TempDir()
	scriptPath := filepath.Join(scriptDir, "main.ql")
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := computeModulePaths(scriptPath, []string{file})
	if err == nil {
		t.Fatalf("expected non-directory module path error")
	}
	if !strings.Contains(err.Error(), "is not a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.ql")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open stdin: %v", err)
	}
	orig := os.Stdin
	os.Stdin = f
	t.Cleanup(func() {
		os.Stdin = orig
		_ = f.Close()
	})
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
