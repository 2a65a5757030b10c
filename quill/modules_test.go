package quill

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/google/go-cmp/cmp"
)

func TestModulesRunInDependencyOrder(t *testing.T) {
	engine, out := newTestEngine(t, Config{Sources: []Source{MapSource{
		"A": "import B;\nprint(\"A\");\nvar a = b + 1;",
		"B": "import C;\nprint(\"B\");\nvar b = c + 1;",
		"C": "print(\"C\");\nvar c = 1;",
	}}})
	res, err := engine.Run(t.Context(), "import A;\nprint(\"main\");\na;")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "B", "A"}, res.LoadOrder); diff != "" {
		t.Fatalf("unexpected load order (-want +got):\n%s", diff)
	}
	if got := out.String(); got != "C\nB\nA\nmain\n" {
		t.Fatalf("each module should run once in order, got %q", got)
	}
	if res.Value.Int() != 3 {
		t.Fatalf("unexpected value %v", res.Value)
	}
}

func TestSharedModuleRunsOnce(t *testing.T) {
	engine, out := newTestEngine(t, Config{Sources: []Source{MapSource{
		"A":      "import shared;\nprint(\"A\");",
		"B":      "import shared;\nprint(\"B\");",
		"shared": "print(\"shared\");",
	}}})
	res, err := engine.Run(t.Context(), "import A;\nimport B;")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"shared", "A", "B"}, res.LoadOrder); diff != "" {
		t.Fatalf("unexpected load order (-want +got):\n%s", diff)
	}
	if got := out.String(); got != "shared\nA\nB\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCircularImportsAreRejected(t *testing.T) {
	engine, out := newTestEngine(t, Config{Sources: []Source{MapSource{
		"A": "import B;\nprint(\"A\");",
		"B": "import A;\nprint(\"B\");",
	}}})
	_, err := engine.Run(t.Context(), "import A;")
	var cycle *CircularDependencyError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CircularDependencyError, got %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, cycle.Cycle); diff != "" {
		t.Fatalf("unexpected cycle (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "A -> B -> A") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if out.Len() != 0 {
		t.Fatalf("no module may run when the graph has a cycle, got %q", out.String())
	}
}

func TestSelfImportIsACycle(t *testing.T) {
	engine, _ := newTestEngine(t, Config{Sources: []Source{MapSource{"loop": "import loop;"}}})
	_, err := engine.Run(t.Context(), "import loop;")
	var cycle *CircularDependencyError
	if !errors.As(err, &cycle) || strings.Join(cycle.Cycle, ",") != "loop,loop" {
		t.Fatalf("expected self cycle, got %v", err)
	}
}

func TestUnresolvedImport(t *testing.T) {
	engine, _ := newTestEngine(t, Config{Sources: []Source{MapSource{"A": "import nope;"}}})
	_, err := engine.Run(t.Context(), "import A;")
	var unresolved *UnresolvedImportError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedImportError, got %v", err)
	}
	if unresolved.Name != "nope" || unresolved.ImportedBy != "A" {
		t.Fatalf("unexpected error %#v", unresolved)
	}
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected error to wrap ErrModuleNotFound")
	}
}

func TestResolveDoesNotRun(t *testing.T) {
	engine, out := newTestEngine(t, Config{Sources: []Source{MapSource{
		"A": "import B;\nprint(\"A\");",
		"B": "print(\"B\");",
	}}})
	order, err := engine.Resolve("import A;\nprint(\"main\");")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "A"}, order); diff != "" {
		t.Fatalf("unexpected load order (-want +got):\n%s", diff)
	}
	if out.Len() != 0 {
		t.Fatalf("resolve must not run modules, got %q", out.String())
	}
}

func TestInvalidModuleNames(t *testing.T) {
	for _, name := range []string{"../escape", "/abs", "a/../.."} {
		if _, err := normalizeModuleName(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if got, err := normalizeModuleName("lib/./util.ql"); err != nil || got != "lib/util" {
		t.Fatalf("unexpected normalized name %q, %v", got, err)
	}

	engine, _ := newTestEngine(t, Config{})
	if _, err := engine.Run(t.Context(), "import ../escape;"); err == nil || !strings.Contains(err.Error(), "escapes") {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestModuleErrorsNameTheModule(t *testing.T) {
	engine, _ := newTestEngine(t, Config{Sources: []Source{MapSource{
		"broken": "var x = ;",
		"faulty": "function explode() {\n  return [][0];\n}",
	}}})

	_, err := engine.Run(t.Context(), "import broken;")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Module != "broken" {
		t.Fatalf("expected syntax error in broken, got %v", err)
	}

	_, err = engine.Run(t.Context(), "import faulty;\nexplode();")
	var rt *RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rt.Module != "faulty" || rt.Pos.Line != 2 {
		t.Fatalf("expected error at faulty:2, got %s:%s", rt.Module, rt.Pos)
	}
	if !strings.Contains(rt.CodeFrame, "return [][0];") {
		t.Fatalf("code frame should show the module source, got %q", rt.CodeFrame)
	}
	if len(rt.Frames) != 2 || rt.Frames[1].Function != "<main>" || rt.Frames[1].Module != "" {
		t.Fatalf("unexpected frames %#v", rt.Frames)
	}
}

func TestDirSourceAndSourcePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "greeting", `var who = "dir";`)
	writeModule(t, dir, "util/strings", `function shout(s) { return s + "!"; }`)

	engine, _ := newTestEngine(t, Config{
		Sources:     []Source{MapSource{"greeting": `var who = "map";`}},
		ModulePaths: []string{dir},
	})
	res, err := engine.Run(t.Context(), "import greeting;\nimport util/strings;\nshout(who);")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := res.Value.String(); got != "map!" {
		t.Fatalf("first source should win, got %q", got)
	}
}

func TestSessionLoadsModulesOnce(t *testing.T) {
	engine, out := newTestEngine(t, Config{Sources: []Source{MapSource{
		"counter": "print(\"loading\");\nvar count = 0;",
	}}})
	session := engine.NewSession()
	if _, err := session.Run(t.Context(), "import counter;\ncount = count + 1;"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	res, err := session.Run(t.Context(), "import counter;\ncount = count + 1;\ncount;")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res.Value.Int() != 2 {
		t.Fatalf("module state should persist, got %v", res.Value)
	}
	if len(res.LoadOrder) != 0 {
		t.Fatalf("already loaded module reloaded: %v", res.LoadOrder)
	}
	if got := out.String(); got != "loading\n" {
		t.Fatalf("module should run once per session, got %q", got)
	}
}

func TestGitSourceReadsPinnedCommit(t *testing.T) {
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	first := commitFile(t, repo, fs, "lib/version.ql", "var version = 1;")
	commitFile(t, repo, fs, "lib/version.ql", "var version = 2;")

	head, err := NewGitSource(repo, "", "lib")
	if err != nil {
		t.Fatalf("open head: %v", err)
	}
	if src, err := head.Load("version"); err != nil || src != "var version = 2;" {
		t.Fatalf("unexpected head source %q, %v", src, err)
	}

	pinned, err := NewGitSource(repo, first.String(), "/lib/")
	if err != nil {
		t.Fatalf("open pinned: %v", err)
	}
	if pinned.Commit() != first.String() {
		t.Fatalf("expected pin %s, got %s", first, pinned.Commit())
	}
	engine, _ := newTestEngine(t, Config{Sources: []Source{pinned}})
	res, err := engine.Run(t.Context(), "import version;\nversion;")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Value.Int() != 1 {
		t.Fatalf("expected pinned version 1, got %v", res.Value)
	}

	if _, err := pinned.Load("missing"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
	if _, err := NewGitSource(repo, "no-such-branch", ""); err == nil {
		t.Fatalf("expected unknown revision error")
	}
}

func TestOpenGitSourceOnDisk(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	writeModule(t, dir, "mods/math", "function square(n) { return n * n; }")
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("mods/math.ql"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := wt.Commit("init", &git.CommitOptions{Author: testSignature()}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	src, err := OpenGitSource(filepath.Join(dir, "mods"), "HEAD", "mods")
	if err != nil {
		t.Fatalf("open git source: %v", err)
	}
	engine, _ := newTestEngine(t, Config{Sources: []Source{src}})
	res, err := engine.Run(t.Context(), "import math;\nsquare(7);")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Value.Int() != 49 {
		t.Fatalf("unexpected value %v", res.Value)
	}
}

func writeModule(t *testing.T, dir, name, source string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name)+ModuleExt)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
}

func commitFile(t *testing.T, repo *git.Repository, fs billy.Filesystem, name, contents string) plumbing.Hash {
	t.Helper()
	if err := util.WriteFile(fs, name, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	hash, err := wt.Commit("update "+name, &git.CommitOptions{Author: testSignature()})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func testSignature() *object.Signature {
	return &object.Signature{Name: "Quill Tests", Email: "tests@example.com", When: time.Now()}
}
