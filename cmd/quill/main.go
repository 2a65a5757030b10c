package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mgomes/quill/quill"
	"golang.org/x/term"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stdinIsTerminal is swapped out by tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func runCLI(args []string) error {
	if len(args) < 2 {
		if stdinIsTerminal() {
			return replCommand(nil)
		}
		return runStdin()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "lsp":
		return lspCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

// engineFlags are shared by every subcommand that builds an engine.
type engineFlags struct {
	config      string
	modulePaths pathList
	maxDepth    int
	steps       int
	verbose     bool
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "load engine settings from a YAML file")
	fs.Var(&f.modulePaths, "module-path", "add a module search directory (repeatable)")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "evaluation depth per stack segment (negative disables the guard)")
	fs.IntVar(&f.steps, "steps", 0, "abort after this many evaluation steps")
	fs.BoolVar(&f.verbose, "v", false, "log resolver and engine activity to stderr")
}

// newEngine builds an engine whose module search starts at the script's
// directory. An empty scriptPath searches only the configured paths.
func (f *engineFlags) newEngine(scriptPath string, out io.Writer) (*quill.Engine, error) {
	var cfg quill.Config
	level := ""
	if f.config != "" {
		fc, err := quill.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
		if cfg, err = fc.EngineConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		level = fc.Log.Level
	}
	dirs, err := computeModulePaths(scriptPath, f.modulePaths)
	if err != nil {
		return nil, err
	}
	cfg.ModulePaths = append(dirs, cfg.ModulePaths...)
	if f.maxDepth != 0 {
		cfg.MaxEvalDepth = f.maxDepth
	}
	if f.steps != 0 {
		cfg.StepQuota = f.steps
	}
	logger, err := newLogger(os.Stderr, level, f.verbose)
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger
	cfg.Output = out

	engine, err := quill.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("engine ready", "config", engine.ConfigSummary())
	return engine, nil
}

func newLogger(w io.Writer, level string, verbose bool) (*slog.Logger, error) {
	lvl := slog.LevelWarn
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("config: log level: %w", err)
		}
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("quill run: script path required")
	}
	scriptPath, input, err := readScript(remaining[0])
	if err != nil {
		return err
	}
	engine, err := ef.newEngine(scriptPath, os.Stdout)
	if err != nil {
		return err
	}
	return execute(engine, input)
}

func runStdin() error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var ef engineFlags
	engine, err := ef.newEngine("", os.Stdout)
	if err != nil {
		return err
	}
	return execute(engine, string(input))
}

func execute(engine *quill.Engine, source string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	result, err := engine.Run(ctx, source)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if !result.Value.IsUndefined() {
		fmt.Println(result.Value.String())
	}
	return nil
}

func checkCommand(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("quill check: script path required")
	}
	scriptPath, input, err := readScript(remaining[0])
	if err != nil {
		return err
	}
	engine, err := ef.newEngine(scriptPath, os.Stdout)
	if err != nil {
		return err
	}
	order, err := engine.Resolve(input)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	for _, name := range order {
		fmt.Println(name)
	}
	return nil
}

func readScript(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return abs, string(input), nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [script]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run      run a script and print its final value")
	fmt.Fprintln(os.Stderr, "  check    parse a script and resolve its imports")
	fmt.Fprintln(os.Stderr, "  analyze  report unreachable code and misplaced control flow")
	fmt.Fprintln(os.Stderr, "  repl     start an interactive session")
	fmt.Fprintln(os.Stderr, "  fmt      normalize whitespace in .ql files (-w, -check)")
	fmt.Fprintln(os.Stderr, "  lsp      serve diagnostics over the language server protocol")
	fmt.Fprintln(os.Stderr, "With no command, a terminal starts the REPL and piped input is run.")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -config <file>")
	fmt.Fprintln(os.Stderr, "    load limits, module paths and git sources from YAML")
	fmt.Fprintln(os.Stderr, "  -module-path <dir>")
	fmt.Fprintln(os.Stderr, "    add a directory to module search paths (repeatable)")
	fmt.Fprintln(os.Stderr, "  -max-depth int")
	fmt.Fprintln(os.Stderr, "    evaluation depth per stack segment")
	fmt.Fprintln(os.Stderr, "  -steps int")
	fmt.Fprintln(os.Stderr, "    abort after this many evaluation steps")
	fmt.Fprintln(os.Stderr, "  -v")
	fmt.Fprintln(os.Stderr, "    debug logging on stderr")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

type pathList []string

func (l *pathList) String() string {
	return strings.Join(*l, string(os.PathListSeparator))
}

func (l *pathList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func computeModulePaths(scriptPath string, extras []string) ([]string, error) {
	seen := make(map[string]struct{})
	var dirs []string
	addPath := func(label, p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", label, p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("access %s %q: %w", label, abs, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s %q is not a directory", label, abs)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		dirs = append(dirs, abs)
		return nil
	}
	if scriptPath != "" {
		if err := addPath("script directory", filepath.Dir(scriptPath)); err != nil {
			return nil, err
		}
	}
	for _, extra := range extras {
		if err := addPath("module path", extra); err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
