package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/mgomes/quill/quill"
)

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("quill analyze: script path required")
	}

	scriptPath, input, err := readScript(remaining[0])
	if err != nil {
		return err
	}

	prog, err := quill.Parse(input)
	if err != nil {
		return fmt.Errorf("analysis parse failed: %w", err)
	}

	diagnostics, err := quill.Analyze(context.Background(), prog)
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, d := range diagnostics {
		line := d.Pos.Line
		column := d.Pos.Column
		if line <= 0 {
			line = 1
		}
		if column <= 0 {
			column = 1
		}
		fmt.Printf("%s:%d:%d: %s (%s)\n", scriptPath, line, column, d.Message, d.Function)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(diagnostics))
}
