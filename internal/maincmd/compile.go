package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/spyre-lang/spyre/lang/compiler"
	"github.com/spyre-lang/spyre/lang/parser"
	"github.com/spyre-lang/spyre/lang/scanner"
)

// IOError wraps a failure to open, read or write one of the two files a
// compile touches, distinct from the structured lexer/parser/generator
// errors so callers can tell a file system problem apart from a program in
// the source being compiled. Op names which side of the pipeline failed
// ("input" or "output") so the printed message names the right file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	verb := "reading"
	if e.Op == "output" {
		verb = "writing"
	}
	return fmt.Sprintf("couldn't open %s file '%s' for %s", e.Op, e.Path, verb)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFile(ctx, stdio, args[0], args[1])
}

// CompileFile runs the full pipeline, first-failure-fatal: scan, then
// parse, then generate. Any error from an earlier phase skips the later
// ones; the output file is only created once scanning and parsing have
// succeeded, so a lex or parse error never touches it, while a generation
// error can leave it empty or partially written.
func CompileFile(ctx context.Context, stdio mainer.Stdio, input, output string) error {
	if err := ctx.Err(); err != nil {
		return printError(stdio, err)
	}

	src, err := os.ReadFile(input)
	if err != nil {
		return printError(stdio, &IOError{Op: "input", Path: input, Err: err})
	}

	toks, err := scanner.Tokenize(src)
	if err != nil {
		return printError(stdio, err)
	}

	res, err := parser.Parse(toks)
	if err != nil {
		return printError(stdio, err)
	}

	f, err := os.Create(output)
	if err != nil {
		return printError(stdio, &IOError{Op: "output", Path: output, Err: err})
	}
	defer f.Close()

	if err := compiler.Generate(res, f); err != nil {
		var ce *compiler.Error
		if !errors.As(err, &ce) {
			// anything other than a generation error is a failed write to f.
			err = &IOError{Op: "output", Path: output, Err: err}
		}
		return printError(stdio, err)
	}
	if err := f.Close(); err != nil {
		return printError(stdio, &IOError{Op: "output", Path: output, Err: err})
	}
	return nil
}
