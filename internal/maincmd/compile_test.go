package maincmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func TestIOErrorMessageNamesTheRightFile(t *testing.T) {
	in := &IOError{Op: "input", Path: "missing.spy", Err: errors.New("no such file")}
	require.Equal(t, "couldn't open input file 'missing.spy' for reading", in.Error())

	out := &IOError{Op: "output", Path: "out.bc", Err: errors.New("permission denied")}
	require.Equal(t, "couldn't open output file 'out.bc' for writing", out.Error())
}

func TestIOErrorUnwrap(t *testing.T) {
	wrapped := errors.New("permission denied")
	e := &IOError{Op: "output", Path: "out.bc", Err: wrapped}
	require.ErrorIs(t, e, wrapped)
}

func TestCompileFileMissingInputReportsInputError(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	stdio := mainer.Stdio{Stdout: &stdout, Stderr: &stderr}

	err := CompileFile(context.Background(), stdio, filepath.Join(dir, "nope.spy"), filepath.Join(dir, "out.bc"))
	require.Error(t, err)
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	require.Equal(t, "input", ioe.Op)
	require.Contains(t, stderr.String(), "couldn't open input file")
}

func TestCompileFileSucceedsWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "prog.spy")
	out := filepath.Join(dir, "prog.bc")
	require.NoError(t, os.WriteFile(in, []byte(`main : () -> int { return 0; }`), 0o644))

	var stdout, stderr bytes.Buffer
	stdio := mainer.Stdio{Stdout: &stdout, Stderr: &stderr}

	err := CompileFile(context.Background(), stdio, in, out)
	require.NoError(t, err)

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NotEmpty(t, body)
}
