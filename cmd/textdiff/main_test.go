package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

func TestRootCmd_NoDifferences(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "one\ntwo\n")
	b := writeFile(t, dir, "b.txt", "one\ntwo\n")

	out, err := execute(t, a, b)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestRootCmd_Differences(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "one\ntwo\n")
	b := writeFile(t, dir, "b.txt", "one\n2\n")

	out, err := execute(t, a, b)
	require.Equal(t, 1, exitCode(err))
	require.Equal(t, "! 2,2 2,2\n< 2 two\n> 2 2\n", out)
}

func TestRootCmd_WhitespaceFlags(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a  b\n")
	b := writeFile(t, dir, "b.txt", " a b\n")

	_, err := execute(t, a, b)
	require.Equal(t, 1, exitCode(err))

	_, err = execute(t, "-b", "-t", a, b)
	require.NoError(t, err)

	_, err = execute(t, "-w", a, b)
	require.NoError(t, err)
}

func TestRootCmd_ConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "same\n")
	b := writeFile(t, dir, "b.txt", "same")
	config := writeFile(t, dir, "textdiff.toml", "style = \"full\"\n")

	out, err := execute(t, "--config", config, a, b)
	require.Equal(t, 1, exitCode(err))
	require.Contains(t, out, "= 1,1 1,1\n  1 same\n")
	require.Contains(t, out, "no line separator at end of new file")
}

func TestRootCmd_FullFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "same\nold\n")
	b := writeFile(t, dir, "b.txt", "same\nnew\n")
	config := writeFile(t, dir, "textdiff.toml", "style = \"full\"\n")

	out, err := execute(t, "--config", config, "--full=false", a, b)
	require.Equal(t, 1, exitCode(err))
	require.Equal(t, "! 2,2 2,2\n< 2 old\n> 2 new\n", out)
}

func TestRootCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "x\n")

	_, err := execute(t, a, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	require.Equal(t, -1, exitCode(err))

	_, err = execute(t, "--non-printing", "sparkle", a, a)
	require.Error(t, err)

	_, err = execute(t, a)
	require.Error(t, err)
}
