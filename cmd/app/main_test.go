package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns what
// was printed alongside fn's error.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	return string(out), runErr
}

func TestRouteCommand_PrintsDestinationPath(t *testing.T) {
	root := t.TempDir()

	out, err := captureStdout(t, func() error {
		return newCommand().Run(context.Background(), []string{
			"munin", "route",
			"--text", "We decided to switch to the new vendor",
			"--root", root,
			"--when", "2024-01-15T10:30",
		})
	})
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	want := filepath.Join(root, "decisions.md")
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("stdout = %q, want bare path %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestFindCommand_PrintsScoredHits(t *testing.T) {
	root := t.TempDir()

	_, err := captureStdout(t, func() error {
		return newCommand().Run(context.Background(), []string{
			"munin", "route",
			"--text", "We decided to adopt the zebra framework",
			"--root", root,
			"--when", "2024-01-15T10:30",
		})
	})
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	out, err := captureStdout(t, func() error {
		return newCommand().Run(context.Background(), []string{
			"munin", "find", "--root", root, "zebra",
		})
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(out, "decisions.md") || !strings.HasPrefix(out, "[") {
		t.Errorf("stdout = %q, want [score] path: excerpt lines", out)
	}
}

func TestFindCommand_MissingRootDiagnosticOnStdout(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	out, err := captureStdout(t, func() error {
		return newCommand().Run(context.Background(), []string{
			"munin", "find", "--root", missing, "anything",
		})
	})
	if err == nil {
		t.Fatal("expected non-nil error for missing root")
	}
	if !strings.Contains(out, "does not exist") {
		t.Errorf("stdout = %q, want diagnostic line", out)
	}
}
