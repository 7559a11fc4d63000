package version

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewExecWithBinary(t *testing.T) {
	tool := NewExec(WithBinary("/opt/poetry"), WithDir("/tmp/project"))
	if tool.binary != "/opt/poetry" {
		t.Fatalf("expected binary override to be applied, got %q", tool.binary)
	}
	if tool.dir != "/tmp/project" {
		t.Fatalf("expected dir override to be applied, got %q", tool.dir)
	}
}

func TestExecCurrentTrimsOutput(t *testing.T) {
	setHelperCommand(t, "version")

	tool := NewExec()
	got, err := tool.Current(context.Background())
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if got != "3.1.6a0" {
		t.Fatalf("expected version 3.1.6a0, got %q", got)
	}
}

func TestExecPreviewArgs(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "VERSION_HELPER_MODE=version")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	tool := NewExec()
	if _, err := tool.Preview(context.Background(), Prepatch); err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}

	want := []string{"version", "prepatch", "--dry-run", "-s"}
	if strings.Join(capturedArgs, " ") != strings.Join(want, " ") {
		t.Fatalf("expected args %v, got %v", want, capturedArgs)
	}
}

func TestExecApplyArgs(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "VERSION_HELPER_MODE=version")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	tool := NewExec()
	if _, err := tool.Apply(context.Background(), Patch); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	want := []string{"version", "patch", "-s"}
	if strings.Join(capturedArgs, " ") != strings.Join(want, " ") {
		t.Fatalf("expected args %v, got %v", want, capturedArgs)
	}
}

func TestExecFailureIncludesStderr(t *testing.T) {
	setHelperCommand(t, "failure")

	tool := NewExec()
	_, err := tool.Current(context.Background())
	if err == nil {
		t.Fatal("expected failure error")
	}
	if !strings.Contains(err.Error(), "no pyproject found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestExecRejectsEmptyOutput(t *testing.T) {
	setHelperCommand(t, "empty")

	tool := NewExec()
	if _, err := tool.Current(context.Background()); err == nil {
		t.Fatal("expected error for empty tool output")
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("VERSION_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("VERSION_HELPER_MODE") {
	case "version":
		fmt.Println("3.1.6a0")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "no pyproject found")
		os.Exit(1)
	case "empty":
		fmt.Println("   ")
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

func TestFileToolCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(path, []byte("3.1.6a0\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	tool := NewFile(path)
	got, err := tool.Current(context.Background())
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if got != "3.1.6a0" {
		t.Fatalf("expected 3.1.6a0, got %q", got)
	}
}

func TestFileToolPreviewDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	content := []byte("3.1.6a0\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	tool := NewFile(path)
	preview, err := tool.Preview(context.Background(), Patch)
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if preview != "3.1.6" {
		t.Fatalf("expected preview 3.1.6, got %q", preview)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(after) != string(content) {
		t.Fatalf("preview mutated the manifest: %q", after)
	}
}

func TestFileToolApplyWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(path, []byte("3.1.6\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	tool := NewFile(path)
	next, err := tool.Apply(context.Background(), Prepatch)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if next != "3.1.7a0" {
		t.Fatalf("expected 3.1.7a0, got %q", next)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(after) != "3.1.7a0\n" {
		t.Fatalf("expected manifest rewritten to 3.1.7a0, got %q", after)
	}
}

func TestFileToolMissingManifest(t *testing.T) {
	tool := NewFile(filepath.Join(t.TempDir(), "VERSION"))
	if _, err := tool.Current(context.Background()); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
