package version

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Tool reads and advances the project version. The release pipeline handles
// version strings exclusively through this interface and never touches the
// version manifest itself.
type Tool interface {
	Current(ctx context.Context) (string, error)
	Preview(ctx context.Context, phase Phase) (string, error)
	Apply(ctx context.Context, phase Phase) (string, error)
}

// ExecOption configures the external tool client.
type ExecOption func(*Exec)

// WithBinary overrides the default tool binary.
func WithBinary(binary string) ExecOption {
	return func(e *Exec) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// WithDir runs the tool inside the given directory.
func WithDir(dir string) ExecOption {
	return func(e *Exec) {
		if dir != "" {
			e.dir = dir
		}
	}
}

// Exec drives an external version-management command. The tool is expected to
// print the bare version on "version -s", preview a bump on
// "version <phase> --dry-run -s", and persist it on "version <phase> -s".
type Exec struct {
	binary string
	dir    string
}

// NewExec constructs an external tool client using defaults.
func NewExec(opts ...ExecOption) *Exec {
	e := &Exec{binary: "poetry"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current reports the version currently recorded in the manifest.
func (e *Exec) Current(ctx context.Context) (string, error) {
	return e.run(ctx, "version", "-s")
}

// Preview computes the post-bump version without mutating anything.
func (e *Exec) Preview(ctx context.Context, phase Phase) (string, error) {
	return e.run(ctx, "version", phase.String(), "--dry-run", "-s")
}

// Apply persists the bump and reports the new version.
func (e *Exec) Apply(ctx context.Context, phase Phase) (string, error) {
	return e.run(ctx, "version", phase.String(), "-s")
}

func (e *Exec) run(ctx context.Context, args ...string) (string, error) {
	cmd := commandContext(ctx, e.binary, args...) //nolint:gosec
	cmd.Dir = e.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s %s: %w: %s", e.binary, strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("%s %s: %w", e.binary, strings.Join(args, " "), err)
	}
	result := strings.TrimSpace(string(output))
	if result == "" {
		return "", fmt.Errorf("%s %s: empty version output", e.binary, strings.Join(args, " "))
	}
	return result, nil
}

var _ Tool = (*Exec)(nil)

// File manages the version stored as a single line in a plain manifest file.
// It is selected when no external tool is configured.
type File struct {
	path string
}

// NewFile constructs a manifest-backed tool for the given file.
func NewFile(path string) *File {
	return &File{path: path}
}

// Current reads and validates the manifest version.
func (f *File) Current(ctx context.Context) (string, error) {
	v, err := f.read()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Preview computes the post-bump version without writing the manifest.
func (f *File) Preview(ctx context.Context, phase Phase) (string, error) {
	current, err := f.read()
	if err != nil {
		return "", err
	}
	next, err := current.Bump(phase)
	if err != nil {
		return "", err
	}
	return next.String(), nil
}

// Apply bumps the manifest version in place.
func (f *File) Apply(ctx context.Context, phase Phase) (string, error) {
	current, err := f.read()
	if err != nil {
		return "", err
	}
	next, err := current.Bump(phase)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(f.path, []byte(next.String()+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write version manifest: %w", err)
	}
	return next.String(), nil
}

func (f *File) read() (Version, error) {
	if f.path == "" {
		return Version{}, errors.New("version manifest path required")
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Version{}, fmt.Errorf("read version manifest: %w", err)
	}
	v, err := Parse(string(data))
	if err != nil {
		return Version{}, fmt.Errorf("version manifest %s: %w", f.path, err)
	}
	return v, nil
}

var _ Tool = (*File)(nil)
