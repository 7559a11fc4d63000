package changelog_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relcut/internal/changelog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanCollectsDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.go"), `// Package widget assembles widgets.
//
// .. versionadded:: 1.0.0 Initial release.
package widget
`)
	writeFile(t, filepath.Join(dir, "widget.go"), `package widget

// Widget is an assembled thing.
//
// .. versionadded:: 1.1.0 Public type.
type Widget struct{}

// Assemble builds the widget.
//
// .. versionchanged:: 1.2.0 Faster assembly.
func (w *Widget) Assemble() {}

// New returns a Widget.
//
// .. versionadded:: 1.1.0
func New() *Widget { return &Widget{} }

// DefaultSize is the fallback size.
//
// .. versionadded:: 1.3.0 Tunable default.
const DefaultSize = 4
`)
	writeFile(t, filepath.Join(dir, "sub", "part.go"), `package sub

// Bolt fastens parts.
//
// .. versionadded:: 1.4.0 Hardware support.
func Bolt() {}
`)
	writeFile(t, filepath.Join(dir, "widget_test.go"), `package widget

// .. versionadded:: 9.9.9 Must never appear.
func helper() {}
`)
	writeFile(t, filepath.Join(dir, ".hidden", "skip.go"), `package hidden

// .. versionadded:: 8.8.8 Hidden directory.
func Skip() {}
`)
	writeFile(t, filepath.Join(dir, "gen", "skip.go"), `package gen

// .. versionadded:: 7.7.7 Excluded directory.
func Skip() {}
`)
	writeFile(t, filepath.Join(dir, "broken.go"), "package widget\nfunc (")

	entries, err := changelog.Scan(dir, []string{"gen"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("Scan returned %d entries, want 6: %#v", len(entries), entries)
	}

	byRef := make(map[string]changelog.Entry, len(entries))
	for _, e := range entries {
		byRef[e.Ref] = e
	}
	if e := byRef["widget"]; e.Kind != changelog.KindModule || e.Version != "1.0.0" {
		t.Errorf("package entry = %#v", e)
	}
	if e := byRef["widget.Widget"]; e.Kind != changelog.KindClass || e.Version != "1.1.0" {
		t.Errorf("type entry = %#v", e)
	}
	if e := byRef["widget.Widget.Assemble"]; e.Kind != changelog.KindMethod || e.Change != "changed" {
		t.Errorf("method entry = %#v", e)
	}
	if e := byRef["widget.New"]; e.Description != "(no description provided)" {
		t.Errorf("func entry = %#v", e)
	}
	if e := byRef["widget.DefaultSize"]; e.Kind != changelog.KindVariable {
		t.Errorf("const entry = %#v", e)
	}
	if e := byRef["sub.Bolt"]; e.Version != "1.4.0" {
		t.Errorf("subpackage entry = %#v", e)
	}
}

func TestWriteRendersGroupedVersions(t *testing.T) {
	entries := []changelog.Entry{
		{Version: "3.1.6a0", Change: "added", Description: "Pre-release warmup.", Name: "Warm", Ref: "widget.Warm", Kind: changelog.KindFunc},
		{Version: "3.1.6", Change: "added", Description: "Stable support.", Name: "Widget", Ref: "widget.Widget", Kind: changelog.KindClass},
		{Version: "3.1.6", Change: "removed", Description: "Old path dropped.", Name: "Legacy", Ref: "other.Legacy", Kind: changelog.KindFunc},
	}
	var b strings.Builder
	if err := changelog.Write(&b, entries, "widget"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "Changelog\n=========\n\n" +
		"3.1.6\n-----\n\n" +
		"* Added: [:class:`widget.Widget`] Stable support.\n" +
		"* Removed: [:func:`widget.other.Legacy`] Old path dropped.\n" +
		"\n" +
		"3.1.6a0\n-------\n\n" +
		"* Added: [:func:`widget.Warm`] Pre-release warmup.\n"
	if b.String() != want {
		t.Fatalf("Write rendered:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestWriteFallsBackToStringOrder(t *testing.T) {
	entries := []changelog.Entry{
		{Version: "apple", Change: "added", Description: "a", Ref: "m.A", Kind: changelog.KindFunc},
		{Version: "banana", Change: "added", Description: "b", Ref: "m.B", Kind: changelog.KindFunc},
	}
	var b strings.Builder
	if err := changelog.Write(&b, entries, "m"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	banana := strings.Index(b.String(), "banana")
	apple := strings.Index(b.String(), "apple")
	if banana < 0 || apple < 0 || banana > apple {
		t.Fatalf("want banana section before apple:\n%s", b.String())
	}
}

func TestGenerateWritesChangelogFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "mylib")
	writeFile(t, filepath.Join(dir, "fetch.go"), `package mylib

// Fetch retrieves a record.
//
// .. versionadded:: 2.0.0 Remote fetching.
func Fetch() {}
`)
	out := filepath.Join(root, "CHANGELOG.rst")
	count, err := changelog.Generate(dir, out, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if count != 1 {
		t.Fatalf("Generate wrote %d entries, want 1", count)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "Changelog\n=========\n") {
		t.Fatalf("missing header:\n%s", text)
	}
	if !strings.Contains(text, "* Added: [:func:`mylib.Fetch`] Remote fetching.") {
		t.Fatalf("missing entry line:\n%s", text)
	}
}

func TestRunScriptMissingScriptSkips(t *testing.T) {
	skipped, err := changelog.RunScript(context.Background(), t.TempDir(), "./generate-changelog", io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if !skipped {
		t.Fatal("want skipped for a missing script")
	}
}

func TestRunScriptEmptyPathSkips(t *testing.T) {
	skipped, err := changelog.RunScript(context.Background(), t.TempDir(), "", io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if !skipped {
		t.Fatal("want skipped when no script is configured")
	}
}

func TestRunScriptRunsInRepositoryDir(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "generate-changelog"), "#!/bin/sh\necho 3 entries written\necho done > marker.txt\n")

	var out strings.Builder
	skipped, err := changelog.RunScript(context.Background(), dir, "./generate-changelog", &out, io.Discard)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if skipped {
		t.Fatal("script exists, must not be skipped")
	}
	if !strings.Contains(out.String(), "3 entries written") {
		t.Fatalf("stdout = %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err != nil {
		t.Fatalf("script did not run in repository dir: %v", err)
	}
}

func TestRunScriptReportsFailure(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "generate-changelog"), "#!/bin/sh\necho broken >&2\nexit 3\n")

	var errOut strings.Builder
	skipped, err := changelog.RunScript(context.Background(), dir, "./generate-changelog", io.Discard, &errOut)
	if err == nil {
		t.Fatal("want error from failing script")
	}
	if skipped {
		t.Fatal("a failing script is not a skip")
	}
	if !strings.Contains(err.Error(), "generate-changelog") {
		t.Fatalf("error %q does not name the script", err)
	}
	if !strings.Contains(errOut.String(), "broken") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
