package docrewrite_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relcut/internal/confirm"
	"relcut/internal/docrewrite"
)

const guideSource = `Widget guide
============

.. versionadded:: 1.2.0
   Widgets can now be sorted.

.. versionchanged:: 1.2.0
   Sorting is stable.

.. versionadded:: 1.1.0
   Widgets exist.
`

const refSource = `.. versionremoved:: 1.2.0
   The legacy endpoint is gone.
`

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "api"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"guide.rst":   guideSource,
		"api/ref.rst": refSource,
		"notes.txt":   "plain mention of 1.2.0 without a directive\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func backupCount(t *testing.T, dir, suffix string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, suffix) {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return count
}

func TestRunRewritesDirectives(t *testing.T) {
	dir := writeTree(t)
	var out bytes.Buffer
	rw := docrewrite.New(dir, ".bak", confirm.Always(true), nil, docrewrite.WithOutput(&out))

	applied, changes, err := rw.Run("1.2.0", "1.3.0")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !applied {
		t.Fatal("rewrite was not applied")
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %v, want guide.rst and api/ref.rst", changes)
	}
	if changes[0].Path != filepath.Join("api", "ref.rst") || changes[0].Count != 1 {
		t.Fatalf("changes[0] = %+v", changes[0])
	}
	if changes[1].Path != "guide.rst" || changes[1].Count != 2 {
		t.Fatalf("changes[1] = %+v", changes[1])
	}

	guide := read(t, dir, "guide.rst")
	if !strings.Contains(guide, ".. versionadded:: 1.3.0") || !strings.Contains(guide, ".. versionchanged:: 1.3.0") {
		t.Fatalf("guide.rst not rewritten:\n%s", guide)
	}
	if !strings.Contains(guide, ".. versionadded:: 1.1.0") {
		t.Fatalf("guide.rst lost the unrelated directive:\n%s", guide)
	}
	if got := read(t, dir, "api/ref.rst"); !strings.Contains(got, ".. versionremoved:: 1.3.0") {
		t.Fatalf("api/ref.rst not rewritten:\n%s", got)
	}
	if got := read(t, dir, "notes.txt"); got != "plain mention of 1.2.0 without a directive\n" {
		t.Fatalf("notes.txt was modified: %q", got)
	}
	if n := backupCount(t, dir, ".bak"); n != 0 {
		t.Fatalf("found %d backups after acceptance, want 0", n)
	}
	if !strings.Contains(out.String(), "Rewrote 3 references in 2 files") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunDeclineRestoresOriginals(t *testing.T) {
	dir := writeTree(t)
	rw := docrewrite.New(dir, ".bak", confirm.Always(false), nil, docrewrite.WithOutput(&bytes.Buffer{}))

	applied, changes, err := rw.Run("1.2.0", "1.3.0")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if applied {
		t.Fatal("rewrite reported as applied despite decline")
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %v", changes)
	}
	if got := read(t, dir, "guide.rst"); got != guideSource {
		t.Fatalf("guide.rst not restored:\n%s", got)
	}
	if got := read(t, dir, "api/ref.rst"); got != refSource {
		t.Fatalf("api/ref.rst not restored:\n%s", got)
	}
	if n := backupCount(t, dir, ".bak"); n != 0 {
		t.Fatalf("found %d backups after revert, want 0", n)
	}
}

func TestRunWithoutMatchesIsNoop(t *testing.T) {
	dir := writeTree(t)
	var out bytes.Buffer
	rw := docrewrite.New(dir, ".bak", confirm.Always(true), nil, docrewrite.WithOutput(&out))

	applied, changes, err := rw.Run("9.9.9", "10.0.0")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if applied || len(changes) != 0 {
		t.Fatalf("applied=%v changes=%v, want a no-op", applied, changes)
	}
	if got := read(t, dir, "guide.rst"); got != guideSource {
		t.Fatalf("guide.rst was modified:\n%s", got)
	}
	if !strings.Contains(out.String(), "No references to 9.9.9") {
		t.Fatalf("output = %q", out.String())
	}
	if n := backupCount(t, dir, ".bak"); n != 0 {
		t.Fatalf("found %d backups after no-op, want 0", n)
	}
}

func TestRunLeavesLongerVersionsAlone(t *testing.T) {
	dir := t.TempDir()
	content := ".. versionadded:: 1.2.0a0\n   Pre-release note.\n"
	if err := os.WriteFile(filepath.Join(dir, "pre.rst"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rw := docrewrite.New(dir, ".bak", confirm.Always(true), nil, docrewrite.WithOutput(&bytes.Buffer{}))

	applied, changes, err := rw.Run("1.2.0", "1.3.0")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if applied || len(changes) != 0 {
		t.Fatalf("applied=%v changes=%v, want no match inside 1.2.0a0", applied, changes)
	}
	if got := read(t, dir, "pre.rst"); got != content {
		t.Fatalf("pre.rst was modified: %q", got)
	}
}

func TestRunSkipsStaleBackups(t *testing.T) {
	dir := t.TempDir()
	stale := ".. versionadded:: 1.2.0\n"
	if err := os.WriteFile(filepath.Join(dir, "old.rst.bak"), []byte(stale), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rw := docrewrite.New(dir, ".bak", confirm.Always(true), nil, docrewrite.WithOutput(&bytes.Buffer{}))

	applied, changes, err := rw.Run("1.2.0", "1.3.0")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if applied || len(changes) != 0 {
		t.Fatalf("applied=%v changes=%v, want stale backup ignored", applied, changes)
	}
	if got := read(t, dir, "old.rst.bak"); got != stale {
		t.Fatalf("stale backup was modified: %q", got)
	}
}

func TestRunRejectsIdenticalVersions(t *testing.T) {
	rw := docrewrite.New(t.TempDir(), ".bak", confirm.Always(true), nil, docrewrite.WithOutput(&bytes.Buffer{}))
	if _, _, err := rw.Run("1.2.0", "1.2.0"); err == nil {
		t.Fatal("want error for identical versions")
	}
}
