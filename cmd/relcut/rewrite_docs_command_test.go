package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocsTree(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	docs := filepath.Join(env.repoDir, "docs", "source")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatalf("mkdir docs: %v", err)
	}
	content := "Notes\n=====\n\n.. versionadded:: 3.1.6\n   Upload pages gained sorting.\n"
	if err := os.WriteFile(filepath.Join(docs, "notes.rst"), []byte(content), 0o644); err != nil {
		t.Fatalf("write notes.rst: %v", err)
	}
	return docs
}

func TestCLIRewriteDocsAppliesAndReverts(t *testing.T) {
	env := setupCLITestEnv(t)
	docs := writeDocsTree(t, env)

	out, _, err := runCLI(t, []string{"rewrite-docs", "3.1.6", "3.2.0", "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("rewrite-docs: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Updated 1 files")

	data, err := os.ReadFile(filepath.Join(docs, "notes.rst"))
	if err != nil {
		t.Fatalf("read notes.rst: %v", err)
	}
	if !strings.Contains(string(data), ".. versionadded:: 3.2.0") {
		t.Fatalf("notes.rst = %q", data)
	}
	if _, err := os.Stat(filepath.Join(docs, "notes.rst.bak")); !os.IsNotExist(err) {
		t.Fatalf("backup left behind: %v", err)
	}

	out, _, err = runCLI(t, []string{"rewrite-docs", "3.2.0", "3.3.0"}, env.configPath, "n\n")
	if err != nil {
		t.Fatalf("rewrite-docs decline: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Restored original files")
	data, err = os.ReadFile(filepath.Join(docs, "notes.rst"))
	if err != nil {
		t.Fatalf("read notes.rst: %v", err)
	}
	if !strings.Contains(string(data), ".. versionadded:: 3.2.0") {
		t.Fatalf("notes.rst was not restored: %q", data)
	}
}

func TestCLIRewriteDocsRejectsInvalidVersion(t *testing.T) {
	env := setupCLITestEnv(t)
	writeDocsTree(t, env)

	_, _, err := runCLI(t, []string{"rewrite-docs", "nope", "3.2.0"}, env.configPath, "")
	if err == nil {
		t.Fatal("want error for a malformed version")
	}
	if !strings.Contains(err.Error(), "invalid version") {
		t.Fatalf("err = %v", err)
	}
}
