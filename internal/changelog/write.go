package changelog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"relcut/internal/version"
)

// Write renders entries as reStructuredText grouped by version, newest
// first. References that do not already mention defaultModule are qualified
// with it so Sphinx can resolve them from anywhere in the docs.
func Write(w io.Writer, entries []Entry, defaultModule string) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareVersions(sorted[i].Version, sorted[j].Version) > 0
	})

	title := cases.Title(language.Und)

	var b strings.Builder
	b.WriteString("Changelog\n=========\n\n")
	current := ""
	for idx, entry := range sorted {
		if entry.Version != current {
			if idx > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s\n%s\n\n", entry.Version, strings.Repeat("-", len(entry.Version)))
			current = entry.Version
		}
		ref := entry.Ref
		if !strings.Contains(ref, defaultModule+".") {
			ref = defaultModule + "." + ref
		}
		fmt.Fprintf(&b, "* %s: [:%s:`%s`] %s\n", title.String(entry.Change), entry.Kind, ref, entry.Description)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// compareVersions orders release versions semantically and falls back to a
// plain string comparison for anything the version grammar rejects.
func compareVersions(a, b string) int {
	va, errA := version.Parse(a)
	vb, errB := version.Parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return version.Compare(va, vb)
}

// Generate scans dir and writes the rendered changelog to output, returning
// the number of entries written. References are qualified against the base
// name of dir.
func Generate(dir, output string, exclude []string) (int, error) {
	entries, err := Scan(dir, exclude)
	if err != nil {
		return 0, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(output)
	if err != nil {
		return 0, err
	}
	if err := Write(f, entries, filepath.Base(abs)); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return len(entries), nil
}
