// Package docrewrite rewrites versioned documentation directives
// (versionadded, versionchanged, versionremoved) from one version string to
// another across a documentation tree.
//
// Every touched file is first copied to a backup with a configurable suffix.
// After the rewrite a diff of each file is shown and the operator confirms:
// acceptance deletes the backups, decline restores every file from its backup
// byte for byte. A failure mid-rewrite restores the files already touched.
package docrewrite

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"relcut/internal/confirm"
	"relcut/internal/diffview"
	"relcut/internal/logging"
)

const defaultBackupSuffix = ".bak"

var directives = []string{"versionadded", "versionchanged", "versionremoved"}

// Change records one rewritten file.
type Change struct {
	Path  string // relative to the documentation root
	Count int    // directive occurrences rewritten
}

// Rewriter performs one version-reference rewrite over a documentation tree.
type Rewriter struct {
	dir     string
	suffix  string
	confirm confirm.Source
	logger  *slog.Logger
	out     io.Writer
	color   bool
}

// Option adjusts Rewriter construction.
type Option func(*Rewriter)

// WithOutput directs diffs and notices to w.
func WithOutput(w io.Writer) Option {
	return func(rw *Rewriter) {
		if w != nil {
			rw.out = w
		}
	}
}

// WithColor enables ANSI colors in diff output.
func WithColor(enabled bool) Option {
	return func(rw *Rewriter) {
		rw.color = enabled
	}
}

// New builds a Rewriter over the documentation tree rooted at dir.
func New(dir, backupSuffix string, source confirm.Source, logger *slog.Logger, opts ...Option) *Rewriter {
	if backupSuffix == "" {
		backupSuffix = defaultBackupSuffix
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	rw := &Rewriter{
		dir:     dir,
		suffix:  backupSuffix,
		confirm: source,
		logger:  logging.NewComponentLogger(logger, "docrewrite"),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Run rewrites every directive referencing oldVersion to newVersion and asks
// the operator whether to keep the result. It reports whether the rewrite was
// kept and which files changed. A run with no matching references is a no-op
// and leaves no backups behind.
func (rw *Rewriter) Run(oldVersion, newVersion string) (bool, []Change, error) {
	if oldVersion == newVersion {
		return false, nil, fmt.Errorf("old and new version are both %q", oldVersion)
	}
	info, err := os.Stat(rw.dir)
	if err != nil {
		return false, nil, fmt.Errorf("documentation root: %w", err)
	}
	if !info.IsDir() {
		return false, nil, fmt.Errorf("documentation root %s is not a directory", rw.dir)
	}

	re := directivePattern(oldVersion)
	replacement := []byte("${1}:: " + newVersion)

	var changes []Change
	walkErr := filepath.WalkDir(rw.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rw.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasSuffix(path, rw.suffix) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		count := len(re.FindAllIndex(data, -1))
		if count == 0 {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return err
		}
		perm := fileInfo.Mode().Perm()
		rel, err := filepath.Rel(rw.dir, path)
		if err != nil {
			return err
		}

		if err := os.WriteFile(path+rw.suffix, data, perm); err != nil {
			return fmt.Errorf("write backup for %s: %w", rel, err)
		}
		rewritten := re.ReplaceAll(data, replacement)
		if err := os.WriteFile(path, rewritten, perm); err != nil {
			return fmt.Errorf("rewrite %s: %w", rel, err)
		}
		changes = append(changes, Change{Path: rel, Count: count})
		rw.logger.Debug("rewrote directives",
			logging.String(logging.FieldPath, rel),
			logging.Int("references", count),
		)

		if diff := diffview.Unified(rel, string(data), string(rewritten), diffview.Options{Color: rw.color}); diff != "" {
			fmt.Fprint(rw.out, diff)
			fmt.Fprintln(rw.out)
		}
		return nil
	})
	if walkErr != nil {
		if err := rw.restore(changes); err != nil {
			rw.logger.Error("restore after failed rewrite", logging.Error(err))
		}
		return false, nil, walkErr
	}

	if len(changes) == 0 {
		fmt.Fprintf(rw.out, "No references to %s found under %s\n", oldVersion, rw.dir)
		return false, nil, nil
	}

	total := 0
	for _, c := range changes {
		total += c.Count
	}
	fmt.Fprintf(rw.out, "Rewrote %d references in %d files\n", total, len(changes))

	ok, err := rw.confirm.Confirm(fmt.Sprintf("Keep rewritten references to %s?", newVersion))
	if err != nil {
		if rerr := rw.restore(changes); rerr != nil {
			rw.logger.Error("restore after failed confirmation", logging.Error(rerr))
		}
		return false, changes, fmt.Errorf("read confirmation: %w", err)
	}
	if !ok {
		if err := rw.restore(changes); err != nil {
			return false, changes, err
		}
		fmt.Fprintln(rw.out, "Restored original files")
		rw.logger.Info("documentation rewrite reverted",
			logging.String("old_version", oldVersion),
			logging.String("new_version", newVersion),
			logging.Int("files", len(changes)),
		)
		return false, changes, nil
	}

	if err := rw.removeBackups(changes); err != nil {
		return true, changes, err
	}
	rw.logger.Info("documentation rewrite applied",
		logging.String("old_version", oldVersion),
		logging.String("new_version", newVersion),
		logging.Int("files", len(changes)),
		logging.Int("references", total),
	)
	return true, changes, nil
}

// restore moves every backup over its original, undoing the rewrite byte for
// byte. The backup rename also removes the backup itself.
func (rw *Rewriter) restore(changes []Change) error {
	var firstErr error
	for _, c := range changes {
		path := filepath.Join(rw.dir, c.Path)
		if err := os.Rename(path+rw.suffix, path); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restore %s: %w", c.Path, err)
		}
	}
	return firstErr
}

func (rw *Rewriter) removeBackups(changes []Change) error {
	var firstErr error
	for _, c := range changes {
		path := filepath.Join(rw.dir, c.Path) + rw.suffix
		if err := os.Remove(path); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove backup %s: %w", c.Path+rw.suffix, err)
		}
	}
	return firstErr
}

// directivePattern matches any versioned directive referencing exactly
// oldVersion. The trailing boundary keeps 3.1.6 from matching inside 3.1.60
// or 3.1.6a0.
func directivePattern(oldVersion string) *regexp.Regexp {
	return regexp.MustCompile(`(` + strings.Join(directives, "|") + `):: ` + regexp.QuoteMeta(oldVersion) + `\b`)
}
