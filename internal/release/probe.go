package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"relcut/internal/version"
)

// Manifest is the one-time capability probe of a repository: which release
// artifacts exist, where the run starts from, and where it happens. Stages
// consume the manifest instead of re-checking the filesystem.
type Manifest struct {
	Root          string
	Branch        string
	Current       version.Version
	VersionFile   string
	ChangelogFile string
	HasChangelog  bool
	MetadataFile  string
	HasMetadata   bool
}

// Candidates returns the repository-relative paths a release commit may
// stage, in staging order. Only artifacts known to exist are included.
func (m *Manifest) Candidates() []string {
	paths := []string{m.VersionFile}
	if m.HasChangelog {
		paths = append(paths, m.ChangelogFile)
	}
	if m.HasMetadata {
		paths = append(paths, m.MetadataFile)
	}
	return paths
}

// Probe inspects the repository and version tool once, before any stage
// runs, and builds the Manifest for this run.
func (r *Runner) Probe(ctx context.Context) (Manifest, error) {
	branch, err := r.repo.Branch()
	if err != nil {
		return Manifest{}, fmt.Errorf("probe branch: %w", err)
	}
	root := r.repo.Root()
	if err := unix.Access(root, unix.W_OK); err != nil {
		return Manifest{}, fmt.Errorf("repository root %s is not writable: %w", root, err)
	}

	current, err := r.tool.Current(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("probe current version: %w", err)
	}
	parsed, err := version.Parse(current)
	if err != nil {
		return Manifest{}, fmt.Errorf("version tool reported %q: %w", current, err)
	}

	m := Manifest{
		Root:          root,
		Branch:        branch,
		Current:       parsed,
		VersionFile:   r.cfg.Release.VersionFile,
		ChangelogFile: r.cfg.Changelog.Output,
		MetadataFile:  r.cfg.Release.MetadataFile,
	}
	m.HasChangelog = fileExists(filepath.Join(root, m.ChangelogFile))
	if m.MetadataFile != "" {
		m.HasMetadata = fileExists(filepath.Join(root, m.MetadataFile))
	}
	return m, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
