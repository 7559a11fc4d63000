package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRelease()
	c.normalizeVersion()
	c.normalizeChangelog()
	c.normalizeDocs()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Root) == "" {
		c.Paths.Root = defaultRoot
	}
	if c.Paths.Root, err = expandPath(c.Paths.Root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRelease() {
	c.Release.VersionFile = strings.TrimSpace(c.Release.VersionFile)
	if c.Release.VersionFile == "" {
		c.Release.VersionFile = defaultVersionFile
	}
	c.Release.MetadataFile = strings.TrimSpace(c.Release.MetadataFile)
	c.Release.Generator = strings.TrimSpace(c.Release.Generator)
	c.Release.Remote = strings.TrimSpace(c.Release.Remote)
	if c.Release.Remote == "" {
		c.Release.Remote = defaultRemote
	}
	c.Release.TagPrefix = strings.TrimSpace(c.Release.TagPrefix)
}

func (c *Config) normalizeVersion() {
	c.Version.Tool = strings.TrimSpace(c.Version.Tool)
	if c.Version.Tool == "" {
		if value, ok := os.LookupEnv("RELCUT_VERSION_TOOL"); ok {
			c.Version.Tool = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeChangelog() {
	c.Changelog.SourceDir = strings.TrimSpace(c.Changelog.SourceDir)
	if c.Changelog.SourceDir == "" {
		c.Changelog.SourceDir = defaultChangelogDir
	}
	c.Changelog.Output = strings.TrimSpace(c.Changelog.Output)
	if c.Changelog.Output == "" {
		c.Changelog.Output = defaultChangelogOut
	}
	if len(c.Changelog.Exclude) > 0 {
		excludes := make([]string, 0, len(c.Changelog.Exclude))
		seen := make(map[string]struct{}, len(c.Changelog.Exclude))
		for _, dir := range c.Changelog.Exclude {
			normalized := strings.TrimSpace(dir)
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			excludes = append(excludes, normalized)
		}
		c.Changelog.Exclude = excludes
	}
}

func (c *Config) normalizeDocs() {
	c.Docs.Dir = strings.TrimSpace(c.Docs.Dir)
	if c.Docs.Dir == "" {
		c.Docs.Dir = defaultDocsDir
	}
	c.Docs.BackupSuffix = strings.TrimSpace(c.Docs.BackupSuffix)
	if c.Docs.BackupSuffix == "" {
		c.Docs.BackupSuffix = defaultBackupSuffix
	}
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath(c.Paths.StateDir)
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
