package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRelease(); err != nil {
		return err
	}
	if err := c.validateChangelog(); err != nil {
		return err
	}
	if err := c.validateDocs(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRelease() error {
	if c.Release.VersionFile == "" {
		return errors.New("release.version_file must be set")
	}
	if filepath.IsAbs(c.Release.VersionFile) {
		return errors.New("release.version_file must be relative to paths.root")
	}
	if c.Release.MetadataFile != "" && filepath.IsAbs(c.Release.MetadataFile) {
		return errors.New("release.metadata_file must be relative to paths.root")
	}
	if c.Release.Remote == "" {
		return errors.New("release.remote must be set")
	}
	return nil
}

func (c *Config) validateChangelog() error {
	if c.Changelog.Output == "" {
		return errors.New("changelog.output must be set")
	}
	if filepath.IsAbs(c.Changelog.Output) {
		return errors.New("changelog.output must be relative to paths.root")
	}
	if c.Changelog.UseBuiltin && c.Changelog.SourceDir == "" {
		return errors.New("changelog.source_dir must be set when changelog.use_builtin is true")
	}
	return nil
}

func (c *Config) validateDocs() error {
	if c.Docs.Dir == "" {
		return errors.New("docs.dir must be set")
	}
	if !strings.HasPrefix(c.Docs.BackupSuffix, ".") {
		return errors.New("docs.backup_suffix must start with a dot")
	}
	return nil
}
