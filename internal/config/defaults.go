package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultRoot          = "."
	defaultStateDir      = "~/.local/share/relcut"
	defaultVersionFile   = "VERSION"
	defaultMetadataFile  = "PLUGININFO"
	defaultGenerator     = "./generate-changelog"
	defaultRemote        = "origin"
	defaultTagPrefix     = "v"
	defaultChangelogDir  = "."
	defaultChangelogOut  = "CHANGELOG.rst"
	defaultDocsDir       = "docs/source"
	defaultBackupSuffix  = ".bak"
	defaultJournalDBName = "journal.db"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root:     defaultRoot,
			StateDir: defaultStateDir,
		},
		Release: Release{
			VersionFile:  defaultVersionFile,
			MetadataFile: defaultMetadataFile,
			Generator:    defaultGenerator,
			Remote:       defaultRemote,
			TagPrefix:    defaultTagPrefix,
		},
		Changelog: Changelog{
			SourceDir: defaultChangelogDir,
			Output:    defaultChangelogOut,
		},
		Docs: Docs{
			Dir:          defaultDocsDir,
			BackupSuffix: defaultBackupSuffix,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultJournalPath(stateDir string) string {
	if strings.TrimSpace(stateDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return defaultJournalDBName
		}
		return filepath.Join(home, ".local", "share", "relcut", defaultJournalDBName)
	}
	return filepath.Join(stateDir, defaultJournalDBName)
}
