package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"relcut/internal/config"
	"relcut/internal/confirm"
	"relcut/internal/logging"
	"relcut/internal/version"
)

type commandContext struct {
	configFlag *string
	rootFlag   *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	logOnce sync.Once
	logger  *slog.Logger
}

func newCommandContext(configFlag, rootFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		rootFlag:   rootFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolvedPath
		c.configExists = exists
		if c.rootFlag != nil {
			if root := strings.TrimSpace(*c.rootFlag); root != "" {
				expanded, err := config.ExpandPath(root)
				if err != nil {
					c.configErr = err
					return
				}
				cfg.Paths.Root = expanded
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue builds the process logger from configuration once. Commands
// that run before configuration resolves fall back to a silent logger.
func (c *commandContext) loggerValue() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// versionTool selects the configured external version command or the built-in
// bumper over the version manifest in root.
func (c *commandContext) versionTool(root string) version.Tool {
	cfg := c.configValue()
	if tool := strings.TrimSpace(cfg.Version.Tool); tool != "" {
		return version.NewExec(version.WithBinary(tool), version.WithDir(root))
	}
	return version.NewFile(filepath.Join(root, cfg.Release.VersionFile))
}

// confirmSource answers every gate affirmatively when assumeYes is set and
// prompts on the command streams otherwise.
func confirmSource(cmd *cobra.Command, assumeYes bool) confirm.Source {
	if assumeYes {
		return confirm.Always(true)
	}
	return confirm.NewInteractive(cmd.InOrStdin(), cmd.OutOrStdout())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
