package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"relcut/internal/changelog"
)

func newChangelogCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var output string
	var exclude []string

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Regenerate the changelog from source directives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sourceDir := dir
			if sourceDir == "" {
				sourceDir = cfg.Changelog.SourceDir
			}
			outFile := output
			if outFile == "" {
				outFile = cfg.Changelog.Output
			}
			excluded := exclude
			if len(excluded) == 0 {
				excluded = cfg.Changelog.Exclude
			}
			sourceDir = resolveUnderRoot(cfg.Paths.Root, sourceDir)
			outFile = resolveUnderRoot(cfg.Paths.Root, outFile)

			count, err := changelog.Generate(sourceDir, outFile, excluded)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries written to %s\n", count, outFile)
			if count == 0 {
				return errors.New("no changelog entries found")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to scan for version directives")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Changelog file to write")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "e", nil, "Directory name to exclude from the scan (repeatable)")
	return cmd
}
