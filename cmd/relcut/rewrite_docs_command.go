package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relcut/internal/docrewrite"
	"relcut/internal/version"
)

func newRewriteDocsCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "rewrite-docs <old-version> <new-version>",
		Short: "Rewrite versioned documentation directives",
		Long: "Rewrite-docs updates every versionadded, versionchanged, and\n" +
			"versionremoved directive referencing the old version to the new one,\n" +
			"keeping backups until the result is confirmed.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			oldVersion, newVersion := args[0], args[1]
			if _, err := version.Parse(oldVersion); err != nil {
				return err
			}
			if _, err := version.Parse(newVersion); err != nil {
				return err
			}

			dir := dirFlag
			if dir == "" {
				dir = cfg.Docs.Dir
			}
			dir = resolveUnderRoot(cfg.Paths.Root, dir)

			stdout := cmd.OutOrStdout()
			rw := docrewrite.New(
				dir,
				cfg.Docs.BackupSuffix,
				confirmSource(cmd, assumeYes),
				ctx.loggerValue(),
				docrewrite.WithOutput(stdout),
				docrewrite.WithColor(shouldColorize(stdout)),
			)
			applied, changes, err := rw.Run(oldVersion, newVersion)
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintf(stdout, "Updated %d files\n", len(changes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Documentation directory (overrides configuration)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Keep the rewrite without prompting")
	return cmd
}
