package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"relcut/internal/journal"
	"relcut/internal/tableview"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent release runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return errors.New("release journal is disabled in configuration")
			}
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer func() {
				_ = j.Close()
			}()

			runs, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(stdout, "No release runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				tag := run.Tag
				if tag == "" {
					tag = "-"
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Phase,
					run.VersionBefore + " -> " + run.VersionAfter,
					tag,
					run.Outcome,
				})
			}
			fmt.Fprintln(stdout, tableview.Render([]string{"Started", "Phase", "Version", "Tag", "Outcome"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show")
	return cmd
}
