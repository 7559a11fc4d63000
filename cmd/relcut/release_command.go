package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relcut/internal/config"
	"relcut/internal/git"
	"relcut/internal/journal"
	"relcut/internal/logging"
	"relcut/internal/release"
	"relcut/internal/tableview"
	"relcut/internal/version"
)

func newReleaseCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool
	selected := make(map[version.Phase]*bool, len(version.Phases()))

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Run the staged release pipeline",
		Long: "Release runs the five-stage pipeline (changelog, version bump, metadata,\n" +
			"commit and tag, push) for the requested phase, then once more for the\n" +
			"prepatch bump that opens the next development cycle.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			phase, err := selectedPhase(selected)
			if err != nil {
				return err
			}

			repo, err := git.Open(cfg.Paths.Root)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			runner := release.NewRunner(
				cfg,
				repo,
				ctx.versionTool(repo.Root()),
				confirmSource(cmd, assumeYes),
				ctx.loggerValue(),
				release.WithOutput(stdout),
				release.WithColor(shouldColorize(stdout)),
			)

			report, runErr := runner.Run(runCtx, phase)
			if report != nil {
				recordRun(cfg, ctx.loggerValue(), report)
				fmt.Fprintln(stdout)
				fmt.Fprintln(stdout, renderReport(report))
			}
			return runErr
		},
	}

	names := make([]string, 0, len(version.Phases()))
	for _, phase := range version.Phases() {
		value := new(bool)
		selected[phase] = value
		cmd.Flags().BoolVar(value, phase.String(), false, phaseUsage(phase))
		names = append(names, phase.String())
	}
	cmd.MarkFlagsOneRequired(names...)
	cmd.MarkFlagsMutuallyExclusive(names...)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer every confirmation affirmatively")

	return cmd
}

func selectedPhase(selected map[version.Phase]*bool) (version.Phase, error) {
	for _, phase := range version.Phases() {
		if value := selected[phase]; value != nil && *value {
			return phase, nil
		}
	}
	return "", errors.New("select a release phase")
}

func phaseUsage(phase version.Phase) string {
	switch phase {
	case version.Patch:
		return "Finalize the pre-release or bump the patch level"
	case version.Minor:
		return "Bump the minor level"
	case version.Major:
		return "Bump the major level"
	case version.Prepatch:
		return "Start the next patch pre-release cycle"
	case version.Preminor:
		return "Start the next minor pre-release cycle"
	case version.Premajor:
		return "Start the next major pre-release cycle"
	default:
		return "Advance the pre-release counter"
	}
}

// recordRun journals the run best-effort: history must never fail a release.
func recordRun(cfg *config.Config, logger *slog.Logger, report *release.Report) {
	if !cfg.Journal.Enabled {
		return
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Warn("open release journal", logging.Error(err))
		return
	}
	defer func() {
		_ = j.Close()
	}()
	if err := j.RecordRun(context.Background(), runFromReport(report)); err != nil {
		logger.Warn("record release run", logging.Error(err))
	}
}

func runFromReport(report *release.Report) journal.Run {
	run := journal.Run{
		RunID:         report.RunID,
		Phase:         report.Phase.String(),
		Branch:        report.Branch,
		VersionBefore: report.VersionBefore,
		VersionAfter:  report.VersionAfter,
		Tag:           report.Tag,
		Outcome:       report.Outcome(),
		Detail:        report.Problem(),
		StartedAt:     report.StartedAt,
		FinishedAt:    report.FinishedAt,
	}
	for _, res := range report.Results {
		run.Stages = append(run.Stages, journal.Stage{
			Name:   string(res.Stage),
			Status: string(res.Status),
			Detail: res.Detail,
		})
	}
	return run
}

func renderReport(report *release.Report) string {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{
			res.Phase.String(),
			string(res.Stage),
			string(res.Status),
			res.Detail,
		})
	}
	out := tableview.Render([]string{"Phase", "Stage", "Status", "Detail"}, rows)

	summary := fmt.Sprintf("Release %s: %s -> %s", report.Outcome(), report.VersionBefore, report.VersionAfter)
	if report.Tag != "" {
		summary += " (tag " + report.Tag + ")"
	}
	if problem := report.Problem(); problem != "" {
		summary += "\n" + problem
	}
	return out + "\n" + summary
}
