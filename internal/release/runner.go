package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"relcut/internal/changelog"
	"relcut/internal/config"
	"relcut/internal/confirm"
	"relcut/internal/diffview"
	"relcut/internal/git"
	"relcut/internal/logging"
	"relcut/internal/metadata"
	"relcut/internal/tableview"
	"relcut/internal/version"
)

// Runner executes the release pipeline against one repository.
type Runner struct {
	cfg     *config.Config
	repo    *git.Repo
	tool    version.Tool
	confirm confirm.Source
	logger  *slog.Logger
	out     io.Writer
	color   bool
}

// Option adjusts Runner construction.
type Option func(*Runner)

// WithOutput directs operator-facing output (previews, diffs, notices) to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithColor enables ANSI colors in diff output.
func WithColor(enabled bool) Option {
	return func(r *Runner) {
		r.color = enabled
	}
}

// NewRunner builds a Runner. The confirmation source gates every
// side-effecting stage; pass confirm.Always(true) for non-interactive runs.
func NewRunner(cfg *config.Config, repo *git.Repo, tool version.Tool, source confirm.Source, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:     cfg,
		repo:    repo,
		tool:    tool,
		confirm: source,
		logger:  logging.NewComponentLogger(logger, "release"),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline once for phase and then once more for the
// implicit prepatch bump that opens the next development cycle. The report
// is non-nil whenever the run lock was acquired, even for aborted runs.
func (r *Runner) Run(ctx context.Context, phase version.Phase) (*Report, error) {
	lock := flock.New(filepath.Join(r.repo.Root(), ".git", "relcut.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire release lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another release is already in progress")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	report := &Report{
		RunID:     uuid.NewString(),
		Phase:     phase,
		StartedAt: time.Now().UTC(),
	}
	logger := r.logger.With(logging.String(logging.FieldRunID, report.RunID))

	manifest, err := r.Probe(ctx)
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		return report, err
	}
	report.Branch = manifest.Branch
	report.VersionBefore = manifest.Current.String()
	report.VersionAfter = report.VersionBefore

	banner := fmt.Sprintf("Releasing %s on %s", report.VersionBefore, manifest.Branch)
	if manifest.HasMetadata {
		if fields, err := metadata.Read(filepath.Join(manifest.Root, manifest.MetadataFile)); err == nil {
			if name := metadata.Value(fields, "Name"); name != "" {
				banner = fmt.Sprintf("Releasing %s %s on %s", name, report.VersionBefore, manifest.Branch)
			}
		}
	}
	fmt.Fprintln(r.out, banner)

	logger.Info("release started",
		logging.String(logging.FieldPhase, phase.String()),
		logging.String(logging.FieldVersion, report.VersionBefore),
		logging.String("branch", manifest.Branch),
	)

	if err := r.pass(ctx, logger, &manifest, phase, report); err != nil {
		report.FinishedAt = time.Now().UTC()
		return report, err
	}

	fmt.Fprintf(r.out, "\nOpening next development cycle (%s)\n", version.Prepatch)
	if err := r.pass(ctx, logger, &manifest, version.Prepatch, report); err != nil {
		report.FinishedAt = time.Now().UTC()
		return report, err
	}

	report.FinishedAt = time.Now().UTC()
	logger.Info("release finished",
		logging.String(logging.FieldVersion, report.VersionAfter),
		logging.String("tag", report.Tag),
		logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (r *Runner) pass(ctx context.Context, logger *slog.Logger, m *Manifest, phase version.Phase, report *Report) error {
	passLogger := logger.With(logging.String(logging.FieldPhase, phase.String()))

	res := r.stageChangelog(ctx, m, phase)
	r.record(passLogger, report, res)
	if err := res.abort(); err != nil {
		return err
	}

	res, applied := r.stageBump(ctx, m, phase)
	r.record(passLogger, report, res)
	if err := res.abort(); err != nil {
		return err
	}
	report.VersionAfter = applied

	res = r.stageMetadata(m, phase, applied)
	r.record(passLogger, report, res)
	if err := res.abort(); err != nil {
		return err
	}

	res = r.stageCommit(m, phase, applied, report)
	r.record(passLogger, report, res)
	if err := res.abort(); err != nil {
		return err
	}

	res = r.stagePush(ctx, m, phase)
	r.record(passLogger, report, res)
	return res.abort()
}

func (r *Runner) record(logger *slog.Logger, report *Report, res Result) {
	report.Results = append(report.Results, res)
	attrs := []logging.Attr{
		logging.String(logging.FieldStage, string(res.Stage)),
		logging.String("status", string(res.Status)),
	}
	if res.Detail != "" {
		attrs = append(attrs, logging.String("detail", res.Detail))
	}
	switch res.Status {
	case StatusFailed:
		if res.Err != nil {
			attrs = append(attrs, logging.Error(res.Err))
		}
		logger.Error("stage failed", logging.Args(attrs...)...)
	case StatusDeclined:
		logger.Warn("stage declined", logging.Args(attrs...)...)
	default:
		logger.Info("stage completed", logging.Args(attrs...)...)
	}
}

func (r *Runner) stageChangelog(ctx context.Context, m *Manifest, phase version.Phase) Result {
	res := Result{Stage: StageChangelog, Phase: phase}
	if r.cfg.Changelog.UseBuiltin {
		sourceDir := filepath.Join(m.Root, r.cfg.Changelog.SourceDir)
		output := filepath.Join(m.Root, m.ChangelogFile)
		count, err := changelog.Generate(sourceDir, output, r.cfg.Changelog.Exclude)
		if err != nil {
			res.Status, res.Err = StatusFailed, err
			return res
		}
		m.HasChangelog = fileExists(output)
		res.Status = StatusOK
		res.Detail = fmt.Sprintf("%d entries written to %s", count, m.ChangelogFile)
		fmt.Fprintf(r.out, "Changelog regenerated: %s\n", res.Detail)
		return res
	}

	skipped, err := changelog.RunScript(ctx, m.Root, r.cfg.Release.Generator, r.out, r.out)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	if skipped {
		res.Status = StatusSkipped
		res.Detail = "generator script not found"
		fmt.Fprintln(r.out, "Changelog generator not found, skipping")
		return res
	}
	m.HasChangelog = fileExists(filepath.Join(m.Root, m.ChangelogFile))
	res.Status = StatusOK
	res.Detail = "generator script completed"
	return res
}

func (r *Runner) stageBump(ctx context.Context, m *Manifest, phase version.Phase) (Result, string) {
	res := Result{Stage: StageBump, Phase: phase}
	preview, err := r.tool.Preview(ctx, phase)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, ""
	}
	fmt.Fprintf(r.out, "Version bump (%s): %s -> %s\n", phase, m.Current, preview)

	ok, err := r.confirm.Confirm(fmt.Sprintf("Bump version to %s?", preview))
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("read confirmation: %w", err)
		return res, ""
	}
	if !ok {
		res.Status = StatusDeclined
		res.Detail = fmt.Sprintf("bump to %s declined", preview)
		return res, ""
	}

	applied, err := r.tool.Apply(ctx, phase)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, ""
	}
	parsed, err := version.Parse(applied)
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("version tool applied %q: %w", applied, err)
		return res, ""
	}
	res.Status = StatusOK
	res.Detail = fmt.Sprintf("%s -> %s", m.Current, applied)
	m.Current = parsed
	return res, applied
}

func (r *Runner) stageMetadata(m *Manifest, phase version.Phase, applied string) Result {
	res := Result{Stage: StageMetadata, Phase: phase}
	if !m.HasMetadata {
		res.Status = StatusSkipped
		if m.MetadataFile == "" {
			res.Detail = "no metadata file configured"
		} else {
			res.Detail = fmt.Sprintf("%s not present", m.MetadataFile)
		}
		fmt.Fprintf(r.out, "Metadata update skipped: %s\n", res.Detail)
		return res
	}
	changed, err := metadata.Patch(filepath.Join(m.Root, m.MetadataFile), applied)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	res.Status = StatusOK
	if changed {
		res.Detail = fmt.Sprintf("%s version set to %s", m.MetadataFile, applied)
	} else {
		res.Detail = fmt.Sprintf("%s already at %s", m.MetadataFile, applied)
	}
	return res
}

func (r *Runner) stageCommit(m *Manifest, phase version.Phase, applied string, report *Report) Result {
	res := Result{Stage: StageCommit, Phase: phase}

	if err := r.showPending(m); err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}

	ok, err := r.confirm.Confirm("Commit release changes?")
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("read confirmation: %w", err)
		return res
	}
	if !ok {
		res.Status = StatusDeclined
		res.Detail = "commit declined"
		return res
	}

	staged, err := r.repo.Stage(m.Candidates()...)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	hash, err := r.repo.Commit(fmt.Sprintf("Bump version to %s and update changelog", applied))
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	short := hash
	if len(short) > 8 {
		short = short[:8]
	}
	res.Status = StatusOK
	res.Detail = fmt.Sprintf("committed %s (%d files)", short, len(staged))

	if !phase.IsPre() {
		tag := r.cfg.Release.TagPrefix + applied
		if err := r.repo.CreateTag(tag, "Release "+applied); err != nil {
			res.Status, res.Err = StatusFailed, err
			return res
		}
		report.Tag = tag
		res.Detail += ", tagged " + tag
	}
	fmt.Fprintf(r.out, "%s\n", res.Detail)
	return res
}

// showPending prints the staged paths and a unified diff for every release
// artifact before the commit confirmation.
func (r *Runner) showPending(m *Manifest) error {
	staged, err := r.repo.StagedPaths()
	if err != nil {
		return err
	}
	if len(staged) > 0 {
		rows := make([][]string, 0, len(staged))
		for _, file := range staged {
			rows = append(rows, []string{file.Path, file.Code})
		}
		fmt.Fprintln(r.out, "Already staged:")
		fmt.Fprintln(r.out, tableview.Render([]string{"File", "Status"}, rows))
	}

	opts := diffview.Options{Color: r.color}
	for _, path := range m.Candidates() {
		oldText, _, err := r.repo.HeadContent(path)
		if err != nil {
			return err
		}
		newText, _, err := r.repo.WorkingContent(path)
		if err != nil {
			return err
		}
		if diff := diffview.Unified(path, oldText, newText, opts); diff != "" {
			fmt.Fprint(r.out, diff)
			fmt.Fprintln(r.out)
		}
	}
	return nil
}

func (r *Runner) stagePush(ctx context.Context, m *Manifest, phase version.Phase) Result {
	res := Result{Stage: StagePush, Phase: phase}
	remote := r.cfg.Release.Remote

	ok, err := r.confirm.Confirm(fmt.Sprintf("Push %s and tags to %s?", m.Branch, remote))
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("read confirmation: %w", err)
		return res
	}
	if !ok {
		res.Status = StatusDeclined
		res.Detail = "push declined, release is complete locally"
		fmt.Fprintln(r.out, "Push skipped")
		return res
	}

	if err := r.repo.Push(ctx, remote, m.Branch); err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	if err := r.repo.PushTags(ctx, remote); err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	res.Status = StatusOK
	res.Detail = fmt.Sprintf("pushed %s and tags to %s", m.Branch, remote)
	fmt.Fprintf(r.out, "Pushed %s and tags to %s\n", m.Branch, remote)
	return res
}
