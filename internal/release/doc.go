// Package release orchestrates the confirmable release pipeline: changelog
// generation, version bump, metadata sync, commit and tag, push. A run
// executes the pipeline once for the requested phase and then once more for
// an implicit prepatch bump that opens the next development cycle.
//
// The package owns the capability probe that turns configuration and
// repository state into a Manifest consumed by every stage, the per-stage
// Result records, and the single-instance lock held for the duration of a
// run. Declining a confirmation aborts the run, except at the push stage
// where a decline leaves the release complete locally.
//
// Always drive a release through Runner.Run. Stages never re-check file
// presence themselves; they trust the Manifest.
package release
