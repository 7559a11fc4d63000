// Package journal persists release run history in SQLite.
//
// Each run records the requested phase, the version transition, the tag if
// one was created, an overall outcome, and the per-stage results in execution
// order. The schema is managed through embedded migrations applied on Open.
//
// Recording history is best effort for callers: a release that cannot be
// journaled is still a release, so callers log journal errors instead of
// failing on them.
package journal
