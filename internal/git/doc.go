// Package git wraps go-git with the handful of repository operations a
// release needs: staging named artifacts, committing, annotated tagging, and
// pushing a branch with its tags.
//
// The package owns resolution of the committer identity from git
// configuration and the rule that only files present in the worktree are
// staged. Callers pass repository-relative paths.
//
// Always open repositories through Open. Operations that touch the network
// take a context; purely local operations do not.
package git
