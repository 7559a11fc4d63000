package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CreateTag creates an annotated tag named name at HEAD.
func (r *Repo) CreateTag(name, message string) error {
	if name == "" {
		return errors.New("tag name cannot be empty")
	}
	exists, err := r.TagExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("tag %s already exists", name)
	}
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	who, err := r.identity()
	if err != nil {
		return err
	}
	if _, err := r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  who,
		Message: message,
	}); err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

// TagExists reports whether a tag named name exists.
func (r *Repo) TagExists(name string) (bool, error) {
	_, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("look up tag %s: %w", name, err)
	}
	return true, nil
}
