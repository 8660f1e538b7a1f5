package engine

import (
	"fmt"

	"github.com/muninn-vcs/muninn/internal/objects"
	"github.com/muninn-vcs/muninn/internal/worktree"
)

// resolveCommit verifies that id names a commit in the store before any
// state is touched, so a bad id never leaves a partial mutation behind.
func (e *Engine) resolveCommit(id objects.ID) (*objects.Commit, error) {
	ok, err := e.objects.HasCommit(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no snapshot %s", objects.ErrNotFound, id)
	}
	return e.objects.ReadCommit(id)
}

// Checkout overwrites the working directory with a commit's content. It
// moves no refs and records no rewind state; pair it with the stash slot
// to look at an old snapshot without losing current work.
func (e *Engine) Checkout(target objects.ID) error {
	commit, err := e.resolveCommit(target)
	if err != nil {
		return err
	}
	return worktree.Materialize(e.objects, e.workDir, commit.Tree)
}

// Navigate moves the working position to a snapshot.
//
// Moving backward off the active timeline's tip saves the tip as
// prev-tip (first rewind only); returning to the saved tip clears it.
// The position re-attaches when the target is exactly some timeline's
// tip and detaches otherwise. History is never destroyed: committing
// after a rewind forks instead of rewriting.
func (e *Engine) Navigate(target objects.ID) error {
	commit, err := e.resolveCommit(target)
	if err != nil {
		return err
	}

	head, err := e.head()
	if err != nil {
		return err
	}

	// Refresh-only when already positioned on the target.
	if head.HasCommit && head.Commit == target {
		return worktree.Materialize(e.objects, e.workDir, commit.Tree)
	}

	prevTip, rewound, err := e.refs.PrevTip()
	if err != nil {
		return err
	}

	// prev-tip only ever records a timeline's abandoned tip, so it is
	// saved exclusively when leaving an attached position. A detached
	// position has no tip to save; moving around from there changes
	// nothing a later fork would need to preserve.
	if head.HasCommit && !head.Detached && !rewound {
		backward, err := e.objects.IsAncestor(target, head.Commit)
		if err != nil {
			return err
		}
		if backward {
			if err := e.refs.SetPrevTip(head.Commit); err != nil {
				return err
			}
		}
	}

	if rewound && target == prevTip {
		if err := e.refs.ClearPrevTip(); err != nil {
			return err
		}
	}

	if slug, err := e.tipOf(target); err != nil {
		return err
	} else if slug != "" {
		if err := e.refs.AttachHead(slug); err != nil {
			return err
		}
	} else if err := e.refs.DetachHead(target); err != nil {
		return err
	}

	return worktree.Materialize(e.objects, e.workDir, commit.Tree)
}

// tipOf returns the slug whose ref points exactly at id, main first,
// or "" when no timeline's tip matches.
func (e *Engine) tipOf(id objects.ID) (string, error) {
	slugs, err := e.refs.ListRefs()
	if err != nil {
		return "", err
	}
	for _, slug := range slugs {
		tip, err := e.refs.ReadRef(slug)
		if err != nil {
			return "", err
		}
		if tip == id {
			return slug, nil
		}
	}
	return "", nil
}

// Restore checks out a snapshot's content and immediately commits it on
// the current position, so restoring is itself an undoable step.
func (e *Engine) Restore(target objects.ID) (objects.ID, error) {
	if err := e.Checkout(target); err != nil {
		return objects.ID{}, err
	}
	message := fmt.Sprintf("Restored from version %s", target.Short())
	return e.Commit(message, "")
}
