package engine

import (
	"fmt"
	"time"

	"github.com/muninn-vcs/muninn/internal/objects"
)

// DefaultForkLabel names a fork timeline when the caller supplies none.
const DefaultForkLabel = "New direction"

// Commit snapshots the working directory as a new commit. On a timeline
// tip this is a linear append. While rewound, the new commit starts a
// fork timeline (labeled forkLabel, or "New direction") and the original
// timeline keeps its original future intact.
func (e *Engine) Commit(message, forkLabel string) (objects.ID, error) {
	return e.CommitAt(message, forkLabel, time.Now())
}

// CommitAt is Commit with an explicit timestamp. Identical content,
// message, parent and timestamp always produce the same commit id.
func (e *Engine) CommitAt(message, forkLabel string, when time.Time) (objects.ID, error) {
	head, err := e.head()
	if err != nil {
		return objects.ID{}, err
	}

	treeID, err := e.builder().BuildTree(e.workDir)
	if err != nil {
		return objects.ID{}, err
	}

	commit := &objects.Commit{
		Tree:    treeID,
		Author:  e.author,
		Time:    when,
		Message: message,
	}
	if head.HasCommit {
		parent := head.Commit
		commit.Parent = &parent
	}

	commitID, err := e.objects.WriteCommit(commit)
	if err != nil {
		return objects.ID{}, err
	}

	_, rewound, err := e.refs.PrevTip()
	if err != nil {
		return objects.ID{}, err
	}

	if head.Detached {
		// Lazy fork: the new commit defines a fresh timeline. No ref is
		// touched, so the timeline the position came from keeps the
		// future it had before; a pending rewind marker is consumed.
		if err := e.fork(commitID, forkLabel, when); err != nil {
			return objects.ID{}, err
		}
		return commitID, nil
	}

	// Normal linear append on the active timeline. A stale prev-tip from
	// an abandoned rewind is dropped; re-attaching to a named tip ended
	// that rewind.
	if err := e.refs.WriteRef(head.Slug, commitID); err != nil {
		return objects.ID{}, err
	}
	if rewound {
		if err := e.refs.ClearPrevTip(); err != nil {
			return objects.ID{}, err
		}
	}

	return commitID, nil
}

// fork creates the new-direction timeline at commitID and repoints HEAD
// to it. Existing refs are never moved: navigation never advances or
// rewinds them, so every other timeline's tip is already where it
// belongs.
func (e *Engine) fork(commitID objects.ID, forkLabel string, when time.Time) error {
	slug, err := e.refs.UniqueSlug(fmt.Sprintf("fork-%s", when.Format("150405")))
	if err != nil {
		return err
	}
	label := forkLabel
	if label == "" {
		label = DefaultForkLabel
	}

	if err := e.refs.WriteRef(slug, commitID); err != nil {
		return err
	}
	if err := e.refs.SetLabel(slug, label); err != nil {
		return err
	}
	if err := e.refs.AttachHead(slug); err != nil {
		return err
	}
	return e.refs.ClearPrevTip()
}
