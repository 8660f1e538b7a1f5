package engine

import "github.com/muninn-vcs/muninn/internal/worktree"

// Stash snapshots the uncommitted working state into the single stash
// slot, overwriting any previous value. The slot has no history; it
// exists to swap the working contents out and back across a temporary
// checkout.
func (e *Engine) Stash() error {
	treeID, err := e.builder().BuildTree(e.workDir)
	if err != nil {
		return err
	}
	return e.refs.SetStash(treeID)
}

// PopStash restores the stashed working state and clears the slot. An
// empty slot is a benign no-op: it returns false and touches nothing.
func (e *Engine) PopStash() (bool, error) {
	treeID, ok, err := e.refs.StashSlot()
	if err != nil || !ok {
		return false, err
	}
	if err := worktree.Materialize(e.objects, e.workDir, treeID); err != nil {
		return false, err
	}
	if err := e.refs.ClearStash(); err != nil {
		return false, err
	}
	return true, nil
}

// HasStash reports whether the stash slot holds a value.
func (e *Engine) HasStash() (bool, error) {
	_, ok, err := e.refs.StashSlot()
	return ok, err
}
