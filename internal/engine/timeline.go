package engine

import (
	"github.com/muninn-vcs/muninn/internal/objects"
	"github.com/muninn-vcs/muninn/internal/worktree"
)

// TimelineEntry is one row of the timeline listing.
type TimelineEntry struct {
	Slug        string
	Label       string
	IsActive    bool
	CommitCount int
}

// CreateTimeline creates a named timeline starting at an existing
// commit and returns its slug.
func (e *Engine) CreateTimeline(from objects.ID, label string) (string, error) {
	if _, err := e.resolveCommit(from); err != nil {
		return "", err
	}
	slug, err := e.refs.UniqueSlug(label)
	if err != nil {
		return "", err
	}
	if err := e.refs.WriteRef(slug, from); err != nil {
		return "", err
	}
	if label == "" {
		label = slug
	}
	if err := e.refs.SetLabel(slug, label); err != nil {
		return "", err
	}
	return slug, nil
}

// ListTimelines reports every timeline, main first. The listing never
// loses the active attribution: a detached position is attributed to the
// timeline its history descends from.
func (e *Engine) ListTimelines() ([]TimelineEntry, error) {
	head, err := e.head()
	if err != nil {
		return nil, err
	}
	active, err := e.activeTimeline(head)
	if err != nil {
		return nil, err
	}
	labels, err := e.refs.ReadLabels()
	if err != nil {
		return nil, err
	}

	slugs, err := e.refs.ListRefs()
	if err != nil {
		return nil, err
	}
	// A freshly initialized project has HEAD on main but no ref file
	// until the first commit; the timeline still exists.
	if !head.Detached && !head.HasCommit {
		found := false
		for _, slug := range slugs {
			if slug == head.Slug {
				found = true
			}
		}
		if !found {
			slugs = append([]string{head.Slug}, slugs...)
		}
		if active == "" {
			active = head.Slug
		}
	}

	var entries []TimelineEntry
	for _, slug := range slugs {
		entry := TimelineEntry{
			Slug:     slug,
			Label:    labels[slug],
			IsActive: slug == active,
		}
		if entry.Label == "" {
			entry.Label = slug
		}
		if tip, err := e.refs.ReadRef(slug); err == nil {
			count, err := e.objects.ChainLength(tip)
			if err != nil {
				return nil, err
			}
			entry.CommitCount = count
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SwitchTimeline moves the position to a timeline's tip and overwrites
// the working directory with its content. Uncommitted content is reset,
// not merged; any pending rewind is abandoned.
func (e *Engine) SwitchTimeline(slug string) error {
	tip, err := e.refs.ReadRef(slug)
	if err != nil {
		return err
	}
	commit, err := e.objects.ReadCommit(tip)
	if err != nil {
		return err
	}
	if err := e.refs.ClearPrevTip(); err != nil {
		return err
	}
	if err := e.refs.AttachHead(slug); err != nil {
		return err
	}
	return worktree.Materialize(e.objects, e.workDir, commit.Tree)
}

// DeleteTimeline removes a timeline. The main timeline and the active
// timeline are protected.
func (e *Engine) DeleteTimeline(slug string) error {
	return e.refs.DeleteRef(slug)
}
