// Package graph builds the multi-timeline commit graph used to render
// history visually. It is a pure read-side projection over the object
// store and the timeline refs; it never mutates state.
package graph

import (
	"sort"
	"time"

	"github.com/muninn-vcs/muninn/internal/objects"
)

// Node is one commit in the rendered graph.
type Node struct {
	ID        objects.ID
	Message   string
	Author    string
	Timestamp time.Time
	Timeline  string // slug of the timeline the node is drawn on
	Parents   []objects.ID
	Lane      int
	IsHead    bool
}

// Input describes the state the graph is projected from.
type Input struct {
	Store *objects.Store

	// Timelines in stable order, main first. Lane index follows this
	// order.
	Timelines []Timeline

	// Head is the current position's commit; zero when there are no
	// commits yet.
	Head objects.ID

	// ActiveTimeline is the slug the position belongs to (directly, or
	// by descent while detached).
	ActiveTimeline string

	// PrevTip is the saved original tip, set only while rewound. Its
	// chain is drawn on the active timeline's lane so the "future"
	// commits stay visible even when no ref reaches them.
	PrevTip *objects.ID
}

// Timeline pairs a slug with its ref tip.
type Timeline struct {
	Slug string
	Tip  objects.ID
}

// Build walks every timeline tip (and the pending rewound chain, if any)
// and returns a deduplicated node list sorted by timestamp descending.
//
// Attribution is first-claim: a shared ancestor belongs to whichever
// walk reached it first, and main is always walked first. A final pass
// forces the head commit onto the active timeline regardless of which
// walk claimed it, so the current position is always drawn on its own
// lane.
func Build(in Input) ([]Node, error) {
	visited := make(map[objects.ID]*Node)
	var order []objects.ID

	walk := func(tip objects.ID, slug string, lane int) error {
		current := tip
		for {
			if _, seen := visited[current]; seen {
				return nil
			}
			commit, err := in.Store.ReadCommit(current)
			if err != nil {
				return err
			}
			node := &Node{
				ID:        current,
				Message:   commit.Message,
				Author:    commit.Author,
				Timestamp: commit.Time,
				Timeline:  slug,
				Lane:      lane,
			}
			if commit.Parent != nil {
				node.Parents = []objects.ID{*commit.Parent}
			}
			visited[current] = node
			order = append(order, current)
			if commit.Parent == nil {
				return nil
			}
			current = *commit.Parent
		}
	}

	activeLane := 0
	for lane, tl := range in.Timelines {
		if tl.Slug == in.ActiveTimeline {
			activeLane = lane
		}
		if err := walk(tl.Tip, tl.Slug, lane); err != nil {
			return nil, err
		}
	}

	if in.PrevTip != nil {
		if err := walk(*in.PrevTip, in.ActiveTimeline, activeLane); err != nil {
			return nil, err
		}
	}

	// The head always renders on the active timeline, even when a
	// sibling's walk claimed the commit first.
	if node, ok := visited[in.Head]; ok {
		node.IsHead = true
		if in.ActiveTimeline != "" {
			node.Timeline = in.ActiveTimeline
			node.Lane = activeLane
		}
	}

	nodes := make([]Node, 0, len(order))
	for _, id := range order {
		nodes = append(nodes, *visited[id])
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Timestamp.After(nodes[j].Timestamp)
	})
	return nodes, nil
}
