package engine

import (
	"github.com/muninn-vcs/muninn/internal/graph"
)

// Graph builds the unified multi-timeline commit graph for
// visualization. It reads refs, the position and the pending rewound
// chain, and mutates nothing.
func (e *Engine) Graph() ([]graph.Node, error) {
	head, err := e.head()
	if err != nil {
		return nil, err
	}
	active, err := e.activeTimeline(head)
	if err != nil {
		return nil, err
	}

	slugs, err := e.refs.ListRefs()
	if err != nil {
		return nil, err
	}
	timelines := make([]graph.Timeline, 0, len(slugs))
	for _, slug := range slugs {
		tip, err := e.refs.ReadRef(slug)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, graph.Timeline{Slug: slug, Tip: tip})
	}

	in := graph.Input{
		Store:          e.objects,
		Timelines:      timelines,
		ActiveTimeline: active,
	}
	if head.HasCommit {
		in.Head = head.Commit
	}
	if prevTip, ok, err := e.refs.PrevTip(); err != nil {
		return nil, err
	} else if ok {
		in.PrevTip = &prevTip
	}

	return graph.Build(in)
}
