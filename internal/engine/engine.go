// Package engine implements the snapshot/versioning operations a host
// application drives: commit, navigate, rewind/fork, stash, timeline
// management and the history graph.
//
// The engine is synchronous and single-writer per project folder. It
// assumes exclusive access to the working directory for the duration of
// any operation; callers serialize concurrent invocations themselves.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/muninn-vcs/muninn/internal/config"
	"github.com/muninn-vcs/muninn/internal/objects"
	"github.com/muninn-vcs/muninn/internal/refs"
	"github.com/muninn-vcs/muninn/internal/store"
	"github.com/muninn-vcs/muninn/internal/worktree"
)

// StoreDirName is the hidden per-project version-store directory.
const StoreDirName = ".muninn"

// MainLabel is the display label the permanent main timeline starts with.
const MainLabel = "Main"

// ErrNotRepository is returned when a directory has no version store.
var ErrNotRepository = errors.New("not a muninn project (no " + StoreDirName + " directory)")

// Engine operates on one project folder. Obtain one with Init or Open
// and Close it when done.
type Engine struct {
	workDir  string
	storeDir string
	objects  *objects.Store
	refs     *refs.Registry
	db       *store.DB
	author   string
}

// Init creates the version store inside dir and returns an open engine.
// The main timeline exists from the start; its ref appears with the
// first commit.
func Init(dir string) (*Engine, error) {
	storeDir := filepath.Join(dir, StoreDirName)
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	registry, err := refs.NewRegistry(storeDir)
	if err != nil {
		return nil, err
	}
	if err := registry.AttachHead(refs.Main); err != nil {
		return nil, err
	}
	if err := registry.SetLabel(refs.Main, MainLabel); err != nil {
		return nil, err
	}

	return Open(dir)
}

// Open opens the engine for an already initialized project folder.
func Open(dir string) (*Engine, error) {
	storeDir := filepath.Join(dir, StoreDirName)
	if _, err := os.Stat(storeDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("open project %s: %w", dir, err)
	}

	objStore, err := objects.NewStore(filepath.Join(storeDir, "objects"))
	if err != nil {
		return nil, err
	}
	registry, err := refs.NewRegistry(storeDir)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(filepath.Join(storeDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	cfg, err := config.Load(storeDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Engine{
		workDir:  dir,
		storeDir: storeDir,
		objects:  objStore,
		refs:     registry,
		db:       db,
		author:   cfg.Author(),
	}, nil
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	return e.db.Close()
}

// WorkDir returns the project folder the engine operates on.
func (e *Engine) WorkDir() string { return e.workDir }

func (e *Engine) builder() *worktree.Builder {
	return &worktree.Builder{Store: e.objects, Cache: e.db}
}

// head returns the current position.
func (e *Engine) head() (refs.Head, error) {
	return e.refs.ReadHead()
}

// activeTimeline resolves which timeline the position belongs to. An
// attached head names it directly; a detached head descends from the
// first timeline (main first) whose chain contains it. Empty when no
// timeline reaches the position.
func (e *Engine) activeTimeline(head refs.Head) (string, error) {
	if !head.Detached {
		return head.Slug, nil
	}
	slugs, err := e.refs.ListRefs()
	if err != nil {
		return "", err
	}
	for _, slug := range slugs {
		tip, err := e.refs.ReadRef(slug)
		if err != nil {
			return "", err
		}
		contains, err := e.objects.ChainContains(tip, head.Commit)
		if err != nil {
			return "", err
		}
		if contains {
			return slug, nil
		}
	}
	return "", nil
}

// IsRewound reports whether the position has been moved backward off a
// timeline's tip and the original tip is saved.
func (e *Engine) IsRewound() (bool, error) {
	_, ok, err := e.refs.PrevTip()
	return ok, err
}

// HasChanges compares the live working directory against the head
// commit's tree. A project with no commits yet is always dirty.
func (e *Engine) HasChanges() (bool, error) {
	head, err := e.head()
	if err != nil {
		return false, err
	}
	if !head.HasCommit {
		return true, nil
	}
	commit, err := e.objects.ReadCommit(head.Commit)
	if err != nil {
		return false, err
	}
	treeID, err := e.builder().BuildTree(e.workDir)
	if err != nil {
		return false, err
	}
	return treeID != commit.Tree, nil
}

// CommitEntry is one row of the linear history listing.
type CommitEntry struct {
	ID      objects.ID
	Message string
	Author  string
	Time    time.Time
}

// ListCommits walks the first-parent chain from the current position and
// returns it newest first. Only the active chain is listed; rewound-away
// commits stay visible through Graph.
func (e *Engine) ListCommits() ([]CommitEntry, error) {
	head, err := e.head()
	if err != nil {
		return nil, err
	}
	if !head.HasCommit {
		return nil, nil
	}

	var entries []CommitEntry
	current := head.Commit
	for {
		commit, err := e.objects.ReadCommit(current)
		if err != nil {
			return nil, err
		}
		entries = append(entries, CommitEntry{
			ID:      current,
			Message: commit.Message,
			Author:  commit.Author,
			Time:    commit.Time,
		})
		if commit.Parent == nil {
			return entries, nil
		}
		current = *commit.Parent
	}
}

// ReadFileAt returns the bytes of a file as recorded in a commit.
func (e *Engine) ReadFileAt(commitID objects.ID, relPath string) ([]byte, error) {
	commit, err := e.objects.ReadCommit(commitID)
	if err != nil {
		return nil, err
	}
	return worktree.ReadFileAt(e.objects, commit.Tree, relPath)
}
