// Package refs manages the named side of the version store: timeline
// refs, the HEAD position, the label table, and the two single-value
// markers (prev-tip, stash). Everything is flat files under the hidden
// store directory so a support tool can read the state directly.
package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muninn-vcs/muninn/internal/objects"
)

// Main is the permanent default timeline. It can never be deleted.
const Main = "main"

var (
	// ErrUnknownTimeline is returned for a slug with no ref.
	ErrUnknownTimeline = errors.New("unknown timeline")
	// ErrInvalidOperation is returned for deletions the registry forbids.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Head is the current position: attached to a timeline ref, or detached
// at a bare commit.
type Head struct {
	Slug     string // active timeline; empty when detached
	Commit   objects.ID
	Detached bool
	HasCommit bool // false before the first commit
}

// Registry reads and writes refs under one store directory.
type Registry struct {
	dir string
}

// NewRegistry opens a registry rooted at the hidden store directory,
// creating the ref layout if needed.
func NewRegistry(storeDir string) (*Registry, error) {
	headsDir := filepath.Join(storeDir, "refs", "heads")
	if err := os.MkdirAll(headsDir, 0755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &Registry{dir: storeDir}, nil
}

func (r *Registry) refPath(slug string) string {
	return filepath.Join(r.dir, "refs", "heads", slug)
}

func (r *Registry) headPath() string    { return filepath.Join(r.dir, "HEAD") }
func (r *Registry) labelsPath() string  { return filepath.Join(r.dir, "labels") }
func (r *Registry) prevTipPath() string { return filepath.Join(r.dir, "prev-tip") }
func (r *Registry) stashPath() string   { return filepath.Join(r.dir, "stash") }

// ReadRef returns the commit a timeline ref points at.
func (r *Registry) ReadRef(slug string) (objects.ID, error) {
	data, err := os.ReadFile(r.refPath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return objects.ID{}, fmt.Errorf("%w: %s", ErrUnknownTimeline, slug)
		}
		return objects.ID{}, fmt.Errorf("read ref %s: %w", slug, err)
	}
	id, err := objects.ParseID(strings.TrimSpace(string(data)))
	if err != nil {
		return objects.ID{}, fmt.Errorf("ref %s: %w", slug, err)
	}
	return id, nil
}

// WriteRef points a timeline ref at a commit, creating it if needed.
func (r *Registry) WriteRef(slug string, id objects.ID) error {
	if err := os.WriteFile(r.refPath(slug), []byte(id.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("write ref %s: %w", slug, err)
	}
	return nil
}

// DeleteRef removes a timeline ref and its label. The main timeline is
// permanent; the active timeline must be switched away from first.
func (r *Registry) DeleteRef(slug string) error {
	if slug == Main {
		return fmt.Errorf("%w: the main timeline cannot be deleted", ErrInvalidOperation)
	}
	head, err := r.ReadHead()
	if err != nil {
		return err
	}
	if !head.Detached && head.Slug == slug {
		return fmt.Errorf("%w: cannot delete the active timeline; switch away first", ErrInvalidOperation)
	}
	if err := os.Remove(r.refPath(slug)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrUnknownTimeline, slug)
		}
		return fmt.Errorf("delete ref %s: %w", slug, err)
	}
	return r.DeleteLabel(slug)
}

// ListRefs returns all timeline slugs, main first, the rest sorted.
func (r *Registry) ListRefs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.dir, "refs", "heads"))
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	var slugs []string
	hasMain := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == Main {
			hasMain = true
			continue
		}
		slugs = append(slugs, entry.Name())
	}
	sort.Strings(slugs)
	if hasMain {
		slugs = append([]string{Main}, slugs...)
	}
	return slugs, nil
}

// ReadHead parses the HEAD file. An attached HEAD whose ref file does
// not exist yet means "on this timeline, no commits yet".
func (r *Registry) ReadHead() (Head, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return Head{}, fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))

	if slug, ok := strings.CutPrefix(content, "ref: refs/heads/"); ok {
		head := Head{Slug: slug}
		id, err := r.ReadRef(slug)
		if err != nil {
			if errors.Is(err, ErrUnknownTimeline) {
				return head, nil
			}
			return Head{}, err
		}
		head.Commit = id
		head.HasCommit = true
		return head, nil
	}

	id, err := objects.ParseID(content)
	if err != nil {
		return Head{}, fmt.Errorf("HEAD: %w", err)
	}
	return Head{Commit: id, Detached: true, HasCommit: true}, nil
}

// AttachHead points HEAD at a timeline ref.
func (r *Registry) AttachHead(slug string) error {
	content := fmt.Sprintf("ref: refs/heads/%s\n", slug)
	if err := os.WriteFile(r.headPath(), []byte(content), 0644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// DetachHead points HEAD directly at a commit.
func (r *Registry) DetachHead(id objects.ID) error {
	if err := os.WriteFile(r.headPath(), []byte(id.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// ---------------------------
// Label table
// ---------------------------

// ReadLabels loads the slug -> display label table.
func (r *Registry) ReadLabels() (map[string]string, error) {
	labels := make(map[string]string)
	data, err := os.ReadFile(r.labelsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return labels, nil
		}
		return nil, fmt.Errorf("read labels: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		slug, label, ok := strings.Cut(line, "=")
		if !ok || slug == "" {
			continue
		}
		labels[slug] = label
	}
	return labels, nil
}

// SetLabel records the display label for a slug.
func (r *Registry) SetLabel(slug, label string) error {
	labels, err := r.ReadLabels()
	if err != nil {
		return err
	}
	labels[slug] = label
	return r.writeLabels(labels)
}

// DeleteLabel removes a slug from the label table.
func (r *Registry) DeleteLabel(slug string) error {
	labels, err := r.ReadLabels()
	if err != nil {
		return err
	}
	delete(labels, slug)
	return r.writeLabels(labels)
}

func (r *Registry) writeLabels(labels map[string]string) error {
	slugs := make([]string, 0, len(labels))
	for slug := range labels {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	var sb strings.Builder
	for _, slug := range slugs {
		sb.WriteString(slug)
		sb.WriteByte('=')
		sb.WriteString(labels[slug])
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(r.labelsPath(), []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}

// ---------------------------
// Single-value markers
// ---------------------------

// readMarker loads an optional single-id marker file.
func (r *Registry) readMarker(path string) (objects.ID, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return objects.ID{}, false, nil
		}
		return objects.ID{}, false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	id, err := objects.ParseID(strings.TrimSpace(string(data)))
	if err != nil {
		return objects.ID{}, false, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return id, true, nil
}

func (r *Registry) writeMarker(path string, id objects.ID) error {
	if err := os.WriteFile(path, []byte(id.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (r *Registry) clearMarker(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear %s: %w", filepath.Base(path), err)
	}
	return nil
}

// PrevTip returns the saved original tip, present only while rewound.
func (r *Registry) PrevTip() (objects.ID, bool, error) {
	return r.readMarker(r.prevTipPath())
}

// SetPrevTip records the tip the position was rewound away from.
func (r *Registry) SetPrevTip(id objects.ID) error {
	return r.writeMarker(r.prevTipPath(), id)
}

// ClearPrevTip removes the rewound marker.
func (r *Registry) ClearPrevTip() error {
	return r.clearMarker(r.prevTipPath())
}

// StashSlot returns the stashed tree id, if any.
func (r *Registry) StashSlot() (objects.ID, bool, error) {
	return r.readMarker(r.stashPath())
}

// SetStash records a tree id in the single stash slot, overwriting any
// previous value.
func (r *Registry) SetStash(id objects.ID) error {
	return r.writeMarker(r.stashPath(), id)
}

// ClearStash empties the stash slot.
func (r *Registry) ClearStash() error {
	return r.clearMarker(r.stashPath())
}

// ---------------------------
// Slugs
// ---------------------------

// Slugify normalizes a display label into a ref-safe identifier:
// lowercase, runs of non-alphanumerics collapsed to "-", trimmed.
func Slugify(label string) string {
	var sb strings.Builder
	lastSep := true
	for _, c := range strings.ToLower(label) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			sb.WriteRune(c)
			lastSep = false
		default:
			if !lastSep {
				sb.WriteByte('-')
				lastSep = true
			}
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "timeline"
	}
	return slug
}

// UniqueSlug derives a slug from a label and disambiguates it against
// existing refs with a numeric suffix.
func (r *Registry) UniqueSlug(label string) (string, error) {
	base := Slugify(label)
	slug := base
	for n := 2; ; n++ {
		if _, err := os.Stat(r.refPath(slug)); os.IsNotExist(err) {
			return slug, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("check ref %s: %w", slug, err)
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
