// Package history samples a git repository's past and reads artifact
// contents straight from commit trees, without touching the working tree.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// ErrInvalidPeriod is returned for sampling periods other than weekly or monthly.
var ErrInvalidPeriod = errors.New("invalid period (want weekly or monthly)")

// Period is the sampling interval.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Weekly, Monthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// ParseSince parses a duration string like "3m", "6m", "1y", "2w" or "90d".
func ParseSince(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	unit := s[len(s)-1]
	value := s[:len(s)-1]

	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	switch unit {
	case 'm':
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case 'y':
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration unit: %c (use m, y, w, or d)", unit)
	}
}

// Snapshot is a sampled commit.
type Snapshot struct {
	SHA  string    `json:"sha" yaml:"sha" toon:"sha"`
	Date time.Time `json:"date" yaml:"date" toon:"date"`
}

// Short returns the abbreviated commit hash.
func (s Snapshot) Short() string {
	if len(s.SHA) > 8 {
		return s.SHA[:8]
	}
	return s.SHA
}

// Blob is a file as it existed in a snapshot.
type Blob struct {
	Path    string
	Content []byte
}

// Repo is an opened git repository.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository containing path, searching parent directories.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

// Clone fetches url into memory. Nothing is written to disk; the worktree
// lives in a billy memfs and is never read.
func Clone(ctx context.Context, url string, progress io.Writer) (*Repo, error) {
	repo, err := git.CloneContext(ctx, memory.NewStorage(), memfs.New(), &git.CloneOptions{
		URL:      url,
		Progress: progress,
	})
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}
	return &Repo{repo: repo}, nil
}

// Resolve finds the commit a branch, tag or hash names. An empty rev means
// HEAD. Branch names also match remote-tracking branches of origin.
func (r *Repo) Resolve(rev string) (Snapshot, error) {
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		var originErr error
		hash, originErr = r.repo.ResolveRevision(plumbing.Revision("origin/" + rev))
		if originErr != nil {
			return Snapshot{}, fmt.Errorf("resolve %s: %w", rev, err)
		}
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return Snapshot{}, fmt.Errorf("commit %s: %w", hash, err)
	}
	return Snapshot{SHA: commit.Hash.String(), Date: commit.Author.When}, nil
}

// Snapshots picks the first commit at or after each period boundary in
// [now-since, now), oldest first. With snap, boundaries align to Mondays or
// to the first of the month.
func (r *Repo) Snapshots(period Period, since time.Duration, snap bool, now time.Time) ([]Snapshot, error) {
	sinceTime := now.Add(-since)
	iter, err := r.repo.Log(&git.LogOptions{Since: &sinceTime, Until: &now})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []Snapshot
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, Snapshot{SHA: c.Hash.String(), Date: c.Author.When})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}

	// Newest first, as git log yields them.
	sort.SliceStable(commits, func(i, j int) bool { return commits[i].Date.After(commits[j].Date) })

	var result []Snapshot
	for _, boundary := range boundaries(period, sinceTime, now, snap) {
		if c := firstAtOrAfter(commits, boundary); c != nil {
			if len(result) == 0 || result[len(result)-1].SHA != c.SHA {
				result = append(result, *c)
			}
		}
	}
	return result, nil
}

// Files returns the blobs of the commit sha whose paths pass keep. Paths
// use forward slashes relative to the repository root.
func (r *Repo) Files(ctx context.Context, sha string, keep func(path string) bool) ([]Blob, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", sha, err)
	}

	var blobs []Blob
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !f.Mode.IsFile() || !keep(f.Name) {
			return nil
		}
		rd, err := f.Reader()
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rd)
		rd.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		blobs = append(blobs, Blob{Path: f.Name, Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blobs, nil
}

// boundaries generates sampling times from start up to now.
func boundaries(period Period, start, now time.Time, snap bool) []time.Time {
	var out []time.Time

	if snap {
		var current time.Time
		var next func(time.Time) time.Time
		switch period {
		case Weekly:
			current = startOfWeek(start)
			next = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
		case Monthly:
			current = startOfMonth(start)
			next = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		default:
			return nil
		}
		for current.Before(now) {
			out = append(out, current)
			current = next(current)
		}
		return out
	}

	var interval time.Duration
	switch period {
	case Weekly:
		interval = 7 * 24 * time.Hour
	case Monthly:
		interval = 30 * 24 * time.Hour
	default:
		return nil
	}
	for current := start; current.Before(now); current = current.Add(interval) {
		out = append(out, current)
	}
	return out
}

// startOfWeek returns the Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
}

// startOfMonth returns the first day of the month containing t.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// firstAtOrAfter finds the oldest commit on or after target. Commits are
// sorted newest first.
func firstAtOrAfter(commits []Snapshot, target time.Time) *Snapshot {
	for i := len(commits) - 1; i >= 0; i-- {
		if !commits[i].Date.Before(target) {
			return &commits[i]
		}
	}
	return nil
}
