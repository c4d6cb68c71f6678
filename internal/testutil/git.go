package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepo is a throwaway repository for history tests.
type GitRepo struct {
	Path string
	repo *git.Repository
}

// InitGitRepo creates an empty repository in a temp directory.
func InitGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	return &GitRepo{Path: path, repo: repo}
}

// Commit writes files, stages them and commits at the given time,
// returning the commit hash.
func (g *GitRepo) Commit(t *testing.T, when time.Time, files map[string]string) string {
	t.Helper()
	WriteTree(t, g.Path, files)

	w, err := g.repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree error: %v", err)
	}
	for name := range files {
		if _, err := w.Add(filepath.ToSlash(name)); err != nil {
			t.Fatalf("Add(%s) error: %v", name, err)
		}
	}

	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	hash, err := w.Commit("update", &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	return hash.String()
}
