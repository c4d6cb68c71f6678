// Package scanner discovers legacy artifacts under a set of paths.
package scanner

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/relic/pkg/config"
	"github.com/panbanda/relic/pkg/models"
)

// File is a discovered artifact and its detected technology.
type File struct {
	Path       string            `json:"path"`
	Technology models.Technology `json:"technology"`
}

// Scanner finds analyzable files.
type Scanner struct {
	config   *config.Config
	techs    map[models.Technology]bool
	matchers []gitignore.Matcher
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithTechnologies keeps only files of the given technologies.
func WithTechnologies(techs ...models.Technology) Option {
	return func(s *Scanner) {
		if len(techs) == 0 {
			return
		}
		s.techs = make(map[models.Technology]bool, len(techs))
		for _, t := range techs {
			s.techs[t] = true
		}
	}
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines config patterns with .gitignore files found
// between root and the repository root.
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = nil
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		base := findGitRoot(root)
		if base == "" {
			base = root
		}
		if gitPatterns, err := gitignore.ReadPatterns(osfs.New(base), nil); err == nil {
			// Patterns are relative to base; re-anchor them onto root.
			if prefix := relativeDomain(base, root); len(prefix) > 0 {
				s.matchers = append(s.matchers, &anchoredMatcher{
					prefix:  prefix,
					matcher: gitignore.NewMatcher(gitPatterns),
				})
			} else {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// relativeDomain returns root's path components relative to base.
func relativeDomain(base, root string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(base, absRoot)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}

// anchoredMatcher matches paths relative to a subdirectory of the
// repository that owns the patterns.
type anchoredMatcher struct {
	prefix  []string
	matcher gitignore.Matcher
}

func (a *anchoredMatcher) Match(path []string, isDir bool) bool {
	full := make([]string, 0, len(a.prefix)+len(path))
	full = append(full, a.prefix...)
	full = append(full, path...)
	return a.matcher.Match(full, isDir)
}

// isExcluded checks if a path relative to the scan root is excluded.
func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	if isDir && s.config.ShouldExcludeDir(filepath.Base(relPath)) {
		return true
	}
	pathParts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// Scan resolves files and directories into a sorted, de-duplicated file list.
func (s *Scanner) Scan(paths ...string) ([]File, error) {
	seen := make(map[string]bool)
	var out []File

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}

		var found []File
		if info.IsDir() {
			found, err = s.ScanDir(p)
			if err != nil {
				return nil, err
			}
		} else if f, ok := s.ScanFile(p); ok {
			found = []File{f}
		}

		for _, f := range found {
			if !seen[f.Path] {
				seen[f.Path] = true
				out = append(out, f)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ScanDir recursively scans a directory for artifacts. Symlinks resolving
// outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]File, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	files := make([]File, 0, 256)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}
		if tech := s.detect(path); s.keep(tech) {
			files = append(files, File{Path: path, Technology: tech})
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single, explicitly named file should be analyzed.
// Explicit files bypass exclusion patterns.
func (s *Scanner) ScanFile(path string) (File, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return File{}, false
	}
	tech := s.detect(path)
	if !s.keep(tech) {
		return File{}, false
	}
	return File{Path: path, Technology: tech}, true
}

func (s *Scanner) keep(tech models.Technology) bool {
	if tech == models.TechUnknown {
		return false
	}
	return s.techs == nil || s.techs[tech]
}

// detect classifies by extension and sniffs content for files whose
// extension says nothing, such as extensionless scripts and exported XML.
func (s *Scanner) detect(path string) models.Technology {
	if tech := models.DetectTechnology(path, nil); tech != models.TechUnknown {
		return tech
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".xml":
	default:
		return models.TechUnknown
	}
	head, err := readHead(path)
	if err != nil {
		return models.TechUnknown
	}
	return models.DetectTechnology(path, head)
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, models.SniffLimit))
}

// GroupByTechnology groups files by technology.
func GroupByTechnology(files []File) map[models.Technology][]string {
	groups := make(map[models.Technology][]string)
	for _, f := range files {
		groups[f.Technology] = append(groups[f.Technology], f.Path)
	}
	return groups
}

// Paths returns the paths of files, in order.
func Paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
