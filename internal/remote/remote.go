// Package remote recognises repository references given where a local path
// is expected.
package remote

import (
	"errors"
	"os"
	"strings"
)

// ErrEmptyRef is returned for a reference ending in a bare "@".
var ErrEmptyRef = errors.New("empty ref after @")

// Source is a remote repository to analyze.
type Source struct {
	URL string // normalized git URL
	Ref string // branch, tag, or SHA (empty = default branch)
}

// String renders the source as it would be typed, with the ref suffix.
func (s *Source) String() string {
	if s.Ref == "" {
		return s.URL
	}
	return s.URL + "@" + s.Ref
}

var knownHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

// Parse detects if a path is a remote reference. It returns nil when the
// path exists locally or does not look like a repository reference.
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// scp-style URLs carry their own "@" before the host.
	prefix := ""
	rest := path
	if strings.HasPrefix(rest, "git@") {
		prefix, rest = "git@", rest[len("git@"):]
	}

	ref := ""
	if idx := strings.LastIndex(rest, "@"); idx != -1 {
		ref = rest[idx+1:]
		rest = rest[:idx]
		if ref == "" {
			return nil, ErrEmptyRef
		}
	}

	switch {
	case prefix != "":
		return &Source{URL: prefix + rest, Ref: ref}, nil
	case hasScheme(rest):
		return &Source{URL: rest, Ref: ref}, nil
	case hasKnownHost(rest):
		return &Source{URL: "https://" + rest, Ref: ref}, nil
	case isGitHubShorthand(rest):
		return &Source{URL: "https://github.com/" + rest, Ref: ref}, nil
	}
	return nil, nil
}

func hasScheme(path string) bool {
	for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
		if strings.HasPrefix(path, scheme) {
			return true
		}
	}
	return false
}

func hasKnownHost(path string) bool {
	for _, host := range knownHosts {
		if strings.HasPrefix(path, host) && len(path) > len(host) {
			return true
		}
	}
	return false
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	// Must have exactly one slash
	if strings.Count(path, "/") != 1 {
		return false
	}
	// No dots before the slash (would indicate a domain)
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	// Both parts must be non-empty
	return slashIdx > 0 && slashIdx < len(path)-1
}
