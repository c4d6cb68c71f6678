package remote

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParse_LocalPath(t *testing.T) {
	dir := t.TempDir()

	src, err := Parse(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for local path, got %+v", src)
	}
}

func TestParse_NotARepository(t *testing.T) {
	for _, input := range []string{
		"missing.pl",
		filepath.Join(t.TempDir(), "missing", "dir"),
		"./scripts/etl",
		"a/b/c",
		"example.com/repo",
	} {
		src, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", input, err)
		}
		if src != nil {
			t.Errorf("Parse(%q) = %+v, want nil", input, src)
		}
	}
}

func TestParse_GitHubShorthand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "simple owner/repo",
			input:   "acme/etl-scripts",
			wantURL: "https://github.com/acme/etl-scripts",
		},
		{
			name:    "with tag ref",
			input:   "acme/etl-scripts@v2.1.0",
			wantURL: "https://github.com/acme/etl-scripts",
			wantRef: "v2.1.0",
		},
		{
			name:    "with branch ref",
			input:   "owner/repo@feature-branch",
			wantURL: "https://github.com/owner/repo",
			wantRef: "feature-branch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_FullURLs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "github.com without scheme",
			input:   "github.com/acme/bw-processes",
			wantURL: "https://github.com/acme/bw-processes",
		},
		{
			name:    "https URL",
			input:   "https://github.com/acme/bw-processes",
			wantURL: "https://github.com/acme/bw-processes",
		},
		{
			name:    "gitlab URL",
			input:   "https://gitlab.com/group/project",
			wantURL: "https://gitlab.com/group/project",
		},
		{
			name:    "SSH URL",
			input:   "git@github.com:owner/repo.git",
			wantURL: "git@github.com:owner/repo.git",
		},
		{
			name:    "SSH URL with ref",
			input:   "git@github.com:owner/repo.git@main",
			wantURL: "git@github.com:owner/repo.git",
			wantRef: "main",
		},
		{
			name:    "URL with ref",
			input:   "gitlab.com/group/project@release-3",
			wantURL: "https://gitlab.com/group/project",
			wantRef: "release-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_EmptyRef(t *testing.T) {
	_, err := Parse("owner/repo@")
	if !errors.Is(err, ErrEmptyRef) {
		t.Errorf("Parse error = %v, want ErrEmptyRef", err)
	}
}

func TestSource_String(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{Source{URL: "https://github.com/a/b"}, "https://github.com/a/b"},
		{Source{URL: "https://github.com/a/b", Ref: "v1"}, "https://github.com/a/b@v1"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
