package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panbanda/relic/internal/logging"
	"github.com/panbanda/relic/internal/scanner"
	"github.com/panbanda/relic/internal/testutil"
	"github.com/panbanda/relic/pkg/config"
	"github.com/panbanda/relic/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const perlScript = `#!/usr/bin/perl
use strict;

# load orders
sub load {
    my ($file) = @_;
    if ($file) {
        if (-e $file) {
            return 1;
        }
    }
    return 0;
}
`

const kettleJob = `<?xml version="1.0"?>
<job>
  <!-- nightly -->
  <name>nightly</name>
</job>
`

func newTestService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Analysis.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	return New(WithConfig(cfg), WithLogger(logging.Discard()))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.WriteFile(t, path, content)
	return path
}

func TestAnalyzeSource(t *testing.T) {
	svc := newTestService(t, nil)

	fm, err := svc.AnalyzeSource(models.SourceDocument{Path: "load.pl", Content: perlScript})
	require.NoError(t, err)

	assert.Equal(t, "load.pl", fm.Path)
	assert.Equal(t, models.TechPerl, fm.Technology)
	assert.Equal(t, 10, fm.Lines.Code)
	assert.Equal(t, 2, fm.Lines.Comment)
	assert.Equal(t, 3, fm.Metrics.CyclomaticComplexity)
	assert.Equal(t, 3, fm.Metrics.NestingDepth)
	assert.Equal(t, models.LevelLow, fm.ComplexityLevel)
	assert.Equal(t, models.LevelMedium, fm.NestingLevel)
	assert.Equal(t, models.Fingerprint([]byte(perlScript)), fm.Fingerprint)
}

func TestAnalyzeSource_LinesOfCodeOverride(t *testing.T) {
	svc := newTestService(t, nil)

	counted, err := svc.AnalyzeSource(models.SourceDocument{Path: "a.pl", Content: perlScript})
	require.NoError(t, err)
	given, err := svc.AnalyzeSource(models.SourceDocument{Path: "a.pl", Content: perlScript, LinesOfCode: 5000})
	require.NoError(t, err)

	assert.Equal(t, 5000, given.Lines.Code)
	assert.Less(t, given.Metrics.MaintainabilityIndex, counted.Metrics.MaintainabilityIndex)
	assert.Equal(t, counted.Metrics.CyclomaticComplexity, given.Metrics.CyclomaticComplexity)
}

func TestAnalyzeSource_ExplicitTechnology(t *testing.T) {
	svc := newTestService(t, nil)

	fm, err := svc.AnalyzeSource(models.SourceDocument{Path: "snippet", Content: kettleJob, Technology: models.TechPentahoKettle})
	require.NoError(t, err)
	assert.Equal(t, models.TechPentahoKettle, fm.Technology)
	assert.Equal(t, 1, fm.Lines.Comment)
}

func TestAnalyzeSource_Rejects(t *testing.T) {
	svc := newTestService(t, func(c *config.Config) { c.Analysis.MaxFileSize = 16 })

	_, err := svc.AnalyzeSource(models.SourceDocument{Path: "neg.pl", Content: "x", LinesOfCode: -1})
	assert.ErrorIs(t, err, models.ErrNegativeLineCount)

	_, err = svc.AnalyzeSource(models.SourceDocument{Path: "big.pl", Content: perlScript})
	assert.ErrorIs(t, err, models.ErrFileTooLarge)
}

func TestAnalyzeSource_Empty(t *testing.T) {
	svc := newTestService(t, nil)

	fm, err := svc.AnalyzeSource(models.SourceDocument{Path: "empty.pl"})
	require.NoError(t, err)
	assert.Equal(t, 1, fm.Metrics.CyclomaticComplexity)
	assert.Equal(t, 100.0, fm.Metrics.MaintainabilityIndex)
	assert.Equal(t, models.LevelLow, fm.OverallLevel())
}

func TestAnalyzePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bin/load.pl", perlScript)
	writeFile(t, dir, "etl/nightly.kjb", kettleJob)
	writeFile(t, dir, "README.md", "# docs\n")

	svc := newTestService(t, nil)
	r, err := svc.AnalyzePaths(context.Background(), []string{dir}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{dir}, r.Paths)
	require.Len(t, r.Files, 2)
	assert.Equal(t, 2, r.Summary.Files)
	assert.Empty(t, r.Skipped)
	assert.Len(t, r.Technologies, 2)

	// Riskiest first: the nested Perl script outranks the flat job.
	assert.Equal(t, models.TechPerl, r.Files[0].Technology)
}

func TestAnalyzePaths_TechnologyFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "load.pl", perlScript)
	writeFile(t, dir, "nightly.kjb", kettleJob)

	svc := newTestService(t, nil)
	r, err := svc.AnalyzePaths(context.Background(), []string{dir}, Options{Technologies: []models.Technology{models.TechPentahoKettle}})
	require.NoError(t, err)

	require.Len(t, r.Files, 1)
	assert.Equal(t, models.TechPentahoKettle, r.Files[0].Technology)
}

func TestAnalyzePaths_MissingPath(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.AnalyzePaths(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, Options{})
	assert.Error(t, err)
}

func TestAnalyzeFiles_SkipsOversized(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "small.pl", "print 1;\n")
	big := writeFile(t, dir, "big.pl", perlScript)

	svc := newTestService(t, func(c *config.Config) { c.Analysis.MaxFileSize = 64 })

	var ticks atomic.Int32
	files := []scanner.File{
		{Path: small, Technology: models.TechPerl},
		{Path: big, Technology: models.TechPerl},
		{Path: filepath.Join(dir, "gone.pl"), Technology: models.TechPerl},
	}
	r, err := svc.AnalyzeFiles(context.Background(), files, Options{OnProgress: func() { ticks.Add(1) }})
	require.NoError(t, err)

	require.Len(t, r.Files, 1)
	assert.Equal(t, small, r.Files[0].Path)
	require.Len(t, r.Skipped, 2)
	assert.Equal(t, big, r.Skipped[0].Path)
	assert.Equal(t, "file too large", r.Skipped[0].Reason)
	assert.Equal(t, filepath.Join(dir, "gone.pl"), r.Skipped[1].Path)
	assert.Equal(t, int32(3), ticks.Load())
}

func TestAnalyzeFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.pl", perlScript)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(t, nil)
	_, err := svc.AnalyzeFiles(ctx, []scanner.File{{Path: path, Technology: models.TechPerl}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeFiles_FileCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.pl", perlScript)
	files := []scanner.File{{Path: path, Technology: models.TechPerl}}

	svc := newTestService(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Cache.Dir = filepath.Join(dir, ".cache")
	})
	require.NoError(t, svc.OpenFileCache())

	first, err := svc.AnalyzeFiles(context.Background(), files, Options{})
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, ".cache"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	second, err := svc.AnalyzeFiles(context.Background(), files, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
}

func TestOpenFileCache_Disabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	svc := newTestService(t, func(c *config.Config) { c.Cache.Dir = dir })

	require.NoError(t, svc.OpenFileCache())
	assert.NoDirExists(t, dir)
}

func TestMemoryStats(t *testing.T) {
	svc := newTestService(t, nil)

	for range 3 {
		_, err := svc.AnalyzeSource(models.SourceDocument{Path: "a.pl", Content: perlScript})
		require.NoError(t, err)
	}
	hits, misses := svc.MemoryStats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	none := newTestService(t, func(c *config.Config) { c.Cache.MemoryEntries = 0 })
	_, err := none.AnalyzeSource(models.SourceDocument{Path: "a.pl", Content: perlScript})
	require.NoError(t, err)
	hits, misses = none.MemoryStats()
	assert.Zero(t, hits+misses)
}

func TestAnalyzeDocuments(t *testing.T) {
	svc := newTestService(t, func(cfg *config.Config) { cfg.Analysis.MaxFileSize = 4096 })
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var ticks atomic.Int32
	r, err := svc.AnalyzeDocuments(context.Background(), []models.SourceDocument{
		{Path: "bin/load.pl", Content: perlScript},
		{Path: "jobs/nightly.kjb", Content: kettleJob},
		{Path: "huge.pl", Content: strings.Repeat("x", 5000)},
	}, Options{
		Paths:      []string{"repo@abc"},
		ID:         "abc12345",
		Now:        func() time.Time { return at },
		OnProgress: func() { ticks.Add(1) },
	})
	require.NoError(t, err)

	assert.Equal(t, "abc12345", r.ID)
	assert.True(t, r.GeneratedAt.Equal(at))
	assert.Equal(t, []string{"repo@abc"}, r.Paths)
	require.Len(t, r.Files, 2)
	assert.Equal(t, int32(3), ticks.Load())

	byPath := make(map[string]models.FileMetrics)
	for _, f := range r.Files {
		byPath[f.Path] = f
	}
	assert.Equal(t, models.TechPerl, byPath["bin/load.pl"].Technology)
	assert.Equal(t, models.TechPentahoKettle, byPath["jobs/nightly.kjb"].Technology)

	require.Len(t, r.Skipped, 1)
	assert.Equal(t, "huge.pl", r.Skipped[0].Path)
	assert.Equal(t, "file too large", r.Skipped[0].Reason)
}

func TestAnalyzeDocuments_Cancelled(t *testing.T) {
	svc := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AnalyzeDocuments(ctx, []models.SourceDocument{{Path: "a.pl", Content: "1;"}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
