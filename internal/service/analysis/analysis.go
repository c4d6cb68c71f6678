// Package analysis orchestrates discovery, metric computation, caching and
// classification for batches of legacy artifacts.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panbanda/relic/internal/cache"
	"github.com/panbanda/relic/internal/fileproc"
	"github.com/panbanda/relic/internal/scanner"
	"github.com/panbanda/relic/pkg/analyzer/classify"
	"github.com/panbanda/relic/pkg/config"
	"github.com/panbanda/relic/pkg/loc"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
)

// Service orchestrates analysis operations.
type Service struct {
	config     *config.Config
	classifier *classify.Classifier
	memory     *cache.Memory
	files      *cache.FileCache
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger used for per-file failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithFileCache sets the persistent record cache.
func WithFileCache(fc *cache.FileCache) Option {
	return func(s *Service) {
		s.files = fc
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.classifier = classify.FromConfig(s.config)
	if n := s.config.Cache.MemoryEntries; n > 0 {
		if m, err := cache.NewMemory(n); err == nil {
			s.memory = m
		}
	}
	return s
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.config
}

// Classifier returns the classifier shared by every analysis.
func (s *Service) Classifier() *classify.Classifier {
	return s.classifier
}

// OpenFileCache enables the on-disk record cache described by the
// configuration. It is a no-op when caching is disabled.
func (s *Service) OpenFileCache() error {
	cc := s.config.Cache
	if !cc.Enabled {
		return nil
	}
	disk, err := cache.New(cc.Dir, time.Duration(cc.TTL)*time.Hour, true)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	s.files = cache.NewFileCache(disk, s.cacheSalt())
	return nil
}

// cacheSalt identifies the settings that shape a cached record.
func (s *Service) cacheSalt() string {
	return fmt.Sprintf("v%d|%+v|%+v", report.SchemaVersion, s.config.Thresholds, s.config.Risk)
}

// MemoryStats returns hit and miss counts of the in-memory metrics cache.
func (s *Service) MemoryStats() (hits, misses int64) {
	if s.memory == nil {
		return 0, 0
	}
	return s.memory.Hits(), s.memory.Misses()
}

// Options configures a batch analysis.
type Options struct {
	// Technologies restricts discovery; empty keeps every known technology.
	Technologies []models.Technology
	// Paths are recorded in the report as the analyzed roots.
	Paths      []string
	OnProgress func()
	// ID and Now override the report identity and timestamp.
	ID  string
	Now func() time.Time
}

func (o Options) report(skipped []report.Skipped) report.Options {
	return report.Options{Paths: o.Paths, Skipped: skipped, ID: o.ID, Now: o.Now}
}

// Discover finds analyzable files under paths.
func (s *Service) Discover(paths []string, opts Options) ([]scanner.File, error) {
	sc := scanner.NewScanner(s.config, scanner.WithTechnologies(opts.Technologies...))
	files, err := sc.Scan(paths...)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return files, nil
}

// AnalyzePaths discovers files under paths and analyzes them.
func (s *Service) AnalyzePaths(ctx context.Context, paths []string, opts Options) (*report.Report, error) {
	files, err := s.Discover(paths, opts)
	if err != nil {
		return nil, err
	}
	if opts.Paths == nil {
		opts.Paths = paths
	}
	return s.AnalyzeFiles(ctx, files, opts)
}

// AnalyzeFiles analyzes files in parallel and builds a report. Files that
// cannot be read or exceed the size cap are logged and recorded as skipped;
// they never fail the batch. Cancellation of ctx does.
func (s *Service) AnalyzeFiles(ctx context.Context, files []scanner.File, opts Options) (*report.Report, error) {
	techs := make(map[string]models.Technology, len(files))
	for _, f := range files {
		techs[f.Path] = f.Technology
	}

	results, errs := fileproc.MapContents(ctx, scanner.Paths(files), fileproc.Options{
		Workers:     s.config.Analysis.Workers,
		MaxFileSize: s.config.Analysis.MaxFileSize,
		OnProgress:  opts.OnProgress,
	}, func(path string, content []byte) (models.FileMetrics, error) {
		return s.analyzeContent(path, techs[path], content), nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	skipped := s.skipped(errs)
	s.logger.Debug("analysis complete", "files", len(results), "skipped", len(skipped))
	return report.Build(results, opts.report(skipped)), nil
}

// AnalyzeDocuments analyzes in-memory documents in parallel and builds a
// report. Rejected documents are recorded as skipped, as in AnalyzeFiles.
// Document paths must be unique.
func (s *Service) AnalyzeDocuments(ctx context.Context, docs []models.SourceDocument, opts Options) (*report.Report, error) {
	byPath := make(map[string]models.SourceDocument, len(docs))
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
		paths = append(paths, d.Path)
	}

	results, errs := fileproc.ForEachFile(ctx, paths, fileproc.Options{
		Workers:    s.config.Analysis.Workers,
		OnProgress: opts.OnProgress,
	}, func(_ context.Context, path string) (models.FileMetrics, error) {
		return s.AnalyzeSource(byPath[path])
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	skipped := s.skipped(errs)
	s.logger.Debug("document analysis complete", "documents", len(results), "skipped", len(skipped))
	return report.Build(results, opts.report(skipped)), nil
}

func (s *Service) skipped(errs *fileproc.ProcessingErrors) []report.Skipped {
	if !errs.HasErrors() {
		return nil
	}
	out := make([]report.Skipped, 0, errs.Len())
	for _, pe := range errs.Errors {
		s.logger.Warn("skipping file", "path", pe.Path, "error", pe.Err)
		out = append(out, report.Skipped{Path: pe.Path, Reason: skipReason(pe.Err)})
	}
	return out
}

func skipReason(err error) string {
	if errors.Is(err, models.ErrFileTooLarge) {
		return "file too large"
	}
	return err.Error()
}

// AnalyzeSource analyzes one in-memory document. An empty or unknown
// technology is detected from the path and content. A positive LinesOfCode overrides the
// counted code lines; a negative one is rejected.
func (s *Service) AnalyzeSource(doc models.SourceDocument) (models.FileMetrics, error) {
	if doc.LinesOfCode < 0 {
		return models.FileMetrics{}, fmt.Errorf("%s: %w", doc.Path, models.ErrNegativeLineCount)
	}
	if limit := s.config.Analysis.MaxFileSize; limit > 0 && int64(len(doc.Content)) > limit {
		return models.FileMetrics{}, fmt.Errorf("%s: %w: %d bytes exceeds limit of %d",
			doc.Path, models.ErrFileTooLarge, len(doc.Content), limit)
	}

	content := []byte(doc.Content)
	tech := doc.Technology
	if tech == "" || tech == models.TechUnknown {
		tech = models.DetectTechnology(doc.Path, content)
	}

	lines := loc.Count(doc.Content, tech)
	if doc.LinesOfCode > 0 {
		lines.Code = doc.LinesOfCode
	}
	return s.score(doc.Path, tech, content, lines), nil
}

// analyzeContent computes the record for one file, consulting the record
// cache first.
func (s *Service) analyzeContent(path string, tech models.Technology, content []byte) models.FileMetrics {
	if s.files != nil {
		if fm, ok := s.files.Get(path, content); ok {
			return fm
		}
	}

	fm := s.score(path, tech, content, loc.Count(string(content), tech))

	if s.files != nil {
		if err := s.files.Put(path, content, fm); err != nil {
			s.logger.Debug("cache write failed", "path", path, "error", err)
		}
	}
	return fm
}

func (s *Service) score(path string, tech models.Technology, content []byte, lines models.LineCounts) models.FileMetrics {
	metrics := s.memory.Compute(string(content), lines.LinesOfCode())
	fm := s.classifier.Classify(path, tech, lines, metrics)
	fm.Fingerprint = models.Fingerprint(content)
	return fm
}
