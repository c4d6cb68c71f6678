package compare

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/relic/pkg/analyzer/classify"
	"github.com/panbanda/relic/pkg/analyzer/complexity"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzed(path, content string) models.FileMetrics {
	m := complexity.Compute(content, len(content)/10+1)
	fm := classify.Default().Classify(path, models.TechPerl, models.LineCounts{Code: len(content)/10 + 1}, m)
	fm.Fingerprint = models.Fingerprint([]byte(content))
	return fm
}

const (
	simple  = "print 1;\n"
	branchy = "if ($a) {\n  if ($b) {\n    if ($c) {\n      return 1;\n    }\n  }\n}\n"
	other   = "my $x = 1 + 2;\nprint $x;\n"
)

func TestMetrics(t *testing.T) {
	base := complexity.Metrics{CyclomaticComplexity: 3, CognitiveComplexity: 2, NestingDepth: 1, HalsteadVolume: 10.5, MaintainabilityIndex: 80}
	head := complexity.Metrics{CyclomaticComplexity: 5, CognitiveComplexity: 1, NestingDepth: 1, HalsteadVolume: 12.75, MaintainabilityIndex: 75.3}

	d := Metrics(base, head)
	assert.Equal(t, MetricsDelta{
		CyclomaticComplexity: 2,
		CognitiveComplexity:  -1,
		HalsteadVolume:       2.25,
		MaintainabilityIndex: -4.7,
	}, d)
	assert.True(t, Metrics(base, base).IsZero())
}

func TestReports(t *testing.T) {
	base := report.Build([]models.FileMetrics{
		analyzed("keep.pl", simple),
		analyzed("grow.pl", simple),
		analyzed("shrink.pl", branchy),
		analyzed("gone.pl", other),
		analyzed("old/name.pl", branchy+"# moved\n"),
	}, report.Options{ID: "base"})

	head := report.Build([]models.FileMetrics{
		analyzed("keep.pl", simple),
		analyzed("grow.pl", branchy),
		analyzed("shrink.pl", simple),
		analyzed("new.pl", other+"print 2;\n"),
		analyzed("new/name.pl", branchy+"# moved\n"),
	}, report.Options{ID: "head"})

	c := Reports(base, head)

	assert.Equal(t, "base", c.BaseID)
	assert.Equal(t, "head", c.HeadID)

	byPath := make(map[string]FileDelta)
	for _, f := range c.Files {
		byPath[f.Path] = f
	}

	assert.Equal(t, StatusUnchanged, byPath["keep.pl"].Status)
	assert.Equal(t, StatusChanged, byPath["grow.pl"].Status)
	assert.Greater(t, byPath["grow.pl"].RiskDelta, 0.0)
	assert.Equal(t, 3, byPath["grow.pl"].Delta.NestingDepth)
	assert.Equal(t, StatusChanged, byPath["shrink.pl"].Status)
	assert.Less(t, byPath["shrink.pl"].RiskDelta, 0.0)
	assert.Equal(t, StatusAdded, byPath["new.pl"].Status)
	assert.Nil(t, byPath["new.pl"].Base)
	assert.Equal(t, StatusRemoved, byPath["gone.pl"].Status)
	assert.Nil(t, byPath["gone.pl"].Head)

	renamed := byPath["new/name.pl"]
	assert.Equal(t, StatusRenamed, renamed.Status)
	assert.Equal(t, "old/name.pl", renamed.OldPath)
	assert.True(t, renamed.Delta.IsZero())
	_, stillRemoved := byPath["old/name.pl"]
	assert.False(t, stillRemoved, "renamed source is not reported as removed")

	assert.Equal(t, 1, c.Added)
	assert.Equal(t, 1, c.Removed)
	assert.Equal(t, 1, c.Renamed)
	assert.Equal(t, 1, c.Improved)
	assert.Equal(t, 1, c.Regressed)
	assert.Equal(t, 0, c.Summary.Files)

	// Sorted by path.
	for i := 1; i < len(c.Files); i++ {
		assert.LessOrEqual(t, c.Files[i-1].Path, c.Files[i].Path)
	}

	regs := c.Regressions()
	require.Len(t, regs, 1)
	assert.Equal(t, "grow.pl", regs[0].Path)
}

func TestReports_Identical(t *testing.T) {
	r := report.Build([]models.FileMetrics{analyzed("a.pl", simple), analyzed("b.pl", branchy)}, report.Options{})

	c := Reports(r, r)
	for _, f := range c.Files {
		assert.Equal(t, StatusUnchanged, f.Status)
	}
	assert.Equal(t, SummaryDelta{}, c.Summary)
	assert.Zero(t, c.Improved+c.Regressed+c.Added+c.Removed+c.Renamed)
}

func TestSeries(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d int) report.Options {
		return report.Options{Now: func() time.Time { return start.AddDate(0, 0, d) }}
	}

	// Large enough that maintainability stays below the 100 clamp, shrinking
	// so every metric improves from one sample to the next.
	r1 := report.Build([]models.FileMetrics{analyzed("a.pl", strings.Repeat(branchy, 30))}, at(0))
	r2 := report.Build([]models.FileMetrics{analyzed("a.pl", strings.Repeat(branchy, 20))}, at(7))
	r3 := report.Build([]models.FileMetrics{analyzed("a.pl", strings.Repeat(branchy, 10))}, at(14))
	require.Less(t, r3.Files[0].Metrics.MaintainabilityIndex, 100.0)
	require.Less(t, r1.Files[0].Metrics.MaintainabilityIndex, r3.Files[0].Metrics.MaintainabilityIndex)

	// Out of order on purpose.
	trend := Series([]*report.Report{r3, r1, r2})

	require.Len(t, trend.Points, 3)
	assert.Equal(t, r1.ID, trend.Points[0].ReportID)
	assert.Equal(t, r3.ID, trend.Points[2].ReportID)
	assert.Less(t, trend.Cyclomatic.Slope, 0.0)
	assert.Less(t, trend.Risk.Slope, 0.0)
	assert.Greater(t, trend.Maintainability.Slope, 0.0)
	assert.True(t, trend.Improving())
}

func TestSeries_Short(t *testing.T) {
	trend := Series(nil)
	assert.Empty(t, trend.Points)
	assert.Zero(t, trend.Cyclomatic.Slope)

	one := Series([]*report.Report{report.Build(nil, report.Options{})})
	assert.Len(t, one.Points, 1)
	assert.Zero(t, one.Risk.Slope)
}

func TestView(t *testing.T) {
	base := report.Build([]models.FileMetrics{analyzed("a.pl", simple), analyzed("same.pl", other)}, report.Options{ID: "base"})
	head := report.Build([]models.FileMetrics{analyzed("a.pl", branchy), analyzed("same.pl", other)}, report.Options{ID: "head"})
	v := NewView(Reports(base, head))

	var text bytes.Buffer
	require.NoError(t, v.RenderText(&text, false))
	assert.Contains(t, text.String(), "Report Comparison")
	assert.Contains(t, text.String(), "a.pl")
	assert.NotContains(t, text.String(), "same.pl", "unchanged files are omitted")
	assert.Contains(t, text.String(), "changed")

	var md bytes.Buffer
	require.NoError(t, v.RenderMarkdown(&md))
	assert.Contains(t, md.String(), "# Report Comparison")
	assert.Same(t, v.Comparison, v.RenderData())
}

func TestTrendView(t *testing.T) {
	r := report.Build([]models.FileMetrics{analyzed("a.pl", simple)}, report.Options{})
	v := NewTrendView(Series([]*report.Report{r, r}))

	var text bytes.Buffer
	require.NoError(t, v.RenderText(&text, false))
	assert.Contains(t, text.String(), "Risk Trend")
	assert.Contains(t, text.String(), "worsening or flat")
}

func TestLevelChange(t *testing.T) {
	assert.Equal(t, "high", levelChange("", "high"))
	assert.Equal(t, "low", levelChange("low", ""))
	assert.Equal(t, "low", levelChange("low", "low"))
	assert.Equal(t, "low -> high", levelChange("low", "high"))
}
