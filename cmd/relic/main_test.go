package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/history"
	"github.com/panbanda/relic/internal/testutil"
	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simplePerl = testutil.PerlSimple

var riskyPerl = testutil.PerlNested(7)

// executeCommand runs the root command with args, returning what it wrote
// to its stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// workspace creates a directory of Perl fixtures and makes it the working
// directory, so no stray config or cache leaks between tests.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := testutil.TempTree(t, files)
	t.Chdir(dir)
	return dir
}

type analyzeOutput struct {
	ID      string               `json:"id"`
	Summary report.Summary       `json:"summary"`
	Files   []models.FileMetrics `json:"files"`
}

func TestGetPaths(t *testing.T) {
	assert.Equal(t, []string{"."}, getPaths(nil))
	assert.Equal(t, []string{"."}, getPaths([]string{}))
	assert.Equal(t, []string{"/foo", "/bar"}, getPaths([]string{"/foo", "/bar"}))
}

func TestParseTechnologies(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []models.Technology
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"single", []string{"perl"}, []models.Technology{models.TechPerl}, false},
		{"comma list", []string{"perl, kettle"}, []models.Technology{models.TechPerl, models.TechPentahoKettle}, false},
		{"repeated flag", []string{"tibco", "pl"}, []models.Technology{models.TechTibcoBW, models.TechPerl}, false},
		{"blank entries ignored", []string{",perl,"}, []models.Technology{models.TechPerl}, false},
		{"unsupported", []string{"cobol"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTechnologies(tt.values)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrUnsupportedTechnology)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a-very...", truncate("a-very-long-path", 9))
	assert.Equal(t, "abc", truncate("abcdef", 3))
}

func TestCountAtOrAbove(t *testing.T) {
	files := []models.FileMetrics{
		{ComplexityLevel: models.LevelLow, NestingLevel: models.LevelLow, MaintainabilityLevel: models.LevelLow},
		{ComplexityLevel: models.LevelHigh, NestingLevel: models.LevelLow, MaintainabilityLevel: models.LevelLow},
		{ComplexityLevel: models.LevelLow, NestingLevel: models.LevelCritical, MaintainabilityLevel: models.LevelLow},
	}
	assert.Equal(t, 3, countAtOrAbove(files, models.LevelLow))
	assert.Equal(t, 2, countAtOrAbove(files, models.LevelHigh))
	assert.Equal(t, 1, countAtOrAbove(files, models.LevelCritical))
}

func TestPrintChange(t *testing.T) {
	var buf bytes.Buffer
	fm := models.FileMetrics{
		Path:            "etl/load.pl",
		ComplexityLevel: models.LevelMedium,
		RiskScore:       42.5,
	}
	fm.Metrics.CyclomaticComplexity = 7
	fm.Metrics.MaintainabilityIndex = 61.25

	printChange(&buf, fm, time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC))

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "15:04:05 "))
	assert.Contains(t, line, "etl/load.pl")
	assert.Contains(t, line, "cc=7")
	assert.Contains(t, line, "mi=61.25")
	assert.Contains(t, line, "risk=42.50")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	workspace(t, map[string]string{"simple.pl": simplePerl, "risky.pl": riskyPerl})

	out, err := executeCommand(t, "analyze", "--no-cache", "-f", "json", ".")
	require.NoError(t, err)

	var got analyzeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	require.Len(t, got.Files, 2)
	assert.Equal(t, 2, got.Summary.Files)
	assert.True(t, strings.HasSuffix(got.Files[0].Path, "risky.pl"), "riskiest file first")
	assert.Equal(t, models.LevelCritical, got.Files[0].OverallLevel())
	assert.Equal(t, 7, got.Files[0].Metrics.NestingDepth)
	assert.Equal(t, models.TechPerl, got.Files[1].Technology)
}

func TestAnalyzeCommand_Filters(t *testing.T) {
	workspace(t, map[string]string{"simple.pl": simplePerl, "risky.pl": riskyPerl})

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"level", []string{"--level", "critical"}, 1},
		{"top", []string{"--top", "1"}, 1},
		{"min risk", []string{"--min-risk", "99.5"}, 0},
		{"technology", []string{"-t", "perl"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"analyze", "--no-cache", "-f", "json"}, tt.args...)
			out, err := executeCommand(t, append(args, ".")...)
			require.NoError(t, err)

			var got analyzeOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got), out)
			assert.Len(t, got.Files, tt.want)
			assert.Equal(t, 2, got.Summary.Files, "summary covers the whole report")
		})
	}
}

func TestAnalyzeCommand_Text(t *testing.T) {
	workspace(t, map[string]string{"risky.pl": riskyPerl})

	out, err := executeCommand(t, "analyze", "--no-cache", "--no-color", ".")
	require.NoError(t, err)
	assert.Contains(t, out, "Legacy Artifact Triage")
	assert.Contains(t, out, "risky.pl")
}

func TestAnalyzeCommand_FailOn(t *testing.T) {
	workspace(t, map[string]string{"simple.pl": simplePerl, "risky.pl": riskyPerl})

	_, err := executeCommand(t, "analyze", "--no-cache", "-f", "json", "--fail-on", "critical", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 file(s) at or above critical")
}

func TestAnalyzeCommand_InvalidFlags(t *testing.T) {
	workspace(t, map[string]string{"simple.pl": simplePerl})

	_, err := executeCommand(t, "analyze", "--no-cache", "-t", "cobol", ".")
	assert.ErrorIs(t, err, models.ErrUnsupportedTechnology)

	_, err = executeCommand(t, "analyze", "--no-cache", "--level", "severe", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--level")
}

func TestAnalyzeCommand_NoFiles(t *testing.T) {
	workspace(t, map[string]string{"README.md": "# docs\n"})

	out, err := executeCommand(t, "analyze", "--no-cache", "-f", "json", ".")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompareAndTrendCommands(t *testing.T) {
	dir := workspace(t, map[string]string{"simple.pl": simplePerl, "risky.pl": riskyPerl})

	_, err := executeCommand(t, "analyze", "--no-cache", "-f", "json", "--save", "base.json", ".")
	require.NoError(t, err)

	testutil.WriteFile(t, filepath.Join(dir, "simple.pl"), riskyPerl+"# copy\n")
	_, err = executeCommand(t, "analyze", "--no-cache", "-f", "json", "--save", "head.json", ".")
	require.NoError(t, err)

	out, err := executeCommand(t, "compare", "-f", "json", "base.json", "head.json")
	require.NoError(t, err)
	var c compare.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &c), out)
	assert.Equal(t, 1, c.Regressed)
	assert.Equal(t, 0, c.Improved)

	out, err = executeCommand(t, "compare", "-f", "json", "--regressions-only", "base.json", "head.json")
	require.NoError(t, err)
	c = compare.Comparison{}
	require.NoError(t, json.Unmarshal([]byte(out), &c), out)
	require.Len(t, c.Files, 1)
	assert.True(t, strings.HasSuffix(c.Files[0].Path, "simple.pl"))

	_, err = executeCommand(t, "compare", "-f", "json", "--fail-on-regression", "base.json", "head.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 file(s) regressed")

	out, err = executeCommand(t, "trend", "-f", "json", "head.json", "base.json")
	require.NoError(t, err)
	var trend compare.Trend
	require.NoError(t, json.Unmarshal([]byte(out), &trend), out)
	require.Len(t, trend.Points, 2)
	assert.False(t, trend.Points[0].GeneratedAt.After(trend.Points[1].GeneratedAt), "points are ordered by time")
}

func TestHTMLCommand(t *testing.T) {
	dir := workspace(t, map[string]string{"simple.pl": simplePerl, "risky.pl": riskyPerl})

	_, err := executeCommand(t, "analyze", "--no-cache", "-f", "json", "--save", "base.json", ".")
	require.NoError(t, err)
	_, err = executeCommand(t, "analyze", "--no-cache", "-f", "json", "--save", "head.json", ".")
	require.NoError(t, err)

	out := filepath.Join(dir, "triage.html")
	_, err = executeCommand(t, "html", "-o", out, "base.json", "head.json")
	require.NoError(t, err)

	page := testutil.ReadFile(t, out)
	assert.Contains(t, page, "Legacy Artifact Triage")
	assert.Contains(t, page, "risky.pl")
	assert.Contains(t, page, "<h2>Trend</h2>")

	_, err = executeCommand(t, "html", "-o", out, "missing.json")
	require.Error(t, err)
}

func TestCompareCommand_MissingReport(t *testing.T) {
	workspace(t, nil)

	_, err := executeCommand(t, "compare", "missing-a.json", "missing-b.json")
	require.Error(t, err)

	_, err = executeCommand(t, "compare", "only-one.json")
	require.Error(t, err)
}

func TestFileCommand(t *testing.T) {
	workspace(t, map[string]string{"risky.pl": riskyPerl})

	out, err := executeCommand(t, "file", "-f", "json", "--no-color", "risky.pl")
	require.NoError(t, err)

	var fm models.FileMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &fm), out)
	assert.Equal(t, "risky.pl", fm.Path)
	assert.Equal(t, models.TechPerl, fm.Technology)
	assert.Equal(t, 7, fm.Metrics.NestingDepth)
	assert.Equal(t, 8, fm.Metrics.CyclomaticComplexity)

	out, err = executeCommand(t, "file", "-f", "json", "--lines", "500", "risky.pl")
	require.NoError(t, err)
	var overridden models.FileMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &overridden), out)
	assert.Equal(t, 500, overridden.Lines.Code)
	assert.Less(t, overridden.Metrics.MaintainabilityIndex, fm.Metrics.MaintainabilityIndex)

	out, err = executeCommand(t, "file", "--no-color", "risky.pl")
	require.NoError(t, err)
	assert.Contains(t, out, "Maintainability index")
	assert.Contains(t, strings.ToLower(out), "risk score")
}

func TestFileCommand_Errors(t *testing.T) {
	workspace(t, map[string]string{"risky.pl": riskyPerl})

	_, err := executeCommand(t, "file", "missing.pl")
	require.Error(t, err)

	_, err = executeCommand(t, "file", "--technology", "cobol", "risky.pl")
	assert.ErrorIs(t, err, models.ErrUnsupportedTechnology)
}

func TestInitAndConfigCommands(t *testing.T) {
	dir := workspace(t, nil)
	path := filepath.Join(dir, ".relic", "relic.toml")

	_, err := executeCommand(t, "init", "-o", path)
	require.NoError(t, err)

	data := testutil.ReadFile(t, path)
	assert.True(t, strings.HasPrefix(data, "# Relic Configuration"))
	assert.Contains(t, data, "[thresholds")
	assert.Contains(t, data, "[risk]")

	_, err = executeCommand(t, "init", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(t, "init", "-o", path, "--force")
	require.NoError(t, err)

	_, err = executeCommand(t, "config", "validate", "-c", path)
	require.NoError(t, err)

	out, err := executeCommand(t, "config", "show", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "max_file_size")

	out, err = executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: ", "discovered under .relic/")
}

func TestConfigValidate_Invalid(t *testing.T) {
	dir := workspace(t, map[string]string{"relic.toml": "[logging]\nlevel = \"loud\"\n"})

	_, err := executeCommand(t, "config", "validate", "-c", filepath.Join(dir, "relic.toml"))
	require.Error(t, err)

	_, err = executeCommand(t, "analyze", "--no-cache", ".")
	require.Error(t, err, "commands refuse an invalid config")
}

func TestConfigShow_Defaults(t *testing.T) {
	workspace(t, nil)

	out, err := executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Default configuration (no config file found)")
}

func TestMCPManifestCommand(t *testing.T) {
	workspace(t, nil)

	out, err := executeCommand(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.Contains(t, out, "io.github.panbanda/relic")
}

func TestHistoryCommand(t *testing.T) {
	dir := workspace(t, map[string]string{})
	repo := testutil.InitGitRepo(t)
	now := time.Now()
	first := repo.Commit(t, now.Add(-65*24*time.Hour), map[string]string{
		"simple.pl": simplePerl,
		"notes.txt": "not an artifact",
	})
	second := repo.Commit(t, now.Add(-10*24*time.Hour), map[string]string{"risky.pl": riskyPerl})

	saveDir := filepath.Join(dir, "snapshots")
	out, err := executeCommand(t, "history", "-f", "json", "--save-dir", saveDir, repo.Path)
	require.NoError(t, err)

	var trend compare.Trend
	require.NoError(t, json.Unmarshal([]byte(out), &trend), out)
	require.Len(t, trend.Points, 2)
	assert.Equal(t, first[:8], trend.Points[0].ReportID)
	assert.Equal(t, 1, trend.Points[0].Files)
	assert.Equal(t, second[:8], trend.Points[1].ReportID)
	assert.Equal(t, 2, trend.Points[1].Files)

	saved, err := filepath.Glob(filepath.Join(saveDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestHistoryCommand_Errors(t *testing.T) {
	dir := workspace(t, map[string]string{})

	_, err := executeCommand(t, "history", "--period", "daily", dir)
	require.Error(t, err)

	_, err = executeCommand(t, "history", "--since", "0m", dir)
	require.Error(t, err)

	_, err = executeCommand(t, "history", dir)
	require.Error(t, err, "not a git repository")
}

func TestDocuments(t *testing.T) {
	blobs := []history.Blob{
		{Path: "a.pl", Content: []byte(simplePerl)},
		{Path: "etl/load.ktr", Content: []byte(testutil.KettleTransformation)},
		{Path: "README.md", Content: []byte("# readme")},
	}

	all := documents(blobs, nil)
	require.Len(t, all, 2)
	assert.Equal(t, models.TechPerl, all[0].Technology)
	assert.Equal(t, models.TechPentahoKettle, all[1].Technology)

	kettle := documents(blobs, []models.Technology{models.TechPentahoKettle})
	require.Len(t, kettle, 1)
	assert.Equal(t, "etl/load.ktr", kettle[0].Path)
}

func TestRemoteSource(t *testing.T) {
	workspace(t, map[string]string{"a.pl": simplePerl})

	src, err := remoteSource([]string{"."})
	require.NoError(t, err)
	assert.Nil(t, src)

	src, err = remoteSource([]string{"acme/etl@v1"})
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "https://github.com/acme/etl", src.URL)
	assert.Equal(t, "v1", src.Ref)

	src, err = remoteSource([]string{"acme/etl", "."})
	require.NoError(t, err)
	assert.Nil(t, src, "multiple paths are always local")
}

func TestCacheCommands(t *testing.T) {
	workspace(t, map[string]string{"simple.pl": simplePerl, "risky.pl": riskyPerl})

	_, err := executeCommand(t, "analyze", "-f", "json", ".")
	require.NoError(t, err)

	out, err := executeCommand(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   2")

	_, err = executeCommand(t, "cache", "clear")
	require.NoError(t, err)

	out, err = executeCommand(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   0")
}

func TestSetup_ColorFollowsEachCommand(t *testing.T) {
	workspace(t, nil)
	savedNoColor, savedTerminal := color.NoColor, terminalNoColor
	t.Cleanup(func() { color.NoColor, terminalNoColor = savedNoColor, savedTerminal })
	terminalNoColor = false

	_, err := executeCommand(t, "--no-color", "mcp", "manifest")
	require.NoError(t, err)
	assert.True(t, color.NoColor)

	_, err = executeCommand(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.False(t, color.NoColor, "color is enabled again once --no-color is dropped")

	terminalNoColor = true
	_, err = executeCommand(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.True(t, color.NoColor, "a non-terminal never gets color")
}
