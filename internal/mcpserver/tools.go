package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/relic/internal/output"
	"github.com/panbanda/relic/internal/service/analysis"
	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
)

// AnalyzeSourceInput is the input of analyze_source.
type AnalyzeSourceInput struct {
	Path        string `json:"path" jsonschema:"File name of the artifact. Used for technology detection and in the result."`
	Content     string `json:"content" jsonschema:"Full text of the artifact."`
	LinesOfCode int    `json:"lines_of_code,omitempty" jsonschema:"Precomputed lines of code. Counted from content when omitted."`
	Technology  string `json:"technology,omitempty" jsonschema:"perl, tibco_bw or pentaho_kettle. Detected when omitted."`
	Format      string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// AnalyzePathsInput is the input of analyze_paths.
type AnalyzePathsInput struct {
	Paths        []string `json:"paths,omitempty" jsonschema:"Files or directories to analyze. Defaults to current directory if empty."`
	Technologies []string `json:"technologies,omitempty" jsonschema:"Restrict to these technologies."`
	MinLevel     string   `json:"min_level,omitempty" jsonschema:"Only include files at or above this overall level: low, medium, high, critical."`
	MinRisk      float64  `json:"min_risk,omitempty" jsonschema:"Only include files with at least this risk score (0-100)."`
	Top          int      `json:"top,omitempty" jsonschema:"Only include the N riskiest files. Default 25."`
	Format       string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// CompareReportsInput is the input of compare_reports.
type CompareReportsInput struct {
	Base            string `json:"base" jsonschema:"Path to the earlier report JSON file."`
	Head            string `json:"head" jsonschema:"Path to the later report JSON file."`
	RegressionsOnly bool   `json:"regressions_only,omitempty" jsonschema:"Only list files whose risk score went up."`
	Format          string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

const defaultTop = 25

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(s string) output.Format {
	if s == "" {
		return output.FormatTOON
	}
	f := output.ParseFormat(s)
	if f == output.FormatText {
		return output.FormatTOON
	}
	return f
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeSourceInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError("path is required")
	}
	tech, err := models.ParseTechnology(input.Technology)
	if err != nil {
		return toolError(err.Error())
	}

	fm, err := s.svc.AnalyzeSource(models.SourceDocument{
		Path:        input.Path,
		Content:     input.Content,
		LinesOfCode: input.LinesOfCode,
		Technology:  tech,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(fm, getFormat(input.Format))
}

func (s *Server) handleAnalyzePaths(ctx context.Context, req *mcp.CallToolRequest, input AnalyzePathsInput) (*mcp.CallToolResult, any, error) {
	query := report.Query{MinRisk: input.MinRisk, Limit: input.Top}
	if query.Limit <= 0 {
		query.Limit = defaultTop
	}
	if input.MinLevel != "" {
		level, err := models.ParseLevel(input.MinLevel)
		if err != nil {
			return toolError(err.Error())
		}
		query.MinLevel = level
	}

	opts := analysis.Options{}
	for _, name := range input.Technologies {
		tech, err := models.ParseTechnology(name)
		if err != nil {
			return toolError(err.Error())
		}
		opts.Technologies = append(opts.Technologies, tech)
	}
	query.Technologies = opts.Technologies

	r, err := s.svc.AnalyzePaths(ctx, getPaths(input.Paths), opts)
	if err != nil {
		return toolError(err.Error())
	}
	if len(r.Files) == 0 && len(r.Skipped) == 0 {
		return toolError("no legacy artifacts found")
	}

	files := report.NewIndex(r).Filter(query)
	format := getFormat(input.Format)
	if format == output.FormatMarkdown {
		return toolResult(report.NewView(r, files), format)
	}

	filtered := *r
	filtered.Files = files
	return toolResult(&filtered, format)
}

func (s *Server) handleCompareReports(ctx context.Context, req *mcp.CallToolRequest, input CompareReportsInput) (*mcp.CallToolResult, any, error) {
	if input.Base == "" || input.Head == "" {
		return toolError("base and head report paths are required")
	}
	base, err := report.Load(input.Base)
	if err != nil {
		return toolError(fmt.Sprintf("base: %v", err))
	}
	head, err := report.Load(input.Head)
	if err != nil {
		return toolError(fmt.Sprintf("head: %v", err))
	}

	c := compare.Reports(base, head)
	if input.RegressionsOnly {
		c.Files = c.Regressions()
	}
	return toolResult(c, getFormat(input.Format))
}
