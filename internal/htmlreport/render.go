// Package htmlreport renders a triage report as a self-contained HTML page.
package htmlreport

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed template.html
var templateFS embed.FS

// DefaultTop is the number of files listed when Data is built with top <= 0.
const DefaultTop = 50

// Metadata identifies the rendered report.
type Metadata struct {
	ReportID    string
	GeneratedAt time.Time
	Paths       []string
	Version     string
}

// Data contains everything the template renders.
type Data struct {
	Metadata     Metadata
	Summary      report.Summary
	Technologies []report.Group
	Files        []models.FileMetrics
	TotalFiles   int
	Skipped      []report.Skipped
	Trend        *compare.Trend
}

// NewData selects the top riskiest files of r for rendering.
func NewData(r *report.Report, version string, top int) *Data {
	if top <= 0 {
		top = DefaultTop
	}
	return &Data{
		Metadata: Metadata{
			ReportID:    r.ID,
			GeneratedAt: r.GeneratedAt,
			Paths:       r.Paths,
			Version:     version,
		},
		Summary:      r.Summary,
		Technologies: r.Technologies,
		Files:        report.NewIndex(r).Top(top),
		TotalFiles:   len(r.Files),
		Skipped:      r.Skipped,
	}
}

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)

	funcMap := template.FuncMap{
		"levelClass": func(level models.Level) string {
			if level.Rank() < 0 {
				return "low"
			}
			return string(level)
		},
		"overall": func(f models.FileMetrics) models.Level {
			return f.OverallLevel()
		},
		"riskClass": func(score float64) string {
			switch {
			case score >= 75:
				return "critical"
			case score >= 50:
				return "high"
			case score >= 25:
				return "medium"
			}
			return "low"
		},
		"lower": strings.ToLower,
		"title": cases.Title(language.English).String,
		"truncatePath": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			parts := strings.Split(s, "/")
			filename := parts[len(parts)-1]
			if len(parts) <= 2 || len(filename) >= n-4 {
				return "..." + s[len(s)-n+3:]
			}
			remaining := n - len(filename) - 5
			prefix := strings.Join(parts[:len(parts)-1], "/")
			if len(prefix) > remaining {
				prefix = prefix[len(prefix)-remaining:]
			}
			return ".../" + prefix + "/" + filename
		},
		"percent": func(a, b int) float64 {
			if b == 0 {
				return 0
			}
			return float64(a) / float64(b) * 100
		},
		"fixed": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"signed": func(v float64) string {
			return fmt.Sprintf("%+.3f", v)
		},
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
		"num": func(n any) string {
			switch v := n.(type) {
			case int:
				return printer.Sprintf("%d", v)
			case int64:
				return printer.Sprintf("%d", v)
			case float64:
				return printer.Sprintf("%d", int64(v))
			default:
				return "0"
			}
		},
		"date": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 MST")
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML page for data to w.
func (r *Renderer) Render(w io.Writer, data *Data) error {
	return r.tmpl.Execute(w, data)
}

// RenderToFile writes the HTML page for data to path.
func (r *Renderer) RenderToFile(path string, data *Data) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
