package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/output"
	"github.com/panbanda/relic/internal/service/analysis"
	"github.com/panbanda/relic/pkg/models"
	"github.com/spf13/cobra"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// getFormat returns --format, falling back to the configured default.
func getFormat(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return f.Value.String()
	}
	return appConfig.Output.Format
}

// getOutputFile returns --output, or "" for the command's stdout.
func getOutputFile(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString("output")
	return out
}

// newFormatter writes to --output when set and to the command's stdout otherwise.
func newFormatter(cmd *cobra.Command) (*output.Formatter, error) {
	format := output.ParseFormat(getFormat(cmd))
	colored := !color.NoColor
	if path := getOutputFile(cmd); path != "" {
		return output.NewFormatter(format, path, false)
	}
	return output.NewWriterFormatter(format, cmd.OutOrStdout(), colored), nil
}

// addOutputFlags registers --format and --output.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Output format: text, markdown, json, toon, yaml (default from config)")
	cmd.Flags().StringP("output", "o", "", "Write output to file")
}

// newService builds the analysis service from the effective configuration,
// opening the on-disk cache unless --no-cache is set.
func newService(cmd *cobra.Command) (*analysis.Service, error) {
	svc := analysis.New(analysis.WithConfig(appConfig), analysis.WithLogger(slog.Default()))

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		return svc, nil
	}
	if err := svc.OpenFileCache(); err != nil {
		return nil, err
	}
	return svc, nil
}

// parseTechnologies converts --technology values, accepting comma lists.
func parseTechnologies(values []string) ([]models.Technology, error) {
	var techs []models.Technology
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			t, err := models.ParseTechnology(name)
			if err != nil {
				return nil, err
			}
			techs = append(techs, t)
		}
	}
	return techs, nil
}

// parseLevel converts an optional level flag.
func parseLevel(cmd *cobra.Command, name string) (models.Level, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return "", nil
	}
	l, err := models.ParseLevel(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("--%s: %w", name, err)
	}
	return l, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
