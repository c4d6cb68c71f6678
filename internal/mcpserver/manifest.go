package mcpserver

import (
	"encoding/json"
	"strings"

	"github.com/panbanda/relic/internal/logging"
	"github.com/panbanda/relic/pkg/config"
)

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the MCP registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one way of launching the server: an OCI image run with the
// "mcp" subcommand over stdio.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable documents an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

type Transport struct {
	Type string `json:"type"`
}

// manifestVersion turns a build version into the semver the registry
// expects: "v1.2.3" becomes "1.2.3" and development builds become 0.0.0.
func manifestVersion(v string) string {
	v = strings.TrimPrefix(v, "v")
	if v == "" || v == "dev" {
		return "0.0.0"
	}
	return v
}

// GenerateManifest renders server.json for publishing the stdio server.
func GenerateManifest(version string) ([]byte, error) {
	version = manifestVersion(version)

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/relic",
		Title:       "Relic",
		Description: "Structural risk triage for Perl, TIBCO BusinessWorks and Pentaho Kettle artifacts",
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/relic",
			Source: "github",
		},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       "ghcr.io/panbanda/relic:" + version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: []EnvVariable{
				{Name: config.EnvConfigPath, Description: "Path to a relic configuration file"},
				{Name: logging.EnvLevel, Description: "Log level: debug, info, warn or error"},
			},
			Transport: Transport{Type: "stdio"},
		}},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
