package models

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Technology identifies the kind of legacy artifact a file holds.
type Technology string

const (
	TechPerl          Technology = "perl"
	TechTibcoBW       Technology = "tibco_bw"
	TechPentahoKettle Technology = "pentaho_kettle"
	TechUnknown       Technology = "unknown"
)

// Technologies lists the supported technologies in display order.
func Technologies() []Technology {
	return []Technology{TechPerl, TechTibcoBW, TechPentahoKettle}
}

// IsXML reports whether artifacts of this technology are XML documents.
func (t Technology) IsXML() bool {
	return t == TechTibcoBW || t == TechPentahoKettle
}

// DisplayName returns a human-readable name.
func (t Technology) DisplayName() string {
	switch t {
	case TechPerl:
		return "Perl"
	case TechTibcoBW:
		return "TIBCO BusinessWorks"
	case TechPentahoKettle:
		return "Pentaho Kettle"
	default:
		return "Unknown"
	}
}

// ParseTechnology converts a user-supplied name to a Technology.
func ParseTechnology(s string) (Technology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perl", "pl":
		return TechPerl, nil
	case "tibco_bw", "tibco", "bw", "businessworks":
		return TechTibcoBW, nil
	case "pentaho_kettle", "pentaho", "kettle", "pdi":
		return TechPentahoKettle, nil
	case "", "unknown":
		return TechUnknown, nil
	default:
		return TechUnknown, fmt.Errorf("%w: %q", ErrUnsupportedTechnology, s)
	}
}

// DetectTechnology determines the technology from a file path and, when the
// extension is not conclusive, from markers in the first few KB of content.
func DetectTechnology(path string, content []byte) Technology {
	if tech := detectByExtension(path); tech != TechUnknown {
		return tech
	}
	return detectByContent(content)
}

func detectByExtension(path string) Technology {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pl", ".pm", ".t", ".cgi", ".plx":
		return TechPerl
	case ".process", ".bwp":
		return TechTibcoBW
	case ".ktr", ".kjb":
		return TechPentahoKettle
	default:
		return TechUnknown
	}
}

// SniffLimit bounds how much content is inspected for markers.
const SniffLimit = 4096

var (
	perlShebang  = []byte("perl")
	tibcoMarkers = [][]byte{
		[]byte("xmlns.tibco.com/bw/"),
		[]byte("xmlns.tibco.com/pe/"),
		[]byte("<pd:ProcessDefinition"),
	}
	kettleMarkers = [][]byte{
		[]byte("<transformation>"),
		[]byte("<job>"),
	}
)

func detectByContent(content []byte) Technology {
	if len(content) == 0 {
		return TechUnknown
	}
	head := content[:min(len(content), SniffLimit)]

	if bytes.HasPrefix(head, []byte("#!")) {
		line, _, _ := bytes.Cut(head, []byte("\n"))
		if bytes.Contains(line, perlShebang) {
			return TechPerl
		}
	}
	for _, m := range tibcoMarkers {
		if bytes.Contains(head, m) {
			return TechTibcoBW
		}
	}
	for _, m := range kettleMarkers {
		if bytes.Contains(head, m) {
			return TechPentahoKettle
		}
	}
	return TechUnknown
}
