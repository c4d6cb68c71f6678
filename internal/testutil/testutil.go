// Package testutil holds fixture helpers and sample legacy artifacts shared
// by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Sample artifacts, one per supported technology.
const (
	PerlSimple = "print 1;\n"

	TibcoProcess = `<?xml version="1.0" encoding="UTF-8"?>
<pd:ProcessDefinition xmlns:pd="http://xmlns.tibco.com/bw/process/2003">
  <pd:name>Orders/Load.process</pd:name>
  <pd:transition>
    <pd:from>Start</pd:from>
    <pd:to>End</pd:to>
  </pd:transition>
</pd:ProcessDefinition>
`

	KettleTransformation = `<?xml version="1.0" encoding="UTF-8"?>
<transformation>
  <info><name>load_customers</name></info>
  <step><name>Filter rows</name><type>FilterRows</type></step>
</transformation>
`
)

// PerlNested returns a Perl snippet of depth nested if blocks. Its
// cyclomatic complexity is depth+1.
func PerlNested(depth int) string {
	return strings.Repeat("if ($a) {\n", depth) + "print 1;\n" + strings.Repeat("}\n", depth)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// WriteTree creates multiple files under root from a map of relative
// path to content.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// TempTree creates a temporary directory populated with files.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, files)
	return dir
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
