package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/panbanda/relic/pkg/analyzer/complexity"
	"github.com/panbanda/relic/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := New(filepath.Join(tmpDir, "cache"), 24*time.Hour, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}

	c, err = New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")

	_, err := New(cacheDir, time.Hour, true)
	require.NoError(t, err)

	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}
}

func TestSetAndGet(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), time.Hour, true)
	require.NoError(t, err)

	data := []byte("cached record")
	require.NoError(t, c.Set("lib/Foo.pm", "h1", data))

	got, ok := c.Get("lib/Foo.pm", "h1")
	require.True(t, ok)
	assert.Equal(t, data, got)

	_, ok = c.Get("lib/Foo.pm", "h2")
	assert.False(t, ok, "hash mismatch should miss")

	_, ok = c.Get("lib/Bar.pm", "h1")
	assert.False(t, ok, "unknown key should miss")
}

func TestGet_Expired(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), time.Hour, true)
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }
	require.NoError(t, c.Set("k", "h", []byte("v")))

	c.now = func() time.Time { return start.Add(59 * time.Minute) }
	_, ok := c.Get("k", "h")
	assert.True(t, ok)

	c.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, ok = c.Get("k", "h")
	assert.False(t, ok)

	_, err = os.Stat(c.keyPath("k"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestGet_ZeroTTLNeverExpires(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 0, true)
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }
	require.NoError(t, c.Set("k", "h", []byte("v")))

	c.now = func() time.Time { return start.AddDate(5, 0, 0) }
	_, ok := c.Get("k", "h")
	assert.True(t, ok)
}

func TestDisabledCache(t *testing.T) {
	c, err := New("", 0, false)
	require.NoError(t, err)

	require.NoError(t, c.Set("k", "h", []byte("v")))
	_, ok := c.Get("k", "h")
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate("k"))
	assert.NoError(t, c.Clear())

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestInvalidateAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, time.Hour, true)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", "h", []byte("1")))
	require.NoError(t, c.Set("b", "h", []byte("2")))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Greater(t, stats.TotalSize, int64(0))

	require.NoError(t, c.Invalidate("a"))
	require.NoError(t, c.Invalidate("a"), "missing entry is not an error")
	_, ok := c.Get("a", "h")
	assert.False(t, ok)

	require.NoError(t, c.Clear())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("print 1;"))
	h2 := HashBytes([]byte("print 1;"))
	h3 := HashBytes([]byte("print 2;"))

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestFileCache(t *testing.T) {
	disk, err := New(filepath.Join(t.TempDir(), "cache"), time.Hour, true)
	require.NoError(t, err)

	content := []byte("if ($x) {\n  print 1;\n}\n")
	fm := models.FileMetrics{
		Path:            "a.pl",
		Technology:      models.TechPerl,
		Metrics:         complexity.Compute(string(content), 3),
		ComplexityLevel: models.LevelLow,
		RiskScore:       4.2,
	}

	fc := NewFileCache(disk, "v1")
	_, ok := fc.Get("a.pl", content)
	assert.False(t, ok)

	require.NoError(t, fc.Put("a.pl", content, fm))

	got, ok := fc.Get("a.pl", content)
	require.True(t, ok)
	assert.Equal(t, fm, got)

	_, ok = fc.Get("a.pl", []byte("changed"))
	assert.False(t, ok, "content change invalidates")

	_, ok = NewFileCache(disk, "v2").Get("a.pl", content)
	assert.False(t, ok, "settings change invalidates")
}

func TestMemory(t *testing.T) {
	m, err := NewMemory(2)
	require.NoError(t, err)

	text := "if ($a) { print 1; }"
	first := m.Compute(text, 1)
	second := m.Compute(text, 1)

	assert.Equal(t, first, second)
	assert.Equal(t, complexity.Compute(text, 1), first)
	assert.Equal(t, int64(1), m.Hits())
	assert.Equal(t, int64(1), m.Misses())

	// Line count is part of the key.
	m.Compute(text, 500)
	assert.Equal(t, int64(2), m.Misses())

	// Eviction keeps the size bounded.
	m.Compute("x", 1)
	assert.Equal(t, 2, m.Len())
}

func TestMemory_Nil(t *testing.T) {
	var m *Memory
	assert.Equal(t, complexity.Compute("x", 1), m.Compute("x", 1))
}

func TestNewMemory_InvalidSize(t *testing.T) {
	_, err := NewMemory(0)
	assert.Error(t, err)
}
