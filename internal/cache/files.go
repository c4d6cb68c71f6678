package cache

import (
	"encoding/json"

	"github.com/panbanda/relic/pkg/models"
)

// FileCache stores classified FileMetrics keyed by path. An entry is valid
// only while the file content and the classification settings (the salt)
// are unchanged.
type FileCache struct {
	disk *Cache
	salt string
}

// NewFileCache wraps a disk cache. salt identifies the settings that shaped
// the cached records, such as thresholds and risk weights.
func NewFileCache(disk *Cache, salt string) *FileCache {
	return &FileCache{disk: disk, salt: salt}
}

func (f *FileCache) hash(content []byte) string {
	return HashBytes(append([]byte(f.salt+"\x00"), content...))
}

// Get returns the cached record for path when content still matches.
func (f *FileCache) Get(path string, content []byte) (models.FileMetrics, bool) {
	data, ok := f.disk.Get(path, f.hash(content))
	if !ok {
		return models.FileMetrics{}, false
	}
	var fm models.FileMetrics
	if err := json.Unmarshal(data, &fm); err != nil {
		return models.FileMetrics{}, false
	}
	return fm, true
}

// Put stores the record for path.
func (f *FileCache) Put(path string, content []byte, fm models.FileMetrics) error {
	if !f.disk.Enabled() {
		return nil
	}
	data, err := json.Marshal(fm)
	if err != nil {
		return err
	}
	return f.disk.Set(path, f.hash(content), data)
}
