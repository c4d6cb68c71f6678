package report

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/relic/pkg/models"
)

// Index answers filter queries over a report's files with bitmaps keyed by
// overall level and technology. Positions refer to Report.Files.
type Index struct {
	files  []models.FileMetrics
	all    *roaring.Bitmap
	levels map[models.Level]*roaring.Bitmap
	techs  map[models.Technology]*roaring.Bitmap
}

// Query selects files. Zero fields match everything.
type Query struct {
	MinLevel     models.Level        // overall level at or above
	Technologies []models.Technology // any of
	MinRisk      float64
	Limit        int
}

// NewIndex indexes the files of r.
func NewIndex(r *Report) *Index {
	idx := &Index{
		files:  r.Files,
		all:    roaring.New(),
		levels: make(map[models.Level]*roaring.Bitmap),
		techs:  make(map[models.Technology]*roaring.Bitmap),
	}

	for i := range r.Files {
		pos := uint32(i)
		f := &r.Files[i]
		idx.all.Add(pos)
		bitmapFor(idx.levels, f.OverallLevel()).Add(pos)
		bitmapFor(idx.techs, f.Technology).Add(pos)
	}
	return idx
}

func bitmapFor[K comparable](m map[K]*roaring.Bitmap, key K) *roaring.Bitmap {
	b, ok := m[key]
	if !ok {
		b = roaring.New()
		m[key] = b
	}
	return b
}

// Count returns the number of files at exactly level.
func (idx *Index) Count(level models.Level) uint64 {
	if b, ok := idx.levels[level]; ok {
		return b.GetCardinality()
	}
	return 0
}

// Filter returns matching files in report order (highest risk first).
func (idx *Index) Filter(q Query) []models.FileMetrics {
	match := idx.all.Clone()

	if q.MinLevel != "" {
		levels := roaring.New()
		for _, l := range models.Levels() {
			if l.Rank() >= q.MinLevel.Rank() {
				if b, ok := idx.levels[l]; ok {
					levels.Or(b)
				}
			}
		}
		match.And(levels)
	}

	if len(q.Technologies) > 0 {
		techs := roaring.New()
		for _, t := range q.Technologies {
			if b, ok := idx.techs[t]; ok {
				techs.Or(b)
			}
		}
		match.And(techs)
	}

	out := make([]models.FileMetrics, 0, match.GetCardinality())
	it := match.Iterator()
	for it.HasNext() {
		f := idx.files[it.Next()]
		if f.RiskScore < q.MinRisk {
			continue
		}
		out = append(out, f)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// Top returns the n riskiest files.
func (idx *Index) Top(n int) []models.FileMetrics {
	return idx.Filter(Query{Limit: n})
}
