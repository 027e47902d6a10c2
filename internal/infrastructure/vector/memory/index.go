package memory

import (
	"fmt"
	"math"
	"sort"

	"github.com/kradenko/rag-assistant/internal/core/domain"
)

type entry struct {
	segment domain.Segment
	vector  []float32
}

// Index is an append-only in-memory embedding store. Dimensionality is
// fixed by the first Add; entries are never updated or removed. Once
// ingestion is done the index is read-only, so lookups need no locking.
type Index struct {
	dimension int
	entries   []entry
}

func NewIndex() *Index {
	return &Index{}
}

// Add appends (segment, vector) pairs in the given order. Every vector
// must match the index dimensionality established by the first batch.
func (ix *Index) Add(segments []domain.Segment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return domain.WrapError(domain.ErrIngestion, "index add",
			fmt.Errorf("%d segments but %d vectors", len(segments), len(vectors)))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return domain.WrapError(domain.ErrIngestion, "index add",
				fmt.Errorf("empty vector for segment %s", segments[i].ID))
		}
		if ix.dimension == 0 {
			ix.dimension = len(v)
		}
		if len(v) != ix.dimension {
			return domain.WrapError(domain.ErrDimensionMismatch, "index add",
				fmt.Errorf("vector has %d dimensions, index has %d", len(v), ix.dimension))
		}
	}
	for i := range segments {
		ix.entries = append(ix.entries, entry{segment: segments[i], vector: vectors[i]})
	}
	return nil
}

// Search scores every entry against the query vector with cosine
// similarity mapped to [0,1], drops scores below minScore, and returns the
// best maxResults passages in descending score order. A score exactly at
// minScore is kept.
func (ix *Index) Search(queryVector []float32, maxResults int, minScore float64) ([]domain.ScoredPassage, error) {
	if len(ix.entries) == 0 {
		return nil, nil
	}
	if len(queryVector) != ix.dimension {
		return nil, domain.WrapError(domain.ErrDimensionMismatch, "index search",
			fmt.Errorf("query vector has %d dimensions, index has %d", len(queryVector), ix.dimension))
	}
	if maxResults <= 0 {
		maxResults = 2
	}

	out := make([]domain.ScoredPassage, 0, len(ix.entries))
	for _, e := range ix.entries {
		score := relevance(queryVector, e.vector)
		if score < minScore {
			continue
		}
		out = append(out, domain.ScoredPassage{
			Text:      e.segment.Text,
			SourceTag: e.segment.SourceTag,
			Score:     score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func (ix *Index) Dimension() int { return ix.dimension }

func (ix *Index) Len() int { return len(ix.entries) }

// relevance maps cosine similarity from [-1,1] onto [0,1] so thresholds
// keep their usual meaning for normalized and unnormalized vectors alike.
func relevance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cosine := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return (cosine + 1) / 2
}
