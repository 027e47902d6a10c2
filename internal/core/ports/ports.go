package ports

import (
	"context"

	"github.com/kradenko/rag-assistant/internal/core/domain"
)

// Embedder builds vectors for segment batches and query text. The batch
// call returns one vector per input, same order, fixed dimensionality.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChatModel answers a fully assembled prompt.
type ChatModel interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// WebSearchEngine runs a query against an external search service.
type WebSearchEngine interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.WebResult, error)
}

// TextExtractor turns a source document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Chunker splits extracted text into retrievable windows.
type Chunker interface {
	Split(text string) []string
}

// VectorIndex is an append-only in-memory store of (segment, vector)
// pairs. Dimensionality is fixed by the first Add; the index is read-only
// once ingestion completes, so Search needs no synchronization.
type VectorIndex interface {
	Add(segments []domain.Segment, vectors [][]float32) error
	Search(queryVector []float32, maxResults int, minScore float64) ([]domain.ScoredPassage, error)
	Dimension() int
	Len() int
}

// ContentRetriever returns scored passages for a query from one source,
// ordered by descending score, filtered and truncated by the retriever's
// configured minimum score and result limit.
type ContentRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.ScoredPassage, error)
}

// QueryRouter decides which registered retrievers to consult for a query.
// An empty result means "answer without augmentation". Routers are
// query-stateless and never mutate retriever state.
type QueryRouter interface {
	Route(ctx context.Context, query string) ([]ContentRetriever, error)
}
