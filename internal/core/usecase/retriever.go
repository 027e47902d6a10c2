package usecase

import (
	"context"
	"sort"

	"github.com/kradenko/rag-assistant/internal/core/domain"
	"github.com/kradenko/rag-assistant/internal/core/ports"
)

// RetrieverOptions are fixed per retriever at construction. A passage
// scoring exactly MinScore is kept.
type RetrieverOptions struct {
	MaxResults int
	MinScore   float64
}

func (o RetrieverOptions) normalize() RetrieverOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = 2
	}
	if o.MinScore < 0 {
		o.MinScore = 0
	}
	return o
}

// EmbeddingRetriever answers queries from one vector index, embedding the
// query with the same collaborator that embedded the source at ingestion.
type EmbeddingRetriever struct {
	index    ports.VectorIndex
	embedder ports.Embedder
	opts     RetrieverOptions
}

func NewEmbeddingRetriever(index ports.VectorIndex, embedder ports.Embedder, opts RetrieverOptions) *EmbeddingRetriever {
	return &EmbeddingRetriever{
		index:    index,
		embedder: embedder,
		opts:     opts.normalize(),
	}
}

func (r *EmbeddingRetriever) Retrieve(ctx context.Context, query string) ([]domain.ScoredPassage, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "embed query", err)
	}
	return r.index.Search(queryVector, r.opts.MaxResults, r.opts.MinScore)
}

// WebSearchRetriever delegates the query verbatim to an external search
// engine and wraps the hits as scored passages. MinScore and MaxResults
// are applied here after the external call, so threshold semantics match
// the embedding-backed variant.
type WebSearchRetriever struct {
	engine    ports.WebSearchEngine
	sourceTag string
	opts      RetrieverOptions
}

func NewWebSearchRetriever(engine ports.WebSearchEngine, sourceTag string, opts RetrieverOptions) *WebSearchRetriever {
	if sourceTag == "" {
		sourceTag = "web"
	}
	return &WebSearchRetriever{
		engine:    engine,
		sourceTag: sourceTag,
		opts:      opts.normalize(),
	}
}

func (r *WebSearchRetriever) Retrieve(ctx context.Context, query string) ([]domain.ScoredPassage, error) {
	results, err := r.engine.Search(ctx, query, r.opts.MaxResults)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "web search", err)
	}

	passages := make([]domain.ScoredPassage, 0, len(results))
	for _, res := range results {
		score := res.Score
		if score == 0 {
			// Engines without scoring get the sentinel value.
			score = 1.0
		}
		if score < r.opts.MinScore {
			continue
		}
		tag := res.URL
		if tag == "" {
			tag = r.sourceTag
		}
		passages = append(passages, domain.ScoredPassage{
			Text:      res.Snippet,
			SourceTag: tag,
			Score:     score,
		})
	}

	sort.SliceStable(passages, func(i, j int) bool { return passages[i].Score > passages[j].Score })
	if len(passages) > r.opts.MaxResults {
		passages = passages[:r.opts.MaxResults]
	}
	return passages, nil
}
