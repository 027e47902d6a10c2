package usecase

import (
	"fmt"
	"log/slog"

	"context"

	"github.com/google/uuid"

	"github.com/kradenko/rag-assistant/internal/core/domain"
	"github.com/kradenko/rag-assistant/internal/core/ports"
)

// IngestPipeline turns one document's text into a freshly populated vector
// index: split into overlapping windows, embed the whole batch in a single
// collaborator call, append (segment, vector) pairs in production order.
type IngestPipeline struct {
	chunker  ports.Chunker
	embedder ports.Embedder
	newIndex func() ports.VectorIndex
	logger   *slog.Logger
}

func NewIngestPipeline(
	chunker ports.Chunker,
	embedder ports.Embedder,
	newIndex func() ports.VectorIndex,
	logger *slog.Logger,
) *IngestPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestPipeline{
		chunker:  chunker,
		embedder: embedder,
		newIndex: newIndex,
		logger:   logger,
	}
}

// Ingest builds the index for one source. A failure is fatal to this
// source only; nothing outside the returned index is touched.
func (p *IngestPipeline) Ingest(ctx context.Context, sourceTag, text string) (ports.VectorIndex, error) {
	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIngestion, "ingest "+sourceTag,
			fmt.Errorf("document produced no segments"))
	}

	vectors, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIngestion, "ingest "+sourceTag, err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(domain.ErrIngestion, "ingest "+sourceTag,
			fmt.Errorf("embedding returned %d vectors for %d segments", len(vectors), len(chunks)))
	}

	segments := make([]domain.Segment, 0, len(chunks))
	for _, chunk := range chunks {
		segments = append(segments, domain.Segment{
			ID:        uuid.NewString(),
			Text:      chunk,
			SourceTag: sourceTag,
		})
	}

	index := p.newIndex()
	if err := index.Add(segments, vectors); err != nil {
		return nil, err
	}

	p.logger.Info("source_ingested",
		"source", sourceTag,
		"segments", len(segments),
		"dimension", index.Dimension(),
	)
	return index, nil
}
