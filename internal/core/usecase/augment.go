package usecase

import (
	"context"
	"log/slog"

	"github.com/kradenko/rag-assistant/internal/core/domain"
	"github.com/kradenko/rag-assistant/internal/core/ports"
)

// Augmentor runs the routing decision, queries the selected retrievers and
// merges their passages into one sequence. Each source keeps its internal
// rank order and sources are concatenated in router-selection order; there
// is no cross-source re-ranking by score.
type Augmentor struct {
	router   ports.QueryRouter
	logger   *slog.Logger
	observer func(selected, passages int)
}

func NewAugmentor(router ports.QueryRouter, logger *slog.Logger) *Augmentor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Augmentor{router: router, logger: logger}
}

// Observe registers a callback invoked after every successful augmentation
// with the number of selected retrievers and assembled passages.
func (a *Augmentor) Observe(fn func(selected, passages int)) {
	a.observer = fn
}

// Augment returns the context passages for one query. A failing retriever
// contributes nothing but never aborts the others; zero passages overall
// is a valid terminal state, not an error.
func (a *Augmentor) Augment(ctx context.Context, query string) (domain.AugmentedContext, error) {
	retrievers, err := a.router.Route(ctx, query)
	if err != nil {
		return domain.AugmentedContext{}, domain.WrapError(domain.ErrRouting, "route query", err)
	}

	seen := make(map[string]struct{})
	var passages []domain.ScoredPassage
	for _, retriever := range retrievers {
		got, err := retriever.Retrieve(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return domain.AugmentedContext{}, domain.WrapError(domain.ErrRetrieval, "retrieve", err)
			}
			a.logger.Warn("retriever_failed", "error", err)
			continue
		}
		for _, p := range got {
			if _, dup := seen[p.Text]; dup {
				continue
			}
			seen[p.Text] = struct{}{}
			passages = append(passages, p)
		}
	}

	a.logger.Debug("query_augmented",
		"retrievers", len(retrievers),
		"passages", len(passages),
	)
	if a.observer != nil {
		a.observer(len(retrievers), len(passages))
	}
	return domain.AugmentedContext{Query: query, Passages: passages}, nil
}
