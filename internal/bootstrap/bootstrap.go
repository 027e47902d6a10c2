package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kradenko/rag-assistant/internal/config"
	"github.com/kradenko/rag-assistant/internal/core/domain"
	"github.com/kradenko/rag-assistant/internal/core/ports"
	"github.com/kradenko/rag-assistant/internal/core/usecase"
	"github.com/kradenko/rag-assistant/internal/infrastructure/chunking"
	"github.com/kradenko/rag-assistant/internal/infrastructure/extractor/pdf"
	"github.com/kradenko/rag-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/kradenko/rag-assistant/internal/infrastructure/extractor/xlsx"
	"github.com/kradenko/rag-assistant/internal/infrastructure/llm/gemini"
	"github.com/kradenko/rag-assistant/internal/infrastructure/resilience"
	"github.com/kradenko/rag-assistant/internal/infrastructure/vector/memory"
	"github.com/kradenko/rag-assistant/internal/infrastructure/websearch/tavily"
	"github.com/kradenko/rag-assistant/internal/observability/metrics"
)

const serviceName = "rag-assistant"

// App holds the wired assistant: one ingestion pipeline, one retriever per
// registered source, the configured router behind an augmentor and a single
// conversation session on top.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.AssistantMetrics
	pipeline *usecase.IngestPipeline
	chat     ports.ChatModel
	embedder ports.Embedder
	search   ports.WebSearchEngine

	descriptors []usecase.RetrieverDescriptor
	session     *usecase.Session
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("bootstrap: GEMINI_KEY is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	llm := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiGenModel, cfg.GeminiEmbedModel, exec)

	app := &App{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.NewAssistantMetrics(serviceName),
		chat:     llm,
		embedder: llm,
		pipeline: usecase.NewIngestPipeline(
			chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
			llm,
			func() ports.VectorIndex { return memory.NewIndex() },
			logger,
		),
	}
	if cfg.TavilyAPIKey != "" {
		app.search = tavily.New(cfg.TavilyBaseURL, cfg.TavilyAPIKey)
	}
	return app, nil
}

// IngestSources builds one retriever per source. A source that fails to
// extract or embed is skipped with a warning; the assistant starts with
// whatever subset succeeded.
func (a *App) IngestSources(ctx context.Context, sources []domain.SourceConfig) error {
	opts := usecase.RetrieverOptions{MaxResults: a.cfg.MaxResults, MinScore: a.cfg.MinScore}

	for _, src := range sources {
		start := time.Now()
		index, err := a.ingestOne(ctx, src)
		segments := 0
		if index != nil {
			segments = index.Len()
		}
		a.metrics.RecordIngest(serviceName, src.Name, segments, time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			a.logger.Warn("source_skipped", "source", src.Name, "error", err)
			continue
		}

		a.descriptors = append(a.descriptors, usecase.RetrieverDescriptor{
			Retriever:   usecase.NewEmbeddingRetriever(index, a.embedder, opts),
			Description: src.Description,
		})
	}

	if a.search != nil {
		a.descriptors = append(a.descriptors, usecase.RetrieverDescriptor{
			Retriever:   usecase.NewWebSearchRetriever(a.search, "web", opts),
			Description: "live web search for current events and anything not covered by the documents",
		})
	}

	if len(a.descriptors) == 0 {
		return fmt.Errorf("bootstrap: no source could be ingested")
	}

	router, err := a.buildRouter()
	if err != nil {
		return err
	}
	augmentor := usecase.NewAugmentor(router, a.logger)
	augmentor.Observe(func(selected, passages int) {
		a.metrics.RecordContext(serviceName, selected, passages)
	})
	a.session = usecase.NewSession(augmentor, a.chat, a.cfg.MemoryWindow, a.logger)
	return nil
}

func (a *App) ingestOne(ctx context.Context, src domain.SourceConfig) (ports.VectorIndex, error) {
	text, err := extractorFor(src.Path).Extract(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	return a.pipeline.Ingest(ctx, src.Name, text)
}

func (a *App) buildRouter() (ports.QueryRouter, error) {
	retrievers := make([]ports.ContentRetriever, 0, len(a.descriptors))
	for _, d := range a.descriptors {
		retrievers = append(retrievers, d.Retriever)
	}

	switch a.cfg.RouterPolicy {
	case "", "all":
		return usecase.NewAllSourcesRouter(retrievers...), nil
	case "union":
		return usecase.NewUnionRouter(retrievers...), nil
	case "classify":
		return usecase.NewClassificationRouter(a.chat, a.descriptors, a.cfg.RouterFailClosed, a.logger), nil
	case "gate":
		tokens := strings.Split(a.cfg.GateNegativeTokens, ",")
		for i := range tokens {
			tokens[i] = strings.TrimSpace(tokens[i])
		}
		return usecase.NewBinaryGateRouter(a.chat, retrievers[0], a.cfg.GateTopic, tokens, a.logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown router policy %q", a.cfg.RouterPolicy)
	}
}

// Ask runs one conversational turn and records its outcome.
func (a *App) Ask(ctx context.Context, query string) (string, error) {
	if a.session == nil {
		return "", fmt.Errorf("bootstrap: no sources ingested")
	}
	start := time.Now()
	answer, err := a.session.Ask(ctx, query)
	a.metrics.RecordAsk(serviceName, time.Since(start), err)
	return answer, err
}

// Metrics exposes the prometheus registry for an optional scrape endpoint.
func (a *App) Metrics() *metrics.AssistantMetrics {
	return a.metrics
}

func extractorFor(path string) ports.TextExtractor {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdf.New()
	case ".xlsx":
		return xlsx.New()
	default:
		return plaintext.New()
	}
}
