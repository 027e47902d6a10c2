package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/kradenko/rag-assistant/internal/core/ports"
)

// RetrieverDescriptor pairs a retriever with a natural-language
// description of what its source covers. The set registered with a router
// is fixed for the life of the session.
type RetrieverDescriptor struct {
	Retriever   ports.ContentRetriever
	Description string
}

// AllSourcesRouter consults every registered retriever for every query.
// The right choice when there is exactly one source and routing adds
// nothing.
type AllSourcesRouter struct {
	retrievers []ports.ContentRetriever
}

func NewAllSourcesRouter(retrievers ...ports.ContentRetriever) *AllSourcesRouter {
	return &AllSourcesRouter{retrievers: retrievers}
}

func (r *AllSourcesRouter) Route(context.Context, string) ([]ports.ContentRetriever, error) {
	out := make([]ports.ContentRetriever, len(r.retrievers))
	copy(out, r.retrievers)
	return out, nil
}

// UnionRouter always returns its full fixed retriever list, regardless of
// the query text. It combines a local embedding source with an
// always-available external one, relying on per-retriever score thresholds
// to suppress irrelevant contributions instead of pre-filtering by query.
type UnionRouter struct {
	retrievers []ports.ContentRetriever
}

func NewUnionRouter(retrievers ...ports.ContentRetriever) *UnionRouter {
	return &UnionRouter{retrievers: retrievers}
}

func (r *UnionRouter) Route(context.Context, string) ([]ports.ContentRetriever, error) {
	out := make([]ports.ContentRetriever, len(r.retrievers))
	copy(out, r.retrievers)
	return out, nil
}

// ClassificationRouter shows the chat model the query together with every
// source description and asks it to pick the relevant source numbers. An
// answer that maps to no known source falls open to the full retriever set
// unless FailClosed is set; the ambiguity is never fatal.
type ClassificationRouter struct {
	chat        ports.ChatModel
	descriptors []RetrieverDescriptor
	failClosed  bool
	logger      *slog.Logger
}

func NewClassificationRouter(
	chat ports.ChatModel,
	descriptors []RetrieverDescriptor,
	failClosed bool,
	logger *slog.Logger,
) *ClassificationRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassificationRouter{
		chat:        chat,
		descriptors: descriptors,
		failClosed:  failClosed,
		logger:      logger,
	}
}

func (r *ClassificationRouter) Route(ctx context.Context, query string) ([]ports.ContentRetriever, error) {
	answer, err := r.chat.Chat(ctx, r.buildPrompt(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("router_classification_failed", "error", err)
		return r.fallback("model call failed"), nil
	}

	selected := r.parseSelection(answer)
	if len(selected) == 0 {
		r.logger.Warn("router_classification_unparseable", "answer", answer)
		return r.fallback("no recognizable selection"), nil
	}

	r.logger.Debug("router_classification", "answer", answer, "selected", len(selected))
	return selected, nil
}

func (r *ClassificationRouter) buildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Several knowledge sources are available:\n")
	for i, d := range r.descriptors {
		fmt.Fprintf(&b, "%d: %s\n", i+1, d.Description)
	}
	b.WriteString("\nWhich sources are relevant to the user query below?\n")
	b.WriteString("Answer with the source numbers only, separated by commas.\n\n")
	b.WriteString("Query: " + query)
	return b.String()
}

// parseSelection pulls every integer out of the model's free-text answer
// and maps the valid ones onto registered sources, first mention wins.
func (r *ClassificationRouter) parseSelection(answer string) []ports.ContentRetriever {
	fields := strings.FieldsFunc(answer, func(c rune) bool { return !unicode.IsDigit(c) })

	seen := make(map[int]struct{}, len(fields))
	out := make([]ports.ContentRetriever, 0, len(fields))
	for _, field := range fields {
		var n int
		if _, err := fmt.Sscanf(field, "%d", &n); err != nil {
			continue
		}
		if n < 1 || n > len(r.descriptors) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, r.descriptors[n-1].Retriever)
	}
	return out
}

func (r *ClassificationRouter) fallback(reason string) []ports.ContentRetriever {
	if r.failClosed {
		r.logger.Warn("router_fail_closed", "reason", reason)
		return nil
	}
	out := make([]ports.ContentRetriever, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d.Retriever)
	}
	return out
}

// BinaryGateRouter asks the chat model whether a query is in-domain for
// its single source. Only an answer starting with one of the configured
// negative tokens closes the gate; "maybe", unparseable text and even a
// failed model call all route to the retriever, a deliberate bias toward
// over-retrieving.
type BinaryGateRouter struct {
	chat           ports.ChatModel
	retriever      ports.ContentRetriever
	topic          string
	negativeTokens []string
	logger         *slog.Logger
}

func NewBinaryGateRouter(
	chat ports.ChatModel,
	retriever ports.ContentRetriever,
	topic string,
	negativeTokens []string,
	logger *slog.Logger,
) *BinaryGateRouter {
	if len(negativeTokens) == 0 {
		negativeTokens = []string{"no", "non"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BinaryGateRouter{
		chat:           chat,
		retriever:      retriever,
		topic:          topic,
		negativeTokens: negativeTokens,
		logger:         logger,
	}
}

func (r *BinaryGateRouter) Route(ctx context.Context, query string) ([]ports.ContentRetriever, error) {
	prompt := fmt.Sprintf(
		"Is the following query about %s? Answer only 'yes', 'no' or 'maybe'.\nQuery: %s",
		r.topic, query,
	)

	answer, err := r.chat.Chat(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("router_gate_failed", "error", err)
		return []ports.ContentRetriever{r.retriever}, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, token := range r.negativeTokens {
		if token != "" && strings.HasPrefix(normalized, strings.ToLower(token)) {
			r.logger.Debug("router_gate_closed", "answer", answer)
			return nil, nil
		}
	}

	r.logger.Debug("router_gate_open", "answer", answer)
	return []ports.ContentRetriever{r.retriever}, nil
}
