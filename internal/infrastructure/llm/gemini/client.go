package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kradenko/rag-assistant/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client talks to the Gemini REST API. One client serves both the chat
// model and the embedding model; calls run through a shared retry/breaker
// executor.
type Client struct {
	baseURL    string
	apiKey     string
	genModel   string
	embedModel string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, apiKey, genModel, embedModel string, exec *resilience.Executor) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

// Chat sends one assembled prompt to the generation model and returns the
// first candidate's text.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	request := map[string]any{
		"contents": []map[string]any{
			{"parts": []part{{Text: prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature": 0.3,
		},
	}

	var response struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.genModel)
	err := c.exec.Execute(ctx, "generate", func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, request, &response, "generate")
	}, classifyGeminiError)
	if err != nil {
		return "", err
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: empty candidate list")
	}

	var b strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}

// Embed vectorizes a batch of texts in one round-trip, returning one
// vector per input in the same order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]map[string]any, 0, len(texts))
	for _, text := range texts {
		requests = append(requests, map[string]any{
			"model":   "models/" + c.embedModel,
			"content": content{Parts: []part{{Text: text}}},
		})
	}

	var response struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}

	path := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", c.embedModel)
	err := c.exec.Execute(ctx, "embed", func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, map[string]any{"requests": requests}, &response, "embed")
	}, classifyGeminiError)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(response.Embeddings))
	for _, e := range response.Embeddings {
		out = append(out, e.Values)
	}
	return out, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("gemini embed: empty result")
	}
	return vectors[0], nil
}
