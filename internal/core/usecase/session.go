package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kradenko/rag-assistant/internal/core/domain"
	"github.com/kradenko/rag-assistant/internal/core/ports"
)

// Session drives one conversation: augment the query, call the chat model,
// record the exchange. It is long-lived across turns but serves one
// request at a time.
type Session struct {
	augmentor    *Augmentor
	chat         ports.ChatModel
	memory       *domain.MemoryWindow
	instructions string
	logger       *slog.Logger
}

func NewSession(
	augmentor *Augmentor,
	chat ports.ChatModel,
	memoryBound int,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		augmentor:    augmentor,
		chat:         chat,
		memory:       domain.NewMemoryWindow(memoryBound),
		instructions: defaultInstructions,
		logger:       logger,
	}
}

// Ask answers one user query. A blank query is rejected without touching
// any collaborator. Memory is mutated only after the chat model succeeds,
// so a failed turn never leaves an orphaned user message behind.
func (s *Session) Ask(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "ask", fmt.Errorf("query is blank"))
	}

	augmented, err := s.augmentor.Augment(ctx, query)
	if err != nil {
		return "", err
	}

	prompt := buildChatPrompt(s.instructions, augmented, s.memory.Turns())
	answer, err := s.chat.Chat(ctx, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "ask", err)
	}

	s.memory.Append(
		domain.ConversationTurn{Role: domain.RoleUser, Text: query},
		domain.ConversationTurn{Role: domain.RoleAssistant, Text: answer},
	)
	s.logger.Debug("turn_completed", "passages", len(augmented.Passages), "memory_turns", s.memory.Len())
	return answer, nil
}

// Memory exposes the window for inspection; the returned turns are a copy.
func (s *Session) Memory() []domain.ConversationTurn {
	return s.memory.Turns()
}
