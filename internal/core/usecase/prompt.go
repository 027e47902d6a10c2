package usecase

import (
	"fmt"
	"strings"

	"github.com/kradenko/rag-assistant/internal/core/domain"
)

const defaultInstructions = `You are a helpful assistant.
When context passages are provided, prefer them over your own knowledge.
If the context does not cover the question, say so directly.`

func buildChatPrompt(
	instructions string,
	augmented domain.AugmentedContext,
	priorTurns []domain.ConversationTurn,
) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n")

	if len(augmented.Passages) > 0 {
		b.WriteString("\nContext:\n")
		for idx, p := range augmented.Passages {
			fmt.Fprintf(&b, "[%d] source=%s score=%.3f\n%s\n\n", idx+1, p.SourceTag, p.Score, p.Text)
		}
	}

	if len(priorTurns) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range priorTurns {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
		}
	}

	b.WriteString("\nuser: ")
	b.WriteString(augmented.Query)
	b.WriteString("\nassistant:")
	return b.String()
}
