package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kradenko/rag-assistant/internal/core/domain"
	"github.com/kradenko/rag-assistant/internal/core/ports"
)

type sessionChatFake struct {
	prompts []string
	answers []string
	err     error
}

func (f *sessionChatFake) Chat(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	answer := fmt.Sprintf("answer %d", len(f.prompts))
	if len(f.answers) > 0 {
		answer = f.answers[(len(f.prompts)-1)%len(f.answers)]
	}
	return answer, nil
}

func newTestSession(chat ports.ChatModel, passages []domain.ScoredPassage, memoryBound int) *Session {
	retriever := &fixedRetriever{passages: passages}
	aug := NewAugmentor(NewAllSourcesRouter(retriever), nil)
	return NewSession(aug, chat, memoryBound, nil)
}

func TestAskRejectsBlankQuery(t *testing.T) {
	chat := &sessionChatFake{}
	session := newTestSession(chat, nil, 10)

	_, err := session.Ask(context.Background(), "   \t ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(chat.prompts) != 0 {
		t.Fatalf("blank query must not reach the model")
	}
	if len(session.Memory()) != 0 {
		t.Fatalf("blank query must not touch memory")
	}
}

func TestAskIncludesPassagesAndMemoryInPrompt(t *testing.T) {
	chat := &sessionChatFake{}
	session := newTestSession(chat, []domain.ScoredPassage{{Text: "retrieved passage", SourceTag: "pdf", Score: 0.8}}, 10)

	if _, err := session.Ask(context.Background(), "first question"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if _, err := session.Ask(context.Background(), "second question"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	last := chat.prompts[len(chat.prompts)-1]
	if !strings.Contains(last, "retrieved passage") {
		t.Fatalf("prompt missing passage: %s", last)
	}
	if !strings.Contains(last, "first question") || !strings.Contains(last, "answer 1") {
		t.Fatalf("prompt missing prior turn: %s", last)
	}
	if !strings.Contains(last, "second question") {
		t.Fatalf("prompt missing current query: %s", last)
	}
}

func TestMemoryBoundEvictsOldestFirst(t *testing.T) {
	const bound = 6
	chat := &sessionChatFake{}
	session := newTestSession(chat, nil, bound)

	// bound/2 exchanges fill the window; five more exchanges overflow it.
	total := bound/2 + 5
	for i := 0; i < total; i++ {
		if _, err := session.Ask(context.Background(), fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("Ask(%d) error = %v", i, err)
		}
	}

	turns := session.Memory()
	if len(turns) != bound {
		t.Fatalf("expected %d retained turns, got %d", bound, len(turns))
	}
	wantFirst := fmt.Sprintf("question %d", total-bound/2)
	if turns[0].Role != domain.RoleUser || turns[0].Text != wantFirst {
		t.Fatalf("expected oldest retained turn %q, got %+v", wantFirst, turns[0])
	}
	last := turns[len(turns)-1]
	if last.Role != domain.RoleAssistant {
		t.Fatalf("window must end with the assistant turn, got %+v", last)
	}
}

func TestFailedGenerationLeavesMemoryUntouched(t *testing.T) {
	chat := &sessionChatFake{}
	session := newTestSession(chat, nil, 10)
	if _, err := session.Ask(context.Background(), "works"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	before := len(session.Memory())

	chat.err = errors.New("quota exceeded")
	_, err := session.Ask(context.Background(), "fails")
	if !domain.IsKind(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if got := len(session.Memory()); got != before {
		t.Fatalf("memory changed on failed turn: %d -> %d", before, got)
	}

	// The session stays usable for the next turn.
	chat.err = nil
	if _, err := session.Ask(context.Background(), "recovers"); err != nil {
		t.Fatalf("Ask() after failure error = %v", err)
	}
	if got := len(session.Memory()); got != before+2 {
		t.Fatalf("expected a recorded exchange after recovery, got %d turns", got)
	}
}
