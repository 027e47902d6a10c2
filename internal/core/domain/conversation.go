package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// MemoryWindow keeps the most recent turns of one conversation, evicting
// oldest-first once the bound is exceeded. It is owned by a single session
// and mutated only on completed exchanges.
type MemoryWindow struct {
	bound int
	turns []ConversationTurn
}

func NewMemoryWindow(bound int) *MemoryWindow {
	if bound <= 0 {
		bound = 10
	}
	return &MemoryWindow{bound: bound}
}

func (w *MemoryWindow) Append(turns ...ConversationTurn) {
	w.turns = append(w.turns, turns...)
	if overflow := len(w.turns) - w.bound; overflow > 0 {
		w.turns = append(w.turns[:0:0], w.turns[overflow:]...)
	}
}

// Turns returns the retained turns oldest-first. The returned slice is a
// copy; callers cannot mutate the window through it.
func (w *MemoryWindow) Turns() []ConversationTurn {
	out := make([]ConversationTurn, len(w.turns))
	copy(out, w.turns)
	return out
}

func (w *MemoryWindow) Len() int { return len(w.turns) }

func (w *MemoryWindow) Bound() int { return w.bound }
