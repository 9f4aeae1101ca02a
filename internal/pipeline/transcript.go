package pipeline

import (
	"fmt"
	"strings"
)

// Turn is one role's raw output within a run.
type Turn struct {
	RoleLabel string
	Text      string
}

// Transcript is the append-only record of every turn in one pipeline
// run. It is owned by the Coordinator, mutated in place by the stage
// runner, and discarded when the run ends.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records one turn.
func (t *Transcript) Append(roleLabel, text string) {
	t.turns = append(t.turns, Turn{RoleLabel: roleLabel, Text: text})
}

// Len returns the number of recorded turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the recorded turns.
func (t *Transcript) Turns() []Turn {
	turns := make([]Turn, len(t.turns))
	copy(turns, t.turns)
	return turns
}

// Render formats the transcript for inclusion in the next turn's prompt.
func (t *Transcript) Render() string {
	var b strings.Builder
	for _, turn := range t.turns {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", turn.RoleLabel, turn.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
