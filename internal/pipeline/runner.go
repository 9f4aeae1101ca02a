package pipeline

import (
	"context"
	"strings"

	"github.com/kayz/codeloom/internal/artifact"
	"github.com/kayz/codeloom/internal/catalog"
	"github.com/kayz/codeloom/internal/debug"
	"github.com/kayz/codeloom/internal/extract"
)

// Generator is the opaque text-generation capability. A call may block,
// fail or return low-quality output; the pipeline tolerates all three.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, system, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// StageRunner executes a single role turn: prompt assembly, one
// generator call, transcript append, extraction.
type StageRunner struct {
	generator Generator
	extractor *extract.Extractor
}

// NewStageRunner creates a runner bound to one generator and one
// flavor's extraction rules.
func NewStageRunner(gen Generator, ex *extract.Extractor) *StageRunner {
	return &StageRunner{generator: gen, extractor: ex}
}

// RunTurn performs one turn. The task framing text is included only on
// the first turn; later roles see it through the transcript. On
// generator failure the error is a *GenerationFailure and the transcript
// is left untouched.
func (r *StageRunner) RunTurn(ctx context.Context, role catalog.RoleSpec, transcript *Transcript, taskText string) (string, *artifact.Map, error) {
	prompt := buildTurnPrompt(transcript, taskText)

	raw, err := r.generator.Generate(ctx, role.Instructions, prompt)
	if err != nil {
		return "", nil, &GenerationFailure{Role: role.Label, Cause: err}
	}

	transcript.Append(role.Label, raw)

	artifacts := r.extractor.Extract(raw)
	debug.Log("turn %d (%s): %d chars in, %d artifacts out",
		transcript.Len(), role.Label, len(raw), artifacts.Len())

	return raw, artifacts, nil
}

func buildTurnPrompt(transcript *Transcript, taskText string) string {
	if transcript.Len() == 0 {
		return taskText
	}

	var b strings.Builder
	b.WriteString("CONVERSATION SO FAR:\n\n")
	b.WriteString(transcript.Render())
	b.WriteString("\n\nContinue with your specialty.")
	return b.String()
}
