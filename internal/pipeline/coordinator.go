package pipeline

import (
	"context"
	"fmt"

	"github.com/kayz/codeloom/internal/artifact"
	"github.com/kayz/codeloom/internal/catalog"
	"github.com/kayz/codeloom/internal/extract"
	"github.com/kayz/codeloom/internal/logger"
	"github.com/kayz/codeloom/internal/synth"
)

// RunResult is the only structure a pipeline run hands back. Degraded is
// true whenever the artifacts came from fallback synthesis rather than
// genuine extraction; Failure carries the mid-run error in that case.
type RunResult struct {
	Artifacts *artifact.Map
	Degraded  bool
	Turns     int
	Failure   error
}

// TurnEvent describes one completed turn, for progress reporting.
type TurnEvent struct {
	Flavor    string
	Role      string
	Turn      int
	Budget    int
	Artifacts int
}

// TurnObserver receives a TurnEvent after each completed turn.
type TurnObserver func(ev TurnEvent)

// Coordinator owns the ordered role loop for every flavor in its
// catalog. A run executes turns strictly sequentially, merges per-turn
// artifacts later-wins, and never lets a mid-run failure escape: callers
// always receive a RunResult.
type Coordinator struct {
	catalog   *catalog.Catalog
	generator Generator
	observer  TurnObserver
}

// NewCoordinator creates a coordinator over cat using gen for every
// turn. The observer may be nil.
func NewCoordinator(cat *catalog.Catalog, gen Generator, observer TurnObserver) *Coordinator {
	return &Coordinator{catalog: cat, generator: gen, observer: observer}
}

// Run executes the flavor's pipeline over taskText. The only error it
// returns is catalog.ErrUnknownFlavor for a bad flavor id; generation
// failures and cancellation are folded into a degraded RunResult so one
// flavor's failure never aborts a caller orchestrating several.
func (c *Coordinator) Run(ctx context.Context, flavorID, taskText, projectName string) (RunResult, error) {
	flavor, ok := c.catalog.Get(flavorID)
	if !ok {
		return RunResult{}, fmt.Errorf("%w: %s", catalog.ErrUnknownFlavor, flavorID)
	}

	roles := flavor.Spec.Roles
	if len(roles) > flavor.Spec.TurnBudget {
		roles = roles[:flavor.Spec.TurnBudget]
	}

	transcript := NewTranscript()
	runner := NewStageRunner(c.generator, extract.New(flavor.Extract))

	merged := artifact.NewMap()
	roleTexts := make([]synth.RoleText, 0, len(roles))

	for i, role := range roles {
		// The generator call itself is atomic from our side, so
		// cancellation is only honored between turns.
		if err := ctx.Err(); err != nil {
			logger.Warnf("run %s cancelled after %d turns", flavorID, i)
			return c.degradedResult(flavor, projectName, roleTexts, i, err), nil
		}

		raw, artifacts, err := runner.RunTurn(ctx, role, transcript, taskText)
		if err != nil {
			logger.Errorf("run %s turn %d (%s) failed: %v", flavorID, i+1, role.Label, err)
			return c.degradedResult(flavor, projectName, roleTexts, i, err), nil
		}

		roleTexts = append(roleTexts, synth.RoleText{Label: role.Label, Text: raw})
		merged.Merge(artifacts)

		if c.observer != nil {
			c.observer(TurnEvent{
				Flavor:    flavorID,
				Role:      role.Label,
				Turn:      i + 1,
				Budget:    flavor.Spec.TurnBudget,
				Artifacts: artifacts.Len(),
			})
		}
	}

	if merged.Len() == 0 {
		logger.Warnf("run %s extracted nothing across %d turns, synthesizing fallback", flavorID, len(roles))
		return RunResult{
			Artifacts: synth.Synthesize(roleTexts, projectName, flavor.Scaffold),
			Degraded:  true,
			Turns:     len(roles),
		}, nil
	}

	return RunResult{Artifacts: merged, Turns: len(roles)}, nil
}

// degradedResult builds the failure-path result: fallback synthesis over
// whatever raw text was collected before the run stopped.
func (c *Coordinator) degradedResult(flavor *catalog.Flavor, projectName string, roleTexts []synth.RoleText, turns int, cause error) RunResult {
	return RunResult{
		Artifacts: synth.Synthesize(roleTexts, projectName, flavor.Scaffold),
		Degraded:  true,
		Turns:     turns,
		Failure:   cause,
	}
}
