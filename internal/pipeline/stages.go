package pipeline

import (
	"context"

	"relabel/internal/rename"
)

// renameStage adapts the rename orchestrator to the stage contract.
type renameStage struct {
	orch  *rename.Orchestrator
	state *rename.State
}

// NewRenameStage wraps an orchestrator as a pipeline stage sharing the
// run's progress state.
func NewRenameStage(orch *rename.Orchestrator, state *rename.State) Stage {
	return &renameStage{orch: orch, state: state}
}

func (s *renameStage) Name() string { return "rename" }

func (s *renameStage) Apply(ctx context.Context, source string) (string, error) {
	return s.orch.RenameSource(ctx, source, s.state.CurrentFile, s.state)
}
