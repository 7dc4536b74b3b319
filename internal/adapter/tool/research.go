package tool

import (
	"context"
	"fmt"

	"browser-bridge/internal/application/port/input"
	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
)

var _ output.ToolPort = (*ResearchTool)(nil)

type ResearchTool struct {
	researcher input.Researcher
	logger     output.LoggerPort
}

func NewResearchTool(researcher input.Researcher, logger output.LoggerPort) *ResearchTool {
	return &ResearchTool{researcher: researcher, logger: logger}
}

func (t *ResearchTool) Name() entity.ToolName { return entity.ToolResearch }
func (t *ResearchTool) Description() string {
	return "Search the web for a question and answer it in one or two sentences. Uses the user's browser when it is open."
}
func (t *ResearchTool) Parameters() map[string]interface{} {
	return object([]string{"query"}, map[string]interface{}{
		"query": prop("string", "The question to research"),
	})
}

// Execute never fails on research problems; those come back as text the
// user can read.
func (t *ResearchTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		t.logger.Error("Failed to parse arguments", "tool", t.Name(), "error", err)
		return "", err
	}

	t.logger.Info("Research tool invoked", "query", args.Query)
	answer := t.researcher.PerformResearch(ctx, args.Query)
	if answer == "" {
		return "", fmt.Errorf("%s: %w", t.Name(), entity.ErrNoContent)
	}
	return answer, nil
}
