package input

import (
	"context"

	"browser-bridge/internal/domain/entity"
)

type Researcher interface {
	// PerformResearch always returns user-facing text, never an error.
	PerformResearch(ctx context.Context, query string) string
	Research(ctx context.Context, query string) (*entity.ResearchReport, error)
}
