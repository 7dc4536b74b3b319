package output

import (
	"context"
	"time"
)

type MetricsPort interface {
	CommandSent(ctx context.Context, action, status string)
	ReplyWait(ctx context.Context, action string, d time.Duration, timedOut bool)
	ResearchAttempt(ctx context.Context, strategy, outcome string)
	ResearchCompleted(ctx context.Context, outcome string, d time.Duration)
}
