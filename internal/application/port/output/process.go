package output

import "context"

type ProcessProbePort interface {
	IsRunning(ctx context.Context, name string) bool
}
