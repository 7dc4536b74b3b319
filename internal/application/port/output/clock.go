package output

import "time"

type ClockPort interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
