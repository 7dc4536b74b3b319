// Package metrics records bridge and research activity through the
// OpenTelemetry metrics API. Without a configured provider every instrument
// is a no-op.
package metrics

import (
	"context"
	"time"

	"browser-bridge/internal/application/port/output"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "browser-bridge"

var _ output.MetricsPort = (*Metrics)(nil)

// waitBuckets covers the reply poll window and the research retry loop, in seconds.
var waitBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30}

type Metrics struct {
	commands         metric.Int64Counter
	replyWait        metric.Float64Histogram
	researchAttempts metric.Int64Counter
	researchRuns     metric.Int64Counter
	researchDuration metric.Float64Histogram
}

func New(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.commands, err = m.Int64Counter("bridge.commands",
		metric.WithDescription("Commands written to the outbound mailbox by action and status."),
	); err != nil {
		return nil, err
	}
	if met.replyWait, err = m.Float64Histogram("bridge.reply.wait",
		metric.WithDescription("Time spent waiting for the extension to answer."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(waitBuckets...),
	); err != nil {
		return nil, err
	}
	if met.researchAttempts, err = m.Int64Counter("research.attempts",
		metric.WithDescription("Content acquisition attempts by strategy and outcome."),
	); err != nil {
		return nil, err
	}
	if met.researchRuns, err = m.Int64Counter("research.runs",
		metric.WithDescription("Completed research queries by outcome."),
	); err != nil {
		return nil, err
	}
	if met.researchDuration, err = m.Float64Histogram("research.duration",
		metric.WithDescription("End-to-end research latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(waitBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

func NewNop() *Metrics {
	m, err := New(noop.NewMeterProvider())
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) CommandSent(ctx context.Context, action, status string) {
	m.commands.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func (m *Metrics) ReplyWait(ctx context.Context, action string, d time.Duration, timedOut bool) {
	m.replyWait.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("timed_out", timedOut),
	))
}

func (m *Metrics) ResearchAttempt(ctx context.Context, strategy, outcome string) {
	m.researchAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) ResearchCompleted(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.researchRuns.Add(ctx, 1, attrs)
	m.researchDuration.Record(ctx, d.Seconds(), attrs)
}
