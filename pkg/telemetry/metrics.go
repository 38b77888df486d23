package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skillet-ai/skillet/pkg/errors"
)

// Metrics tracks chat, retrieval, and skill activity for production monitoring.
type Metrics struct {
	chatCounter     metric.Int64Counter
	ragCounter      metric.Int64Counter
	skillLoads      metric.Int64Counter
	toolCalls       metric.Int64Counter
	errorCounter    metric.Int64Counter
	responseSeconds metric.Float64Histogram
}

// NewMetrics creates the skillet meter instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("skillet")

	chatCounter, err := meter.Int64Counter(
		"skillet.chat.requests",
		metric.WithDescription("Chat requests by mode"),
	)
	if err != nil {
		return nil, err
	}

	ragCounter, err := meter.Int64Counter(
		"skillet.rag.queries",
		metric.WithDescription("Retrieval-augmented queries"),
	)
	if err != nil {
		return nil, err
	}

	skillLoads, err := meter.Int64Counter(
		"skillet.skills.loads",
		metric.WithDescription("Skill content loads by skill name"),
	)
	if err != nil {
		return nil, err
	}

	toolCalls, err := meter.Int64Counter(
		"skillet.tools.calls",
		metric.WithDescription("Tool invocations by tool name and outcome"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"skillet.errors.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	responseSeconds, err := meter.Float64Histogram(
		"skillet.chat.response_seconds",
		metric.WithDescription("Chat response latency in seconds"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		chatCounter:     chatCounter,
		ragCounter:      ragCounter,
		skillLoads:      skillLoads,
		toolCalls:       toolCalls,
		errorCounter:    errorCounter,
		responseSeconds: responseSeconds,
	}, nil
}

// RecordChat increments the chat counter for the given mode.
func (m *Metrics) RecordChat(ctx context.Context, mode string, seconds float64) {
	if m == nil {
		return
	}
	m.chatCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	m.responseSeconds.Record(ctx, seconds, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordRAGQuery increments the retrieval query counter.
func (m *Metrics) RecordRAGQuery(ctx context.Context, hits int) {
	if m == nil {
		return
	}
	m.ragCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("hits", hits)))
}

// RecordSkillLoad increments the skill load counter.
func (m *Metrics) RecordSkillLoad(ctx context.Context, skill string) {
	if m == nil {
		return
	}
	m.skillLoads.Add(ctx, 1, metric.WithAttributes(attribute.String("skill", skill)))
}

// RecordToolCall increments the tool invocation counter.
func (m *Metrics) RecordToolCall(ctx context.Context, tool string, success bool) {
	if m == nil {
		return
	}
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("success", success),
	))
}

// RecordError increments the error counter for the given error and component.
func (m *Metrics) RecordError(ctx context.Context, err error, component string) {
	if m == nil || err == nil {
		return
	}
	code := "UNKNOWN"
	if se := errors.AsError(err); se != nil {
		code = string(se.Code)
	}
	m.errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error.code", code),
		attribute.String("component", component),
	))
}
