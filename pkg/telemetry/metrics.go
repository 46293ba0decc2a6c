package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics holds the engine's instruments
type EngineMetrics struct {
	resolutions metric.Int64Counter
	limitChecks metric.Int64Counter
}

// NewEngineMetrics creates the engine instruments on the global meter
// provider. Safe to use with the no-op provider when telemetry is
// disabled.
func NewEngineMetrics() (*EngineMetrics, error) {
	meter := otel.Meter("storefront-engine")

	resolutions, err := meter.Int64Counter("tenant_resolutions_total",
		metric.WithDescription("Tenant resolutions by outcome"))
	if err != nil {
		return nil, err
	}
	limitChecks, err := meter.Int64Counter("limit_checks_total",
		metric.WithDescription("Plan limit checks by outcome"))
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		resolutions: resolutions,
		limitChecks: limitChecks,
	}, nil
}

// RecordResolution counts one tenant resolution: outcome is "ok",
// "not_found" or "error"
func (m *EngineMetrics) RecordResolution(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordLimitCheck counts one limit check: outcome is "allowed" or
// "exceeded"
func (m *EngineMetrics) RecordLimitCheck(ctx context.Context, resource, outcome string) {
	if m == nil {
		return
	}
	m.limitChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("outcome", outcome)))
}
