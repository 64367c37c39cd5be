package metrics

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments. Constructed once at
// startup and passed by reference into handlers and the authorizer.
type AppMetrics struct {
	RegisterRequestsTotal    metric.Int64Counter
	LoginRequestsTotal       metric.Int64Counter
	AuthorizerDecisionsTotal metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
	DbQueryErrorsTotal       metric.Int64Counter
}

// InitAppMetrics creates the metric instruments from the globally configured
// MeterProvider.
func InitAppMetrics() (*AppMetrics, error) {
	meter := otel.GetMeterProvider().Meter("taskvault")
	var err error
	m := &AppMetrics{}

	m.RegisterRequestsTotal, err = meter.Int64Counter(
		"register_requests_total",
		metric.WithDescription("Total number of register requests completed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create register_requests_total: %w", err)
	}

	m.LoginRequestsTotal, err = meter.Int64Counter(
		"login_requests_total",
		metric.WithDescription("Total number of login requests completed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login_requests_total: %w", err)
	}

	m.AuthorizerDecisionsTotal, err = meter.Int64Counter(
		"authorizer_decisions_total",
		metric.WithDescription("Total number of authorizer allow/deny decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer_decisions_total: %w", err)
	}

	m.DbQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_duration_seconds: %w", err)
	}

	m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_errors_total: %w", err)
	}

	return m, nil
}
