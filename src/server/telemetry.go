package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "perfmon-dashboard/server"

// telemetry records one span and one duration sample per request through the
// global OpenTelemetry providers (no-ops unless the process installs an SDK).
type telemetry struct {
	tracer    trace.Tracer
	requests  metric.Int64Counter
	durations metric.Float64Histogram
}

// -----------------------------------------------------------------------------

func newTelemetry() (*telemetry, error) {
	meter := otel.Meter(instrumentationName)

	requests, err := meter.Int64Counter("perfmon.http.requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	durations, err := meter.Float64Histogram("perfmon.http.duration.ms",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create histogram: %w", err)
	}

	return &telemetry{
		tracer:    otel.Tracer(instrumentationName),
		requests:  requests,
		durations: durations,
	}, nil
}

// -----------------------------------------------------------------------------

func (t *telemetry) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := t.tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
		}
		span.SetAttributes(attrs...)
		span.End()

		t.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		t.durations.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(attrs...))
	}
}
