package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName         = "alignzo-api"
	catalogSpanName    = "alignzo.catalog.request"
	catalogEventName   = "catalog.request.metrics"
	catalogEventDomain = "alignzo.api"
	catalogRoute       = "/api/categories/project-options"
)

// catalogRequestMetrics accumulates per-request observations for the
// catalog endpoint and emits them once, as an otel span plus a structured
// observability event carrying the trace id.
type catalogRequestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time

	authDuration       time.Duration
	fetchDuration      time.Duration
	encodeDuration     time.Duration
	categoriesReturned int
	errorStage         string
}

func newCatalogRequestMetrics(ctx context.Context, logger *log.Logger) (*catalogRequestMetrics, context.Context) {
	m := &catalogRequestMetrics{logger: logger, start: time.Now()}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, catalogSpanName, trace.WithSpanKind(trace.SpanKindServer))
	m.span = span
	return m, spanCtx
}

func (m *catalogRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *catalogRequestMetrics) ObserveFetch(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.fetchDuration = duration
}

func (m *catalogRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *catalogRequestMetrics) SetCategoriesReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.categoriesReturned = count
}

func (m *catalogRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finalizes the span and writes the observability event. It must run
// exactly once, after the response status is known.
func (m *catalogRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.route", catalogRoute),
		attribute.Int("http.status_code", status),
		attribute.Float64("alignzo.catalog.total_ms", durationToMillis(time.Since(m.start))),
		attribute.Int("alignzo.catalog.categories_returned", m.categoriesReturned),
	}
	if m.authDuration > 0 {
		attrs = append(attrs, attribute.Float64("alignzo.catalog.auth_ms", durationToMillis(m.authDuration)))
	}
	if m.fetchDuration > 0 {
		attrs = append(attrs, attribute.Float64("alignzo.catalog.fetch_ms", durationToMillis(m.fetchDuration)))
	}
	if m.encodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("alignzo.catalog.encode_ms", durationToMillis(m.encodeDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("alignzo.catalog.error_stage", m.errorStage))
	}

	m.span.SetAttributes(attrs...)
	m.span.AddEvent("observability.event")
	if err != nil {
		m.span.RecordError(err)
		m.span.SetStatus(codes.Error, err.Error())
	} else {
		m.span.SetStatus(codes.Ok, "")
	}
	defer m.span.End()

	if m.logger == nil {
		return
	}

	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}
	fields := log.Fields{
		"event.name":      catalogEventName,
		"event.domain":    catalogEventDomain,
		"attributes":      attrMap,
		"severity_text":   "INFO",
		"severity_number": 9,
	}
	if sc := m.span.SpanContext(); sc.HasTraceID() {
		fields["trace_id"] = sc.TraceID().String()
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	m.logger.WithFields(fields).Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
