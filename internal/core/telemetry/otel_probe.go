package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"todopop/internal/core/port"
)

// OTELProbe implements Telemetry using OpenTelemetry.
type OTELProbe struct {
	logger zerolog.Logger
}

func NewOTELProbe(logger zerolog.Logger) port.Telemetry {
	return &OTELProbe{
		logger: logger,
	}
}

// OTelSpan wraps an OpenTelemetry span behind the generic Span port.
type OTelSpan struct {
	span trace.Span
}

func (s *OTelSpan) End() {
	s.span.End()
}

func (s *OTelSpan) SetAttributes(attrs map[string]interface{}) {
	s.span.SetAttributes(toOTelAttrs(attrs)...)
}

func (s *OTelSpan) SetStatus(code string, message string) {
	var statusCode codes.Code

	switch code {
	case "ok":
		statusCode = codes.Ok
	case "error":
		statusCode = codes.Error
	default:
		statusCode = codes.Unset
	}

	s.span.SetStatus(statusCode, message)
}

func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func toOTelAttrs(attrs map[string]interface{}) []attribute.KeyValue {
	var otelAttrs []attribute.KeyValue

	for key, value := range attrs {
		switch v := value.(type) {
		case string:
			otelAttrs = append(otelAttrs, attribute.String(key, v))
		case int:
			otelAttrs = append(otelAttrs, attribute.Int(key, v))
		case int64:
			otelAttrs = append(otelAttrs, attribute.Int64(key, v))
		case float64:
			otelAttrs = append(otelAttrs, attribute.Float64(key, v))
		case bool:
			otelAttrs = append(otelAttrs, attribute.Bool(key, v))
		default:
			otelAttrs = append(otelAttrs, attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}

	return otelAttrs
}

func (p *OTELProbe) startSpan(ctx context.Context, name string, component string, attrs map[string]interface{}) (context.Context, port.Span) {
	tracer := otel.Tracer("todopop")

	standardAttrs := append(toOTelAttrs(attrs), attribute.String("component", component))

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(standardAttrs...))

	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, port.Span) {
	return p.startSpan(ctx, fmt.Sprintf("repository.%s.%s", entity, operation), "repository", attrs)
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, attrs map[string]interface{}) (context.Context, port.Span) {
	return p.startSpan(ctx, fmt.Sprintf("service.%s.%s", service, operation), "service", attrs)
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	event := p.logger.Debug()

	if err != nil {
		event = p.logger.Error().Err(err)
	}

	event.
		Str("operation", operation).
		Str("entity", entity).
		Dur("duration", duration).
		Msg("repository operation")
}

func (p *OTELProbe) RecordRepositoryQuery(ctx context.Context, operation string, entity string, query string, args []interface{}) {
	p.logger.Debug().
		Str("operation", operation).
		Str("entity", entity).
		Str("query", query).
		Interface("args", args).
		Msg("repository query")
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	if span.SpanContext().IsValid() {
		attrs := []attribute.KeyValue{
			attribute.String("event.name", event),
			attribute.String("event.entity", entity),
			attribute.String("event.entity_id", entityID),
		}
		span.AddEvent("business."+event, trace.WithAttributes(attrs...))
	}

	p.logger.Info().
		Str("event", event).
		Str("entity", entity).
		Str("entity_id", entityID).
		Fields(metadata).
		Msg("business event")
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	if span.SpanContext().IsValid() {
		span.RecordError(err)
	}

	p.logger.Error().
		Err(err).
		Str("operation", operation).
		Fields(metadata).
		Msg("operation failed")
}
