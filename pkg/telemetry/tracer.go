package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/pkg/observer"
)

const defaultTracerName = "reactive"

// TracerConfig configures a Tracer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "reactive").
	TracerName string

	// Provider overrides the global tracer provider.
	Provider trace.TracerProvider
}

// TracerOption configures a Tracer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider uses provider instead of the global one.
func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = provider
	}
}

// Tracer wraps runtime operations in spans.
type Tracer struct {
	rt     *observer.Runtime
	tracer trace.Tracer
}

// NewTracer creates a Tracer for rt.
func NewTracer(rt *observer.Runtime, opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{rt: rt, tracer: tracer}
}

// Runtime returns the traced runtime.
func (t *Tracer) Runtime() *observer.Runtime {
	return t.rt
}

// ObserveRoot observes value as root state inside a span.
func (t *Tracer) ObserveRoot(ctx context.Context, value any) *observer.Observer {
	_, span := t.tracer.Start(ctx, "reactive.observe_root",
		trace.WithAttributes(attribute.String("reactive.value_type", fmt.Sprintf("%T", value))))
	defer span.End()

	ob := t.rt.ObserveRoot(value)
	span.SetAttributes(attribute.Bool("reactive.observed", ob != nil))
	return ob
}

// Set runs Runtime.Set inside a span.
func (t *Tracer) Set(ctx context.Context, target, key, val any) (any, error) {
	_, span := t.tracer.Start(ctx, "reactive.set",
		trace.WithAttributes(attribute.String("reactive.key", fmt.Sprint(key))))
	defer span.End()

	out, err := t.rt.Set(target, key, val)
	record(span, err)
	return out, err
}

// Del runs Runtime.Del inside a span.
func (t *Tracer) Del(ctx context.Context, target, key any) error {
	_, span := t.tracer.Start(ctx, "reactive.del",
		trace.WithAttributes(attribute.String("reactive.key", fmt.Sprint(key))))
	defer span.End()

	err := t.rt.Del(target, key)
	record(span, err)
	return err
}

// Do runs fn inside a span named name. Use it for work outside the runtime,
// such as decoding a document before observing it.
func (t *Tracer) Do(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()

	err := fn(spanCtx)
	record(span, err)
	return err
}

func record(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
