package kgflow

import (
	"log/slog"

	"github.com/viant/kgflow/runtime/evaluator"
	"github.com/viant/kgflow/service/graph"
	"github.com/viant/kgflow/service/nlu"
	"github.com/viant/kgflow/service/query"
	"github.com/viant/kgflow/service/session"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents service option
type Option func(s *Service)

// WithGraphStore sets the solution graph backend, overriding graph.backend
func WithGraphStore(backend graph.Backend) Option {
	return func(s *Service) {
		s.graph = backend
	}
}

// WithQueryService sets the external query service, overriding systems
func WithQueryService(service query.Service) Option {
	return func(s *Service) {
		s.query = service
	}
}

// WithSessionStore sets the session store, overriding session.backend
func WithSessionStore(store session.Store) Option {
	return func(s *Service) {
		s.sessions = store
	}
}

// WithExtractor sets the intent extractor, overriding nlu
func WithExtractor(extractor nlu.Extractor) Option {
	return func(s *Service) {
		s.extractor = extractor
	}
}

// WithEvaluator sets the branch condition evaluator
func WithEvaluator(evaluator evaluator.Evaluator) Option {
	return func(s *Service) {
		s.evaluator = evaluator
	}
}

// WithLogger sets the logger, overriding log settings
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracing configures OpenTelemetry tracing with a stdout exporter.
// If outputFile is empty, spans are written to stdout.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracing = &tracingSetup{serviceName: serviceName, serviceVersion: serviceVersion, outputFile: outputFile}
	}
}

// WithTracingExporter configures tracing with a custom exporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracing = &tracingSetup{serviceName: serviceName, serviceVersion: serviceVersion, exporter: exporter}
	}
}
