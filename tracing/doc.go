// Package tracing wraps OpenTelemetry so that the engine, query and NLU
// layers can emit spans without importing the SDK directly. Spans are no-op
// until Init or InitWithExporter installs a provider.
package tracing
