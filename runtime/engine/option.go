package engine

import (
	"log/slog"

	"github.com/viant/kgflow/runtime/evaluator"
)

// DefaultMaxSteps bounds a single traversal
const DefaultMaxSteps = 100

// Option represents engine option
type Option func(s *Service)

// WithMaxSteps sets traversal step limit
func WithMaxSteps(maxSteps int) Option {
	return func(s *Service) {
		if maxSteps > 0 {
			s.maxSteps = maxSteps
		}
	}
}

// WithStrict surfaces storage and query failures as interruptions
func WithStrict(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithEvaluator sets branch condition evaluator
func WithEvaluator(evaluator evaluator.Evaluator) Option {
	return func(s *Service) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithMessages sets caller facing messages, empty ones keep defaults
func WithMessages(messages Messages) Option {
	return func(s *Service) {
		messages.Init()
		s.messages = messages
	}
}

// WithLogger sets engine logger, it takes precedence over a context logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
