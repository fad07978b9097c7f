package solution

// Option represents solution service option
type Option func(s *Service)

// WithUserLock toggles per-user turn serialization
func WithUserLock(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.locker = newLocker()
		} else {
			s.locker = nil
		}
	}
}

// WithMinConfidence sets confidence below which clarification is requested
func WithMinConfidence(minConfidence float64) Option {
	return func(s *Service) {
		s.minConfidence = minConfidence
	}
}

// WithPromptFormat sets composite prompt format, verbs: user id, query
func WithPromptFormat(format string) Option {
	return func(s *Service) {
		if format != "" {
			s.promptFormat = format
		}
	}
}

// WithClarification sets clarification message
func WithClarification(message string) Option {
	return func(s *Service) {
		if message != "" {
			s.clarification = message
		}
	}
}

// WithUnsupported sets unsupported intent message format
func WithUnsupported(format string) Option {
	return func(s *Service) {
		if format != "" {
			s.unsupported = format
		}
	}
}
