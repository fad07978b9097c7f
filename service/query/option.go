package query

// Option represents SQL service option
type Option func(s *SQL)

// WithStrict makes query failures visible to the caller
func WithStrict(strict bool) Option {
	return func(s *SQL) {
		s.strict = strict
	}
}

// WithDefaultSystem sets system used by steps without a system name
func WithDefaultSystem(name string) Option {
	return func(s *SQL) {
		s.defaultSystem = name
	}
}
