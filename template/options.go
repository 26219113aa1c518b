package template

type settings struct {
	limits Limits
}

// Option configures a Resolver or a Refresher.
type Option func(*settings)

// WithLimits sets expansion limits. Non-positive fields keep their
// defaults.
func WithLimits(l Limits) Option {
	return func(s *settings) { s.limits = l.withDefaults() }
}

func newSettings(opts []Option) *settings {
	s := &settings{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
