package employee

// WithIDGenerator は ID 採番関数を差し替えます。
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}
