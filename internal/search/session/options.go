package session

import (
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/notify"
)

const (
	DefaultDebounce     = 300 * time.Millisecond
	MaxSuggestions      = 10
	MaxPopularTags      = 20
	minSuggestionLength = 1
)

type Option func(s *Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithDebounce sets the delay used by DebouncedSearch when none is given.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounceDelay = d
		}
	}
}

func WithSuggestionSample(n int) Option {
	return func(s *Session) {
		s.suggestionSample = n
	}
}

func WithPopularTagSample(n int) Option {
	return func(s *Session) {
		s.popularTagSample = n
	}
}
