// Package settings is the persisted key-value store behind the chart's
// time window and update period.
package settings

import (
	"context"
	"sync"

	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"github.com/google/uuid"
)

type subscription struct {
	key string
	fn  func(value string)
}

// Store caches settings in memory and writes changes through to a
// Repository. It is safe for concurrent use. Subscribers are called on the
// goroutine that calls Set, after the value is stored.
type Store struct {
	repo     Repository
	log      logger.Logger
	defaults map[string]string

	mu     sync.RWMutex
	values map[string]string
	subs   map[string]subscription
	order  []string
}

// Open loads the stored settings. Without a DBPath values live in memory
// only.
func Open(ctx context.Context, cfg Config, log logger.Logger) (*Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	var repo Repository = noopRepository{}
	if cfg.DBPath != "" {
		var err error
		if repo, err = NewRepository(cfg, log); err != nil {
			return nil, err
		}
	} else {
		log.Debug().Msg("No settings database configured, keeping settings in memory")
	}

	return NewStore(ctx, repo, cfg.Defaults, log)
}

// NewStore loads the values held by repo.
func NewStore(ctx context.Context, repo Repository, defaults map[string]string, log logger.Logger) (*Store, error) {
	values, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Store{
		repo:     repo,
		log:      log,
		defaults: make(map[string]string, len(defaults)),
		values:   values,
		subs:     make(map[string]subscription),
	}
	for k, v := range defaults {
		s.defaults[k] = v
	}

	log.Debug().Int("stored", len(values)).Msg("Settings loaded")

	return s, nil
}

// Get returns the value of key, falling back to its default.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key]; ok {
		return v
	}

	return s.defaults[key]
}

// Set stores value under key and notifies subscribers when it changed.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return errors.New().New(ErrInvalidKey)
	}

	s.mu.Lock()
	current, ok := s.values[key]
	if !ok {
		current = s.defaults[key]
	}
	if ok && current == value {
		s.mu.Unlock()
		return nil
	}

	if err := s.repo.Store(context.Background(), key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values[key] = value

	var notify []func(string)
	if current != value {
		for _, token := range s.order {
			if sub := s.subs[token]; sub.key == key {
				notify = append(notify, sub.fn)
			}
		}
	}
	s.mu.Unlock()

	s.log.Debug().Str("key", key).Str("value", value).Msg("Setting changed")

	for _, fn := range notify {
		fn(value)
	}

	return nil
}

// Subscribe registers fn for changes of key and returns a token for
// Unsubscribe.
func (s *Store) Subscribe(key string, fn func(value string)) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[token] = subscription{key: key, fn: fn}
	s.order = append(s.order, token)

	return token
}

// Unsubscribe drops a subscription. Unknown tokens are ignored.
func (s *Store) Unsubscribe(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[token]; !ok {
		return
	}

	delete(s.subs, token)
	for i, t := range s.order {
		if t == token {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Close releases the repository.
func (s *Store) Close() error {
	return s.repo.Close()
}
