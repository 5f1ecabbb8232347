package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/colonyops/deskbell/internal/core/kv"
	"github.com/rs/zerolog"
)

var storageKey = kv.Key("settings", "notifications")

// Store owns the live Settings. Reads return a copy; writes go through
// Update, which persists before returning.
type Store struct {
	kv  kv.KV
	log zerolog.Logger

	// writeMu serializes Update so values persist in the order they go live.
	writeMu sync.Mutex

	mu       sync.RWMutex
	current  Settings
	onUpdate []func(Settings)
}

// NewStore creates a Store holding Defaults until Load is called.
func NewStore(store kv.KV, log zerolog.Logger) *Store {
	return &Store{
		kv:      store,
		log:     log,
		current: Defaults(),
	}
}

// Load reads the persisted blob and merges it over Defaults. The store always
// ends up usable: on any failure it holds Defaults and the error is returned
// for diagnostics only.
func (s *Store) Load(ctx context.Context) error {
	rec, err := s.kv.Load(ctx, storageKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.set(Defaults())
		return nil
	}
	if err != nil {
		s.set(Defaults())
		return fmt.Errorf("load settings: %w", err)
	}

	merged, err := Merge(Defaults(), rec.Value)
	s.set(merged)
	if err != nil {
		s.log.Warn().Err(err).Msg("persisted settings ignored, using defaults")
		return err
	}
	return nil
}

// Current returns a copy of the live settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the live settings, normalizes the result,
// makes it live and persists it. Concurrent updates are applied one at a
// time. The new value stays live even if persisting fails; the error is
// returned. OnUpdate listeners run before Update returns and must not call
// Update themselves.
func (s *Store) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.current
	fn(&next)
	next = next.Normalize()
	s.current = next
	hooks := slices.Clone(s.onUpdate)
	s.mu.Unlock()

	err := s.persist(ctx, next)

	for _, fn := range hooks {
		fn(next)
	}
	return next, err
}

// SetVolume stores v clamped to [0, 1].
func (s *Store) SetVolume(ctx context.Context, v float64) (Settings, error) {
	return s.Update(ctx, func(st *Settings) {
		st.SoundVolume = v
	})
}

// Reset restores Defaults and persists them.
func (s *Store) Reset(ctx context.Context) (Settings, error) {
	return s.Update(ctx, func(st *Settings) {
		*st = Defaults()
	})
}

// UpdatedAt returns when the settings were last persisted, or the zero time
// if they never were.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	rec, err := s.kv.Load(ctx, storageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return rec.UpdatedAt, nil
}

// OnUpdate registers fn to run after every Update with the new settings.
func (s *Store) OnUpdate(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = append(s.onUpdate, fn)
}

func (s *Store) set(st Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = st
}

func (s *Store) persist(ctx context.Context, st Settings) error {
	if err := kv.SaveFrom(ctx, s.kv, storageKey, st); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}
