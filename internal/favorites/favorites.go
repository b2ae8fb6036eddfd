// Package favorites keeps the dogs the user has marked. The set is keyed by
// dog id, iterates in insertion order and is rewritten to storage in full
// after every mutating call.
package favorites

import (
	"context"
	"errors"
	"sync"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/logger"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/persist"
)

// Key is the storage key of the persisted favorites array.
const Key = "favorites"

type keyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// State is a snapshot of the store.
type State struct {
	Dogs []models.Dog
	Err  string
}

// Store is the set of favorite dogs, kept in insertion order and persisted
// after every call that may change it.
type Store struct {
	mu      sync.RWMutex
	dogs    []models.Dog
	ids     map[string]struct{}
	mirror  *persist.Mirror[[]models.Dog]
	lastErr string
	log     *zap.SugaredLogger
}

// New builds the store and rehydrates it from db. A stored value that cannot
// be decoded yields an empty set; duplicate ids keep their first occurrence.
func New(ctx context.Context, db keyValueStore) (*Store, error) {
	store := &Store{
		ids:    map[string]struct{}{},
		mirror: persist.New[[]models.Dog](db, Key),
		log:    logger.Named("favorites"),
	}

	dogs, _, err := store.mirror.Load(ctx)
	if errors.Is(err, persist.ErrCorrupt) {
		store.log.Warnw("ignoring unreadable persisted favorites", zap.Error(err))
		dogs, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	store.dogs = make([]models.Dog, 0, len(dogs))
	for _, dog := range dogs {
		if _, seen := store.ids[dog.ID]; seen || dog.ID == "" {
			continue
		}
		store.ids[dog.ID] = struct{}{}
		store.dogs = append(store.dogs, dog)
	}

	return store, nil
}

// Add inserts dog unless its id is already present. The set is persisted
// either way.
func (s *Store) Add(ctx context.Context, dog models.Dog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.dogs
	if _, ok := s.ids[dog.ID]; !ok {
		next = append(append(make([]models.Dog, 0, len(s.dogs)+1), s.dogs...), dog)
	}

	return s.commit(ctx, next)
}

// Remove drops the dog with id if present. The set is persisted either way.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.dogs
	if _, ok := s.ids[id]; ok {
		next = funk.Filter(s.dogs, func(dog models.Dog) bool {
			return dog.ID != id
		}).([]models.Dog)
	}

	return s.commit(ctx, next)
}

// Clear empties the set and persists an empty array.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []models.Dog{})
}

// commit persists next and adopts it. On failure the set is left as it was.
func (s *Store) commit(ctx context.Context, next []models.Dog) error {
	if err := s.mirror.Save(ctx, next); err != nil {
		s.log.Errorw("persisting favorites", zap.Error(err))
		s.lastErr = err.Error()
		return err
	}

	s.dogs = next
	s.ids = make(map[string]struct{}, len(next))
	for _, dog := range next {
		s.ids[dog.ID] = struct{}{}
	}
	s.lastErr = ""

	return nil
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// List returns the favorites in insertion order.
func (s *Store) List() []models.Dog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Dog{}, s.dogs...)
}

// IDs returns the favorite ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return funk.Map(s.dogs, func(dog models.Dog) string {
		return dog.ID
	}).([]string)
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.dogs)
}

// State returns a copy of the favorites and the last error message.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{Dogs: append([]models.Dog{}, s.dogs...), Err: s.lastErr}
}
