// Package favorites keeps the persisted set of favorite entry ids.
package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/catalog/internal/eventlog"
	"github.com/abelbrown/catalog/internal/kv"
	"github.com/abelbrown/catalog/internal/logging"
)

// Store is the favorite id set. Every mutation writes the whole set to the
// backing kv.Store as a JSON array of integers.
//
// Ids of entries that are no longer in the feed are kept; they simply never match.
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	kv     kv.Store
	key    string
	events *eventlog.Logger
	log    *log.Logger

	mu  sync.RWMutex
	ids map[int]struct{}
	rev uint64
}

// Open creates a Store and hydrates it from key. Hydration never fails:
// a missing, unreadable or malformed value yields an empty set.
// events may be nil.
func Open(store kv.Store, key string, events *eventlog.Logger) *Store {
	s := &Store{
		kv:     store,
		key:    key,
		events: events,
		log:    logging.WithPrefix("favorites"),
		ids:    make(map[int]struct{}),
	}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.log.Warn("Failed to read favorites from storage", "key", s.key, "err", err)
		s.events.Error(eventlog.KindFavoritesError, "favorites", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	ids, err := decodeIDs(raw)
	if err != nil {
		s.log.Warn("Ignoring malformed favorites", "key", s.key, "err", err)
		s.events.Error(eventlog.KindFavoritesError, "favorites", err)
		return
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.events.Emit(eventlog.Event{Level: eventlog.LevelInfo, Kind: eventlog.KindFavoritesLoad, Comp: "favorites", Count: len(s.ids)})
}

// maxExactInt is the largest integer a float64 represents exactly.
const maxExactInt = 1<<53 - 1

// decodeIDs parses a JSON array and keeps its integer members. The array must
// be the whole document. Integral
// floats such as 2.0 count as integers; any other element is skipped.
func decodeIDs(raw string) ([]int, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if values == nil {
		return nil, fmt.Errorf("decode favorites: not an array")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode favorites: trailing data after array")
	}

	ids := make([]int, 0, len(values))
	for _, v := range values {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			ids = append(ids, int(i))
			continue
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			continue
		}
		ids = append(ids, int(f))
	}
	return ids, nil
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Toggle flips membership of id and persists the set. The in-memory change
// stands even if the write fails; the error is returned for reporting.
func (s *Store) Toggle(id int) error {
	s.mu.Lock()
	added := false
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
		added = true
	}
	s.rev++
	err := s.persistLocked()
	s.mu.Unlock()

	s.events.Emit(eventlog.Event{
		Level:   eventlog.LevelInfo,
		Kind:    eventlog.KindFavoriteToggle,
		Comp:    "favorites",
		EntryID: id,
		Extra:   map[string]any{"added": added},
	})
	return err
}

// Clear empties the set and persists it.
func (s *Store) Clear() error {
	s.mu.Lock()
	n := len(s.ids)
	s.ids = make(map[int]struct{})
	s.rev++
	err := s.persistLocked()
	s.mu.Unlock()

	s.events.Emit(eventlog.Event{Level: eventlog.LevelInfo, Kind: eventlog.KindFavoritesClear, Comp: "favorites", Count: n})
	return err
}

// IDs returns the favorite ids in ascending order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Revision changes on every mutation. Used as a memoization key.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Store) sortedLocked() []int {
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// persistLocked writes the whole set. Holding s.mu keeps writes in mutation order.
func (s *Store) persistLocked() error {
	b, err := json.Marshal(s.sortedLocked())
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.kv.Set(s.key, string(b)); err != nil {
		s.log.Error("Failed to persist favorites", "key", s.key, "err", err)
		s.events.Error(eventlog.KindFavoritesError, "favorites", err)
		return fmt.Errorf("persist favorites: %w", err)
	}
	return nil
}
