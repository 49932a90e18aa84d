// Package eventlog records typed catalog events as JSON lines.
//
// Events are written asynchronously through a buffered channel drained by a
// single goroutine. An optional RingBuffer keeps the most recent events in
// memory for the TUI debug overlay.
package eventlog

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind identifies an event. Dot-delimited: "<subsystem>.<action>".
type Kind string

const (
	// Loader
	KindFetchStart    Kind = "fetch.start"
	KindFetchComplete Kind = "fetch.complete"
	KindFetchError    Kind = "fetch.error"
	KindFetchCancel   Kind = "fetch.cancel"

	// Favorites
	KindFavoriteToggle Kind = "favorites.toggle"
	KindFavoritesClear Kind = "favorites.clear"
	KindFavoritesLoad  Kind = "favorites.hydrate"
	KindFavoritesError Kind = "favorites.error"

	// Query
	KindQueryChange Kind = "query.change"
	KindPageChange  Kind = "query.page"

	// System
	KindStartup  Kind = "sys.startup"
	KindShutdown Kind = "sys.shutdown"
)

// Event is one record. Every field except Kind and Time is optional.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      Kind           `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "loader", "favorites", "explorer", "ui", "main"
	SessionID string         `json:"session_id,omitempty"`
	LoadSeq   uint64         `json:"load_seq,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	EntryID   int            `json:"entry_id,omitempty"`
	Page      int            `json:"page,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
