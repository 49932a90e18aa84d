// Package loader runs catalog loads with ticket-based cancellation.
//
// A load is split so the owning goroutine never blocks:
//
//	t := l.Begin(ctx)   // owner goroutine: marks loading, cancels the previous ticket
//	res := t.Run()      // any goroutine: delay + fetch, touches no shared state
//	l.Settle(res)       // owner goroutine: applies res unless it was superseded
//
// Results from a cancelled or superseded ticket are dropped without any state change.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/eventlog"
	"github.com/abelbrown/catalog/internal/logging"
)

// Fetcher retrieves the entry collection. fetch.Client satisfies it.
type Fetcher interface {
	FetchEntries(ctx context.Context) ([]catalog.Entry, error)
}

// Loader owns the LoadState. It is not safe for concurrent use: Begin, Settle,
// Cancel and the accessors must all be called from the same goroutine.
type Loader struct {
	fetcher Fetcher
	delay   time.Duration
	events  *eventlog.Logger

	state catalog.LoadState
	seq   uint64
	live  *Ticket
	rev   uint64
}

// Ticket is one load attempt.
type Ticket struct {
	seq     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	fetcher Fetcher
	delay   time.Duration
	started time.Time
}

// Result is the outcome of Ticket.Run.
type Result struct {
	Seq     uint64
	Entries []catalog.Entry
	Err     error
	Elapsed time.Duration
}

// New creates a Loader in the loading state. delay is the artificial latency
// injected before every fetch. events may be nil.
func New(fetcher Fetcher, delay time.Duration, events *eventlog.Logger) *Loader {
	return &Loader{
		fetcher: fetcher,
		delay:   delay,
		events:  events,
		state:   catalog.LoadState{Status: catalog.StatusLoading},
	}
}

// Begin starts a new load. The previous ticket, if any, is cancelled and its
// result will be ignored. Entries from the last successful load stay visible
// while loading.
func (l *Loader) Begin(ctx context.Context) *Ticket {
	l.cancelLive()

	l.seq++
	tctx, cancel := context.WithCancel(ctx)
	t := &Ticket{
		seq:     l.seq,
		ctx:     tctx,
		cancel:  cancel,
		fetcher: l.fetcher,
		delay:   l.delay,
		started: time.Now(),
	}
	l.live = t

	l.state.Status = catalog.StatusLoading
	l.state.Message = ""
	l.state.Cause = nil
	l.rev++

	l.events.Emit(eventlog.Event{Level: eventlog.LevelInfo, Kind: eventlog.KindFetchStart, Comp: "loader", LoadSeq: t.seq})
	return t
}

// Seq identifies the ticket.
func (t *Ticket) Seq() uint64 {
	return t.seq
}

// Run waits out the delay and fetches. It reads only the ticket and may be
// called on any goroutine.
func (t *Ticket) Run() Result {
	res := Result{Seq: t.seq}

	if t.delay > 0 {
		timer := time.NewTimer(t.delay)
		select {
		case <-timer.C:
		case <-t.ctx.Done():
			timer.Stop()
			res.Err = t.ctx.Err()
			res.Elapsed = time.Since(t.started)
			return res
		}
	}

	res.Entries, res.Err = t.fetcher.FetchEntries(t.ctx)
	res.Elapsed = time.Since(t.started)
	return res
}

// Settle applies res if its ticket is still live and was not cancelled.
// It reports whether the state changed.
func (l *Loader) Settle(res Result) bool {
	t := l.live
	if t == nil || t.seq != res.Seq || t.ctx.Err() != nil {
		if t != nil && t.seq == res.Seq {
			l.live = nil
		}
		l.events.Emit(eventlog.Event{Level: eventlog.LevelDebug, Kind: eventlog.KindFetchCancel, Comp: "loader", LoadSeq: res.Seq, Dur: res.Elapsed})
		return false
	}
	t.cancel()
	l.live = nil

	if res.Err != nil {
		l.state = catalog.LoadState{
			Status:  catalog.StatusFailed,
			Message: catalog.LoadFailedMessage,
			Cause:   res.Err,
		}
		l.rev++
		logging.Error("Catalog load failed", "seq", res.Seq, "err", res.Err)
		l.events.Emit(eventlog.Event{
			Level:   eventlog.LevelError,
			Kind:    eventlog.KindFetchError,
			Comp:    "loader",
			LoadSeq: res.Seq,
			Dur:     res.Elapsed,
			Err:     res.Err.Error(),
		})
		return true
	}

	l.state = catalog.LoadState{Entries: res.Entries, Status: catalog.StatusReady}
	l.rev++
	logging.Info("Catalog loaded", "seq", res.Seq, "entries", len(res.Entries), "elapsed", res.Elapsed)
	l.events.Emit(eventlog.Event{
		Level:   eventlog.LevelInfo,
		Kind:    eventlog.KindFetchComplete,
		Comp:    "loader",
		LoadSeq: res.Seq,
		Dur:     res.Elapsed,
		Count:   len(res.Entries),
	})
	return true
}

// Cancel invalidates the live ticket. Its in-flight fetch is aborted and its
// result will be dropped; the state is left as it is.
func (l *Loader) Cancel() {
	l.cancelLive()
}

func (l *Loader) cancelLive() {
	if l.live == nil {
		return
	}
	l.live.cancel()
	l.live = nil
}

// Load runs Begin, Run and Settle in sequence. For callers without an event loop.
func (l *Loader) Load(ctx context.Context) (catalog.LoadState, error) {
	t := l.Begin(ctx)
	res := t.Run()
	if !l.Settle(res) {
		return l.state, fmt.Errorf("load %d cancelled: %w", res.Seq, context.Cause(t.ctx))
	}
	return l.state, l.state.Cause
}

// State returns the current LoadState. The Entries slice is shared; do not modify it.
func (l *Loader) State() catalog.LoadState {
	return l.state
}

// Loading reports whether a ticket is outstanding.
func (l *Loader) Loading() bool {
	return l.live != nil
}

// Revision changes whenever the state does.
func (l *Loader) Revision() uint64 {
	return l.rev
}
