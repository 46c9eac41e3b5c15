// apps/go-server/internal/table/table.go
//
// A Table is one live game plus everything the pure engine leaves out:
//   - a mutex, so each click/reset/completion runs to completion alone;
//   - the clock: a mismatch schedules CompleteResolution after the delay;
//   - subscribers, who receive a fresh View after every mutation.
//
// Notes:
//   - Reset stops the pending timer when it can. A timer that already
//     fired still races for the mutex, but its token is stale by then and
//     the engine ignores it.
//   - Subscriber channels are buffered; a slow reader misses frames rather
//     than blocking the table.

package table

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/metrics"
)

// DefaultDelay is how long a mismatched pair stays visible.
const DefaultDelay = 800 * time.Millisecond

const subscriberBuffer = 16

// Scheduler runs f after d and returns a func that cancels it.
// f must run on another goroutine; it takes the table lock.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// AfterFunc is the production Scheduler.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Table guards one game.
type Table struct {
	ID string

	mu      sync.Mutex
	game    *game.Game
	delay   time.Duration
	after   Scheduler
	stop    func() bool
	subs    map[chan game.View]struct{}
	touched time.Time
	now     func() time.Time
	closed  bool
	log     zerolog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithDelay sets the mismatch display delay.
func WithDelay(d time.Duration) Option {
	return func(t *Table) { t.delay = d }
}

// WithScheduler replaces time.AfterFunc (tests drive the delay by hand).
func WithScheduler(s Scheduler) Option {
	return func(t *Table) { t.after = s }
}

// WithClock replaces time.Now for activity tracking.
func WithClock(now func() time.Time) Option {
	return func(t *Table) { t.now = now }
}

// New wraps g in a table with a fresh id.
func New(g *game.Game, opts ...Option) *Table {
	t := &Table{
		ID:    uuid.NewString(),
		game:  g,
		delay: DefaultDelay,
		after: AfterFunc,
		subs:  make(map[chan game.View]struct{}),
		now:   time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	t.touched = t.now()
	t.log = log.With().Str("table", t.ID).Logger()
	return t
}

// Click applies a click and returns its result with the resulting view.
// Rejected clicks change nothing and notify nobody.
func (t *Table) Click(i int) (game.Result, game.View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.touched = t.now()
	res := t.game.Click(i)
	metrics.Clicks.WithLabelValues(string(res.Step)).Inc()

	switch res.Step {
	case game.StepRejected:
		t.log.Debug().Int("index", i).Err(res.Reason).Msg("click ignored")
		return res, t.game.View()
	case game.StepMismatch:
		tok := *res.Pending
		t.stop = t.after(t.delay, func() { t.complete(tok) })
		t.log.Info().Str("session", tok.Session).Uint64("seq", tok.Seq).Str("turn", string(t.game.Turn)).Msg("mismatch")
	case game.StepMatch:
		t.log.Info().Str("session", t.game.SessionID).Str("turn", string(t.game.Turn)).
			Int("p1", t.game.Scores.P1).Int("p2", t.game.Scores.P2).Msg("match")
	}

	if res.Outcome != nil {
		label := "tie"
		if !res.Outcome.Tie {
			label = string(res.Outcome.Winner)
		}
		metrics.GamesFinished.WithLabelValues(label).Inc()
		t.log.Info().Str("session", t.game.SessionID).Str("outcome", label).Msg("game finished")
	}

	v := t.game.View()
	t.publish(v)
	return res, v
}

// complete runs when the mismatch delay elapses.
func (t *Table) complete(tok game.Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.game.CompleteResolution(tok) {
		metrics.Resolutions.WithLabelValues("stale").Inc()
		t.log.Debug().Str("session", tok.Session).Uint64("seq", tok.Seq).Msg("stale resolution ignored")
		return
	}
	t.stop = nil
	metrics.Resolutions.WithLabelValues("applied").Inc()
	t.log.Debug().Str("session", tok.Session).Str("turn", string(t.game.Turn)).Msg("mismatch resolved")
	t.publish(t.game.View())
}

// Reset deals a new session, abandoning any resolution in flight.
func (t *Table) Reset() game.View {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
	t.game.Reset()
	t.touched = t.now()
	metrics.Resets.Inc()
	t.log.Info().Str("session", t.game.SessionID).Msg("table reset")

	v := t.game.View()
	t.publish(v)
	return v
}

// View returns the current view.
func (t *Table) View() game.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touched = t.now()
	return t.game.View()
}

// Subscribe returns a channel that receives the current view immediately
// and a new one after every mutation, plus a func to unsubscribe.
// The channel is closed on unsubscribe or Close.
func (t *Table) Subscribe() (<-chan game.View, func()) {
	ch := make(chan game.View, subscriberBuffer)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		close(ch)
		return ch, func() {}
	}
	t.subs[ch] = struct{}{}
	ch <- t.game.View()

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
	}
}

// LastActive reports the last time the table was read or changed.
func (t *Table) LastActive() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.touched
}

// Close stops the pending timer and disconnects subscribers.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
	for ch := range t.subs {
		delete(t.subs, ch)
		close(ch)
	}
}

// publish fans v out without blocking; caller holds t.mu.
func (t *Table) publish(v game.View) {
	for ch := range t.subs {
		select {
		case ch <- v:
		default:
			t.log.Warn().Msg("subscriber lagging, view dropped")
		}
	}
}
