package table

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/metrics"
)

type identitySource struct{}

func (identitySource) IntN(n int) int { return n - 1 }

// manualTimers records scheduled callbacks; tests fire them explicitly,
// even after they were stopped, to reproduce a timer that lost the race.
type manualTimers struct {
	delays  []time.Duration
	pending []func()
	stops   int
}

func (m *manualTimers) schedule(d time.Duration, f func()) func() bool {
	m.delays = append(m.delays, d)
	m.pending = append(m.pending, f)
	return func() bool { m.stops++; return true }
}

func (m *manualTimers) fireAll() {
	fns := m.pending
	m.pending = nil
	for _, f := range fns {
		f()
	}
}

// newTestTable deals A,A,B,B,C,C unshuffled.
func newTestTable(timers *manualTimers) *Table {
	icons := []game.Icon{
		{Key: "a", Label: "A", Image: "a.png"},
		{Key: "b", Label: "B", Image: "b.png"},
		{Key: "c", Label: "C", Image: "c.png"},
	}
	g := game.New(icons, game.WithSource(identitySource{}))
	return New(g, WithScheduler(timers.schedule))
}

func TestMismatchSchedulesCompletion(t *testing.T) {
	timers := &manualTimers{}
	tb := newTestTable(timers)

	tb.Click(0)
	res, v := tb.Click(2)
	if res.Step != game.StepMismatch || !v.Locked {
		t.Fatalf("step=%s locked=%v", res.Step, v.Locked)
	}
	if len(timers.delays) != 1 || timers.delays[0] != DefaultDelay {
		t.Fatalf("scheduled %v; want one %v timer", timers.delays, DefaultDelay)
	}

	if _, v := tb.Click(4); v.Cards[4].FaceUp {
		t.Fatal("click accepted during the delay")
	}

	timers.fireAll()
	v = tb.View()
	if v.Locked || v.Turn != game.Player2 || v.Cards[0].FaceUp || v.Cards[2].FaceUp {
		t.Fatalf("after delay: %+v", v)
	}
}

func TestMatchSchedulesNothing(t *testing.T) {
	timers := &manualTimers{}
	tb := newTestTable(timers)
	tb.Click(0)
	res, v := tb.Click(1)
	if res.Step != game.StepMatch || v.Locked {
		t.Fatalf("step=%s locked=%v", res.Step, v.Locked)
	}
	if len(timers.pending) != 0 {
		t.Fatal("match scheduled a timer")
	}
}

// A reset during the delay must survive the old timer firing anyway.
func TestResetDuringDelayIgnoresStaleCompletion(t *testing.T) {
	timers := &manualTimers{}
	tb := newTestTable(timers)

	tb.Click(0)
	tb.Click(2)
	fresh := tb.Reset()
	if timers.stops != 1 {
		t.Fatalf("reset stopped %d timers; want 1", timers.stops)
	}
	if fresh.Locked || fresh.Turn != game.Player1 {
		t.Fatalf("fresh session: %+v", fresh)
	}

	tb.Click(3)
	before := tb.View()
	timers.fireAll()
	after := tb.View()

	if after.SessionID != before.SessionID || after.Turn != before.Turn || !after.Cards[3].FaceUp {
		t.Fatalf("stale completion touched the new session:\nbefore %+v\nafter  %+v", before, after)
	}
	if len(after.Flipped) != 1 || after.Flipped[0] != 3 {
		t.Fatalf("flipped = %v; want [3]", after.Flipped)
	}
}

func TestSubscribersSeeEveryMutation(t *testing.T) {
	timers := &manualTimers{}
	tb := newTestTable(timers)
	views, unsubscribe := tb.Subscribe()

	first := <-views
	if first.Phase != game.PhaseIdle {
		t.Fatalf("initial view phase = %s", first.Phase)
	}

	tb.Click(0)
	tb.Click(2)
	tb.Click(4) // rejected: no frame
	timers.fireAll()
	tb.Reset()

	want := []func(game.View) bool{
		func(v game.View) bool { return len(v.Flipped) == 1 },
		func(v game.View) bool { return v.Locked },
		func(v game.View) bool { return !v.Locked && v.Turn == game.Player2 },
		func(v game.View) bool { return v.Turn == game.Player1 && v.SessionID != first.SessionID },
	}
	for i, ok := range want {
		select {
		case v := <-views:
			if !ok(v) {
				t.Fatalf("frame %d unexpected: %+v", i, v)
			}
		default:
			t.Fatalf("frame %d missing", i)
		}
	}
	select {
	case v := <-views:
		t.Fatalf("unexpected extra frame: %+v", v)
	default:
	}

	unsubscribe()
	if _, open := <-views; open {
		t.Fatal("channel still open after unsubscribe")
	}
	unsubscribe()
}

func TestCloseStopsTimerAndSubscribers(t *testing.T) {
	timers := &manualTimers{}
	tb := newTestTable(timers)
	views, _ := tb.Subscribe()
	<-views

	tb.Click(0)
	tb.Click(2)
	<-views
	<-views

	tb.Close()
	if timers.stops != 1 {
		t.Fatalf("Close stopped %d timers; want 1", timers.stops)
	}
	if _, open := <-views; open {
		t.Fatal("subscriber channel still open after Close")
	}
	late, _ := tb.Subscribe()
	if _, open := <-late; open {
		t.Fatal("subscribe after Close returned an open channel")
	}
	tb.Close()
}

func TestLastActiveTracksClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	timers := &manualTimers{}
	icons := []game.Icon{{Key: "a", Label: "A", Image: "a.png"}}
	tb := New(game.New(icons), WithScheduler(timers.schedule), WithClock(func() time.Time { return now }))

	if !tb.LastActive().Equal(now) {
		t.Fatalf("LastActive = %v; want %v", tb.LastActive(), now)
	}
	now = now.Add(time.Minute)
	tb.Click(0)
	if !tb.LastActive().Equal(now) {
		t.Fatalf("click did not refresh activity: %v", tb.LastActive())
	}
}

func TestRealTimerCompletes(t *testing.T) {
	icons := []game.Icon{{Key: "a", Label: "A", Image: "a.png"}, {Key: "b", Label: "B", Image: "b.png"}}
	tb := New(game.New(icons, game.WithSource(identitySource{})), WithDelay(5*time.Millisecond))
	views, unsubscribe := tb.Subscribe()
	defer unsubscribe()
	<-views

	tb.Click(0)
	tb.Click(2)
	<-views
	<-views

	select {
	case v := <-views:
		if v.Locked || v.Turn != game.Player2 {
			t.Fatalf("completion frame: %+v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mismatch never resolved")
	}
}

func TestMetricsCountClicksAndResolutions(t *testing.T) {
	mismatches := testutil.ToFloat64(metrics.Clicks.WithLabelValues(string(game.StepMismatch)))
	rejected := testutil.ToFloat64(metrics.Clicks.WithLabelValues(string(game.StepRejected)))
	stale := testutil.ToFloat64(metrics.Resolutions.WithLabelValues("stale"))
	resets := testutil.ToFloat64(metrics.Resets)

	timers := &manualTimers{}
	tb := newTestTable(timers)
	tb.Click(0)
	tb.Click(2)
	tb.Click(4)
	tb.Reset()
	timers.fireAll()

	checks := []struct {
		name      string
		got, want float64
	}{
		{"mismatch clicks", testutil.ToFloat64(metrics.Clicks.WithLabelValues(string(game.StepMismatch))), mismatches + 1},
		{"rejected clicks", testutil.ToFloat64(metrics.Clicks.WithLabelValues(string(game.StepRejected))), rejected + 1},
		{"stale resolutions", testutil.ToFloat64(metrics.Resolutions.WithLabelValues("stale")), stale + 1},
		{"resets", testutil.ToFloat64(metrics.Resets), resets + 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v; want %v", c.name, c.got, c.want)
		}
	}
}
