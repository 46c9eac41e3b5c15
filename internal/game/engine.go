// apps/go-server/internal/game/engine.go
//
// Core game engine for a single memory-match session.
// Responsibilities:
//   - Build a shuffled deck from the icon catalog (fresh ids per session).
//   - Validate and apply card clicks (reveal, first/second pick).
//   - Resolve a turn: match keeps the turn, mismatch passes it after a delay.
//   - Track state transitions: idle → resolving → idle/finished.
//
// Notes:
//   - The engine never sleeps. A mismatch returns a Token; whoever owns the
//     clock calls CompleteResolution(token) once the display delay elapses.
//   - Rejected clicks are not failures: they leave the state untouched and
//     report why through Result.Reason.
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Reasons a click is ignored.
var (
	ErrLocked          = errors.New("resolution in progress")
	ErrFinished        = errors.New("game finished")
	ErrOutOfRange      = errors.New("card index out of range")
	ErrAlreadyMatched  = errors.New("card already matched")
	ErrAlreadyRevealed = errors.New("card already face up")
	ErrTwoFlipped      = errors.New("two cards already flipped")
)

// Step describes what a click did.
type Step string

const (
	StepRejected  Step = "rejected"
	StepFirstPick Step = "first_pick"
	StepMatch     Step = "match"
	StepMismatch  Step = "mismatch"
)

// Result is returned by Click.
type Result struct {
	Step    Step
	Reason  error    // why the click was ignored (StepRejected only)
	Pending *Token   // pass to CompleteResolution after the delay (StepMismatch only)
	Outcome *Outcome // set on the click that finished the game
}

// Accepted reports whether the click changed the state.
func (r Result) Accepted() bool { return r.Step != StepRejected }

// Game is one session: deck, turn, pending picks, lock, scores and status.
type Game struct {
	SessionID string
	Cards     []Card
	Turn      Player
	Flipped   []int
	Locked    bool
	Scores    Scores
	Status    string

	icons   []Icon
	src     Source
	seq     uint64
	pending *Token
}

// Option configures a Game.
type Option func(*Game)

// WithSource replaces the default non-deterministic shuffle source.
func WithSource(src Source) Option {
	return func(g *Game) { g.src = src }
}

// New constructs a game over the given catalog and deals the first session.
func New(icons []Icon, opts ...Option) *Game {
	g := &Game{
		icons: append([]Icon(nil), icons...),
		src:   globalSource{},
	}
	for _, o := range opts {
		o(g)
	}
	g.Reset()
	return g
}

// Reset discards the session and deals a new one. Any pending resolution
// is abandoned: its token no longer matches.
func (g *Game) Reset() {
	g.SessionID = uuid.NewString()
	g.Cards = BuildDeck(g.src, g.icons)
	g.Turn = Player1
	g.Flipped = nil
	g.Locked = false
	g.Scores = Scores{}
	g.pending = nil
	g.Status = fmt.Sprintf("%s's turn: flip two cards!", g.Turn.Label())
	g.settle()
}

// Click reveals the card at index i.
//
// Ignored (no state change) when:
//   - a resolution is in progress or the game is finished,
//   - i is out of range, or the card is matched or already face up,
//   - two cards are already flipped.
//
// The second accepted pick locks the game and resolves the turn.
func (g *Game) Click(i int) Result {
	if err := g.check(i); err != nil {
		return Result{Step: StepRejected, Reason: err}
	}

	g.Cards[i].FaceUp = true
	g.Flipped = append(g.Flipped, i)
	if len(g.Flipped) == 1 {
		g.Status = fmt.Sprintf("%s: pick a second card", g.Turn.Label())
		return Result{Step: StepFirstPick}
	}

	g.Locked = true
	return g.resolve()
}

func (g *Game) check(i int) error {
	switch {
	case g.Locked:
		return ErrLocked
	case g.Finished():
		return ErrFinished
	case i < 0 || i >= len(g.Cards):
		return ErrOutOfRange
	case g.Cards[i].Matched:
		return ErrAlreadyMatched
	case g.Cards[i].FaceUp:
		return ErrAlreadyRevealed
	case len(g.Flipped) >= 2:
		return ErrTwoFlipped
	}
	return nil
}

// resolve compares the two flipped cards by match key.
func (g *Game) resolve() Result {
	i1, i2 := g.Flipped[0], g.Flipped[1]
	if g.Cards[i1].MatchKey != g.Cards[i2].MatchKey {
		g.seq++
		tok := Token{Session: g.SessionID, Seq: g.seq}
		g.pending = &tok
		g.Status = "Wrong! Flipping the cards back..."
		return Result{Step: StepMismatch, Pending: &tok}
	}

	for _, i := range g.Flipped {
		g.Cards[i].Matched = true
		g.Cards[i].FaceUp = true
	}
	g.Scores.add(g.Turn)
	g.Flipped = nil
	g.Status = fmt.Sprintf("%s correct! Turn kept", g.Turn.Label())
	g.Locked = false

	res := Result{Step: StepMatch}
	if o := g.settle(); o.Finished {
		res.Outcome = &o
	}
	return res
}

// CompleteResolution finishes a mismatch: hides both cards, unlocks and
// passes the turn. It returns false, changing nothing, when tok is stale
// (superseded by a reset or already completed).
func (g *Game) CompleteResolution(tok Token) bool {
	if g.pending == nil || *g.pending != tok {
		return false
	}
	for _, i := range g.Flipped {
		if !g.Cards[i].Matched {
			g.Cards[i].FaceUp = false
		}
	}
	g.Flipped = nil
	g.pending = nil
	g.Locked = false
	g.Turn = g.Turn.Other()
	g.Status = fmt.Sprintf("%s's turn", g.Turn.Label())
	g.settle()
	return true
}

// settle is the post-mutation win check. A finished game always shows
// its announcement, so re-running it is harmless.
func (g *Game) settle() Outcome {
	o := Evaluate(g.Cards, g.Scores)
	if o.Finished {
		g.Status = o.Announcement()
	}
	return o
}

// Pending returns the token of the resolution in flight, if any.
func (g *Game) Pending() (Token, bool) {
	if g.pending == nil {
		return Token{}, false
	}
	return *g.pending, true
}

// Finished reports whether every card is matched.
func (g *Game) Finished() bool { return g.Outcome().Finished }

// Outcome evaluates the current cards and scores.
func (g *Game) Outcome() Outcome { return Evaluate(g.Cards, g.Scores) }

// Phase derives the state-machine phase.
func (g *Game) Phase() Phase {
	switch {
	case g.Finished():
		return PhaseFinished
	case g.Locked:
		return PhaseResolving
	default:
		return PhaseIdle
	}
}

// TotalPairs is the number of pairs dealt.
func (g *Game) TotalPairs() int { return len(g.Cards) / 2 }

// RemainingPairs is the number of pairs still face down.
func (g *Game) RemainingPairs() int { return g.TotalPairs() - g.Scores.Total() }
