// apps/go-server/internal/game/types.go
//
// Core type definitions for the memory-match engine.
// Defines:
//   - Player: one of the two hot-seat players.
//   - Icon:   a catalog entry; every icon yields exactly one pair.
//   - Card:   a single card on the table.
//   - Scores, Phase and Token.

package game

// Player identifies whose turn it is and who gets credit for a match.
type Player string

const (
	Player1 Player = "p1"
	Player2 Player = "p2"
)

// Other returns the opponent of p.
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Label is the human-readable name used in status messages.
func (p Player) Label() string {
	switch p {
	case Player1:
		return "Player 1"
	case Player2:
		return "Player 2"
	default:
		return "Nobody"
	}
}

// Icon is one immutable catalog entry.
type Icon struct {
	Key   string `json:"key"`   // match key shared by both cards of a pair
	Label string `json:"label"` // display label
	Image string `json:"src"`   // image reference for the card face
}

// Card is a single card owned by a Game.
// Matched implies FaceUp; Matched never goes back to false within a session.
type Card struct {
	ID       string `json:"id"`
	MatchKey string `json:"matchKey"`
	Image    string `json:"imageRef"`
	Label    string `json:"label"`
	FaceUp   bool   `json:"isFaceUp"`
	Matched  bool   `json:"isMatched"`
}

// Scores holds the matched-pair count per player.
type Scores struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// Of returns p's score.
func (s Scores) Of(p Player) int {
	if p == Player2 {
		return s.P2
	}
	return s.P1
}

// Total is the number of pairs matched so far.
func (s Scores) Total() int { return s.P1 + s.P2 }

func (s *Scores) add(p Player) {
	if p == Player2 {
		s.P2++
		return
	}
	s.P1++
}

// Phase is a coarse, derived view of the state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"      // 0 or 1 card flipped, accepting input
	PhaseResolving Phase = "resolving" // 2 cards flipped, input locked
	PhaseFinished  Phase = "finished"  // every card matched
)

// Token identifies one pending mismatch resolution.
// It is only honoured while it equals the game's current pending token,
// so a completion scheduled before a reset can never touch the new session.
type Token struct {
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
}
