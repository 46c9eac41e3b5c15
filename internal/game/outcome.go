package game

import "fmt"

// Outcome is the result of evaluating a table for a winner.
type Outcome struct {
	Finished bool   `json:"finished"`
	Winner   Player `json:"winner,omitempty"` // empty while playing or on a tie
	Tie      bool   `json:"tie"`
}

// Evaluate is a pure function of (cards, scores). The game is finished
// once every card is matched; the higher score wins, equal scores tie.
func Evaluate(cards []Card, scores Scores) Outcome {
	for _, c := range cards {
		if !c.Matched {
			return Outcome{}
		}
	}
	switch {
	case scores.P1 > scores.P2:
		return Outcome{Finished: true, Winner: Player1}
	case scores.P1 < scores.P2:
		return Outcome{Finished: true, Winner: Player2}
	default:
		return Outcome{Finished: true, Tie: true}
	}
}

// Announcement is the status line for a finished game ("" otherwise).
func (o Outcome) Announcement() string {
	switch {
	case !o.Finished:
		return ""
	case o.Tie:
		return "Game over! It's a tie!"
	default:
		return fmt.Sprintf("Game over! %s wins!", o.Winner.Label())
	}
}
