package game

// HiddenImage is the shared card-back placeholder.
const HiddenImage = "icons/hidden_card.png"

const hiddenLabel = "hidden card"

// CardView is the client-facing representation of a card.
// Face-down cards expose neither their face image nor their label.
type CardView struct {
	ID        string `json:"id"`
	Image     string `json:"imageRef"`
	Label     string `json:"label"`
	FaceUp    bool   `json:"isFaceUp"`
	Matched   bool   `json:"isMatched"`
	Clickable bool   `json:"clickable"`
}

// View is everything the render layer needs for one frame.
type View struct {
	SessionID      string     `json:"sessionId"`
	Cards          []CardView `json:"cards"`
	Turn           Player     `json:"turn"`
	Scores         Scores     `json:"scores"`
	Status         string     `json:"status"`
	Locked         bool       `json:"locked"`
	Finished       bool       `json:"finished"`
	Phase          Phase      `json:"phase"`
	Flipped        []int      `json:"flipped"`
	RemainingPairs int        `json:"remainingPairs"`
	TotalPairs     int        `json:"totalPairs"`
	Outcome        *Outcome   `json:"outcome,omitempty"`
}

// View snapshots the game for rendering. The result shares no memory
// with the game.
func (g *Game) View() View {
	o := g.Outcome()
	v := View{
		SessionID:      g.SessionID,
		Cards:          make([]CardView, len(g.Cards)),
		Turn:           g.Turn,
		Scores:         g.Scores,
		Status:         g.Status,
		Locked:         g.Locked,
		Finished:       o.Finished,
		Phase:          g.Phase(),
		Flipped:        append([]int{}, g.Flipped...),
		RemainingPairs: g.RemainingPairs(),
		TotalPairs:     g.TotalPairs(),
	}
	if o.Finished {
		v.Outcome = &o
	}
	for i, c := range g.Cards {
		cv := CardView{ID: c.ID, FaceUp: c.FaceUp, Matched: c.Matched}
		if c.FaceUp || c.Matched {
			cv.Image, cv.Label = c.Image, c.Label
		} else {
			cv.Image, cv.Label = HiddenImage, hiddenLabel
		}
		cv.Clickable = !g.Locked && !o.Finished && !c.Matched && !c.FaceUp
		v.Cards[i] = cv
	}
	return v
}
