// apps/go-server/internal/httpserver/routes_tables.go
//
// HTTP routes for playing at a table.
//   - POST /tables              → deal a new table (optionally today's daily deal)
//   - GET  /tables/{id}         → current view
//   - POST /tables/{id}/click   → click a card by index
//   - POST /tables/{id}/reset   → abandon the session and deal again
//
// Both players share one screen, so one token grants the whole table.
// Ignored clicks are not errors: they answer 200 with accepted=false.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/daily"
	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/table"
)

type newTableReq struct {
	Daily bool `json:"daily"`
}

type newTableRes struct {
	TableID string    `json:"tableId"`
	Token   string    `json:"token"`
	Daily   string    `json:"daily,omitempty"` // date key of the daily deal
	View    game.View `json:"view"`
}

type clickReq struct {
	Index *int `json:"index"`
}

type clickRes struct {
	Accepted bool      `json:"accepted"`
	Reason   string    `json:"reason,omitempty"`
	View     game.View `json:"view"`
}

type viewRes struct {
	View game.View `json:"view"`
}

// handleNewTable deals a table, stores it and hands out its token.
func (s *Server) handleNewTable(w http.ResponseWriter, r *http.Request) {
	var req newTableReq
	// An empty body deals a regular table.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	gameOpts := append([]game.Option{}, s.gameOpts...)
	var dateKey string
	if req.Daily {
		now := time.Now()
		dateKey = daily.DateKey(now)
		gameOpts = append(gameOpts, game.WithSource(daily.Source(now, s.cfg.DailySalt)))
	}
	tableOpts := append([]table.Option{table.WithDelay(s.cfg.MismatchDelay)}, s.tableOpts...)
	t := table.New(game.New(s.catalog, gameOpts...), tableOpts...)

	tok, exp, err := s.signTableToken(t.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign table token")
		http.Error(w, `{"error":"token_issue_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), t); err != nil {
		log.Error().Err(err).Str("table", t.ID).Msg("save table")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setTableCookie(w, t.ID, tok, exp)

	log.Info().Str("table", t.ID).Bool("daily", req.Daily).Int("cards", len(s.catalog)*2).Msg("table created")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newTableRes{
		TableID: t.ID,
		Token:   tok,
		Daily:   dateKey,
		View:    t.View(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(viewRes{View: tableFrom(r).View()})
}

// handleClick forwards a click; the engine decides whether it counts.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Index == nil {
		http.Error(w, `{"error":"missing_index"}`, http.StatusBadRequest)
		return
	}

	res, v := tableFrom(r).Click(*req.Index)
	out := clickRes{Accepted: res.Accepted(), View: v}
	if res.Reason != nil {
		out.Reason = res.Reason.Error()
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(viewRes{View: tableFrom(r).Reset()})
}
