// apps/go-server/main.go
//
// Entry point for the Memory Match server.
// Responsibilities:
//   - Load configuration (.env + environment) and set up zerolog.
//   - Load the icon catalog (ICONS_FILE or the embedded default).
//   - Run the idle-table sweeper and the HTTP server until SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/config"
	"github.com/robalobadob/memory/apps/go-server/internal/httpserver"
	"github.com/robalobadob/memory/apps/go-server/internal/icons"
	"github.com/robalobadob/memory/apps/go-server/internal/store"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	catalog, err := icons.Load(cfg.IconsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.IconsFile).Msg("failed to load icon catalog")
	}
	pairs, cards := icons.Stats(catalog)
	log.Info().Int("pairs", pairs).Int("cards", cards).Msg("icon catalog loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go store.SweepEvery(ctx, mem, time.Minute, cfg.TableIdleTTL)

	srv := httpserver.New(mem, cfg, catalog)
	log.Info().Str("port", cfg.Port).Dur("mismatch_delay", cfg.MismatchDelay).Msg("starting go-server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
