package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mines-client/internal/autoplay"
	"mines-client/internal/config"
	"mines-client/internal/logging"
	"mines-client/internal/session"
	"mines-client/internal/store"
	httptransport "mines-client/internal/transport/http"
	"mines-client/internal/ws"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("store init failed")
	}
	st := store.New(kv, nil)
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("store ping failed")
	}

	client := ws.NewClient(cfg.Client.WSURL, cfg.Client.ReconnectDelay, nil)
	sess := session.New(session.Options{
		Store:          st,
		Emitter:        client,
		InitialBalance: decimal.NewFromInt(cfg.Client.InitialBalance),
		SlotCount:      cfg.Client.SlotCount,
		PlayerName:     cfg.Client.PlayerName,
	})
	sess.Recover(ctx)
	view := sess.View()
	log.Info().
		Str("player_id", view.PlayerID).
		Str("display_name", view.DisplayName).
		Str("balance", view.Balance.String()).
		Str("phase", string(view.Phase)).
		Str("store", cfg.Store.Driver).
		Msg("session ready")

	go client.Run(ctx)

	var server *http.Server
	if cfg.HTTP.Enabled {
		r := httptransport.NewRouter(sess, st)
		httptransport.LogRoutes(r)
		server = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("http listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	if cfg.Client.Autoplay {
		bot := autoplay.New(sess, decimal.NewFromInt(cfg.Client.AutoplayStake), nil, nil)
		go bot.Run(ctx)
		log.Info().Int64("stake", cfg.Client.AutoplayStake).Msg("autoplay enabled")
	}

	if err := sess.Run(ctx, client.Events()); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("session stopped")
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	log.Info().Msg("shutdown complete")
}
