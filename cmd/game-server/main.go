package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bingo-battle/internal/app/room"
	"bingo-battle/internal/config"
	"bingo-battle/internal/game"
	"bingo-battle/internal/logging"
	"bingo-battle/internal/mcpserver"
	"bingo-battle/internal/presence"
	"bingo-battle/internal/store"
	httptransport "bingo-battle/internal/transport/http"
	"bingo-battle/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(appCfg.Log); err != nil {
		panic(err)
	}
	defer logging.Close()
	cfg := appCfg.Server

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app init failed")
	}
	defer a.Close()

	httptransport.LogRoutes(a.router)
	a.rooms.StartJanitor(ctx, cfg.RoomTTL, cfg.JanitorInterval)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreBackend).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

type app struct {
	router *chi.Mux
	rooms  *room.Service
	closes []func()
}

func (a *app) Close() {
	for i := len(a.closes) - 1; i >= 0; i-- {
		a.closes[i]()
	}
}

// newApp wires the store, presence registry, room service and transports
// selected by cfg.
func newApp(ctx context.Context, cfg config.ServerConfig) (*app, error) {
	a := &app{}

	var (
		roomStore room.RoomStore
		pinger    httptransport.Pinger
	)
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		mem := store.NewMemoryStore()
		roomStore, pinger = mem, mem
	default:
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closes = append(a.closes, st.Close)
		if err := st.Ping(ctx); err != nil {
			a.Close()
			return nil, err
		}
		roomStore, pinger = st, st
	}

	var registry room.Registry = presence.NewMemoryRegistry()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closes = append(a.closes, func() { _ = client.Close() })
		reg := presence.NewRedisRegistry(client, cfg.RoomTTL)
		if err := reg.Ping(ctx); err != nil {
			a.Close()
			return nil, err
		}
		registry = reg
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis presence registry enabled")
	}

	a.rooms = room.NewService(roomStore, registry, game.NewEngine(nil), cfg.BaseURL)
	hub := ws.NewHub()
	a.rooms.SetBroadcaster(hub)
	wsSrv := ws.NewServer(a.rooms, hub, ws.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SendBuffer:     cfg.WSSendBuffer,
	})

	a.router = httptransport.NewRouter(httptransport.Deps{
		Rooms:     a.rooms,
		Store:     pinger,
		WS:        wsSrv.HandleWS,
		MCP:       mcpserver.New(a.rooms).Handler(),
		StaticDir: cfg.StaticDir,
	})
	return a, nil
}
