package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/nroche/timebomb/internal/auth"
	"github.com/nroche/timebomb/internal/game"
	"github.com/nroche/timebomb/internal/randutil"
	"github.com/nroche/timebomb/internal/server"
	"github.com/nroche/timebomb/internal/store"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr           string   `kong:"default=':8080',help='Server address'"`
	Debug          bool     `kong:"help='Enable debug logging'"`
	RedisURL       string   `kong:"env='REDIS_URL',help='Redis URL for durable room snapshots (omit for in-memory)'"`
	JWTSecret      string   `kong:"env='JWT_SECRET',default='dev-secret-change-me',help='Secret for signing session tokens'"`
	TokenTTL       string   `kong:"default='168h',help='Session token lifetime'"`
	AllowedOrigins []string `kong:"help='CORS allowed origins (empty allows all)'"`
	MinPlayers     int      `kong:"default='4',help='Minimum players to start a game'"`
	MaxPlayers     int      `kong:"default='8',help='Maximum players per room'"`
	RoomCodeLen    int      `kong:"default='4',help='Length of generated room codes'"`
	RoundDelayMs   int      `kong:"default='5000',help='Delay before cards are redistributed after a round'"`
	IdleRoomAge    string   `kong:"default='1h',help='Rooms idle longer than this are swept'"`
	Seed           *int64   `kong:"help='Deterministic RNG seed for the server (optional)'"`
}

func (c *ServerCmd) Run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	var rng *rand.Rand
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("using random seed", "seed", seed)
	}
	rng = randutil.New(seed)

	tokenTTL, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return err
	}
	idleAge, err := time.ParseDuration(c.IdleRoomAge)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st game.Store
	if c.RedisURL != "" {
		redisStore, err := store.NewRedis(ctx, c.RedisURL, idleAge, tokenTTL)
		if err != nil {
			return err
		}
		defer func() { _ = redisStore.Close() }()
		st = redisStore
		logger.Info("using redis snapshot store")
	} else {
		st = store.NewMemory()
		logger.Info("using in-memory snapshot store")
	}

	opts := game.DefaultOptions()
	opts.MinPlayers = c.MinPlayers
	opts.MaxPlayers = c.MaxPlayers
	opts.RoomCodeLength = c.RoomCodeLen
	opts.RoundDelay = time.Duration(c.RoundDelayMs) * time.Millisecond

	signer := auth.NewSigner(c.JWTSecret, tokenTTL)

	srv := server.NewServer(nil, signer, logger)
	engine := game.NewEngine(logger, st, srv, quartz.NewReal(), rng, opts)
	srv.SetEngine(engine)
	srv.Start()
	defer func() { _ = srv.Stop() }()

	router := server.NewRouter(srv, c.AllowedOrigins, c.Debug)

	httpServer := &http.Server{
		Addr:    c.Addr,
		Handler: router,
	}

	logger.Info("starting server",
		"addr", c.Addr,
		"min_players", opts.MinPlayers,
		"max_players", opts.MaxPlayers,
		"round_delay", opts.RoundDelay,
		"idle_room_age", idleAge,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(idleAge / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := engine.SweepIdle(idleAge); n > 0 {
					logger.Info("swept idle rooms", "count", n)
				}
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
