// Package main provides the game server binary that serves the HTTP game API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/auth"
	"github.com/cory-johannsen/agentrpg/internal/config"
	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/game/dice"
	"github.com/cory-johannsen/agentrpg/internal/game/encounter"
	"github.com/cory-johannsen/agentrpg/internal/game/exploration"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
	"github.com/cory-johannsen/agentrpg/internal/game/party"
	"github.com/cory-johannsen/agentrpg/internal/game/world"
	"github.com/cory-johannsen/agentrpg/internal/gameserver"
	"github.com/cory-johannsen/agentrpg/internal/observability"
	"github.com/cory-johannsen/agentrpg/internal/server"
	"github.com/cory-johannsen/agentrpg/internal/storage/memory"
	"github.com/cory-johannsen/agentrpg/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	diceRoller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	logger.Info("starting game server",
		zap.String("http_addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Backend),
	)

	// Load content
	contentStart := time.Now()
	templates, err := loadTemplates(cfg.Content.MonstersDir)
	if err != nil {
		logger.Fatal("loading monster templates", zap.Error(err))
	}
	worldMgr, err := loadWorld(cfg.Content.ZonesFile)
	if err != nil {
		logger.Fatal("loading zones", zap.Error(err))
	}
	pool := encounter.DefaultPool()
	if cfg.Content.EncounterPoolFile != "" {
		pool, err = encounter.LoadPoolFromFile(cfg.Content.EncounterPoolFile, templates)
		if err != nil {
			logger.Fatal("loading encounter pool", zap.Error(err))
		}
	} else if err := encounter.ValidatePool(pool, templates); err != nil {
		logger.Fatal("validating encounter pool", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("monsters", len(templates.IDs())),
		zap.Int("zones", len(worldMgr.All())),
		zap.Int("pool_entries", len(pool)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	lifecycle := server.NewLifecycle(logger)

	// Storage backend
	var (
		chars    character.Repository
		sessions combat.SessionRepository
		states   exploration.StateRepository
		health   func(context.Context) error
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		dbStart := time.Now()
		dbPool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer dbPool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		chars = postgres.NewCharacterRepository(dbPool.DB())
		sessions = postgres.NewSessionRepository(dbPool.DB())
		states = postgres.NewExplorationRepository(dbPool.DB())
		health = func(ctx context.Context) error { return dbPool.Health(ctx, 2*time.Second) }
		lifecycle.Add("db-health", server.NewTicker(cfg.Database.HealthInterval, func() {
			if err := dbPool.Health(ctx, cfg.Database.HealthInterval/2); err != nil {
				logger.Warn("database health check failed", zap.Error(err))
			}
		}))
	default:
		chars = memory.NewCharacterRepository()
		sessions = memory.NewSessionRepository()
		states = memory.NewExplorationRepository()
	}

	// Game services
	engine := combat.NewEngine(chars, sessions, templates, diceRoller, logger)
	generator := encounter.NewGenerator(pool, templates, diceRoller)
	explore := exploration.NewService(chars, states, worldMgr, generator, engine, logger)
	parties := party.NewService(memory.NewPartyRepository(), chars)

	// Identity gate
	challenges := auth.NewChallenges(
		auth.WithPrefix(cfg.Auth.PowPrefix),
		auth.WithTTL(cfg.Auth.ChallengeTTL),
		auth.WithLimit(cfg.Auth.PowLimit),
	)
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("creating token issuer", zap.Error(err))
	}
	lifecycle.Add("challenge-sweeper", server.NewTicker(cfg.Auth.SweepInterval, func() {
		if n := challenges.Sweep(); n > 0 {
			logger.Debug("expired challenges swept", zap.Int("count", n))
		}
	}))

	api := gameserver.NewServer(gameserver.Deps{
		Challenges:  challenges,
		Issuer:      issuer,
		Characters:  chars,
		Combat:      engine,
		Exploration: explore,
		Parties:     parties,
		Health:      health,
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving HTTP: %w", err)
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("HTTP shutdown", zap.Error(err))
			}
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadTemplates reads monster templates from dir, or the built-in set when dir is empty.
func loadTemplates(dir string) (*npc.Registry, error) {
	if dir == "" {
		return npc.NewDefaultRegistry(), nil
	}
	tmpls, err := npc.LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	return npc.NewRegistry(tmpls)
}

// loadWorld reads zones from path, or the built-in map when path is empty.
func loadWorld(path string) (*world.Manager, error) {
	if path == "" {
		return world.NewDefaultManager(), nil
	}
	zones, err := world.LoadZonesFromFile(path)
	if err != nil {
		return nil, err
	}
	return world.NewManager(zones)
}
