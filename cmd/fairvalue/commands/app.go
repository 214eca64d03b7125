package commands

import (
	"context"
	"fmt"

	"github.com/fairvalue/screener/internal/marketdata"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/internal/screener"
	"github.com/fairvalue/screener/internal/selection"
	"github.com/fairvalue/screener/internal/valuation"
	"github.com/fairvalue/screener/pkg/config"
	"github.com/fairvalue/screener/pkg/logger"
	"github.com/fairvalue/screener/pkg/redis"
)

// app wires the shared dependencies of every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	rdb      *redis.Client
	cache    *marketdata.ValuationCache
	profiles *philosophy.Registry
	screener *screener.Screener

	closeProvider func()
}

// loadSettings reads config and the profile registry (no network)
func loadSettings() (*config.Config, *logger.Logger, *philosophy.Registry, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if profilesFile != "" {
		cfg.Screen.ProfilesFile = profilesFile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Philosophy profiles
	profiles := philosophy.Builtin()
	if cfg.Screen.ProfilesFile != "" {
		profiles, err = philosophy.LoadFile(cfg.Screen.ProfilesFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load profiles: %w", err)
		}
		log.WithField("file", cfg.Screen.ProfilesFile).Info("Philosophy overrides loaded")
	}

	return cfg, log, profiles, nil
}

// newApp builds the full pipeline: provider → cache → DCF → scorer
func newApp(ctx context.Context) (*app, error) {
	cfg, log, profiles, err := loadSettings()
	if err != nil {
		return nil, err
	}

	// 4. Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	// 5. Market data provider
	provider, closeProvider, err := marketdata.NewProvider(ctx, cfg, rdb, log)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("init provider: %w", err)
	}

	// 6. Valuation cache + pipeline
	cache := marketdata.NewValuationCache(cfg.Cache.TTL, nil, log)
	scr := screener.New(
		provider,
		cache,
		valuation.NewCalculator(log),
		selection.NewScorer(log),
		screener.Config{Workers: cfg.Screen.Workers},
		log,
	)

	return &app{
		cfg:           cfg,
		log:           log,
		rdb:           rdb,
		cache:         cache,
		profiles:      profiles,
		screener:      scr,
		closeProvider: closeProvider,
	}, nil
}

// Close releases provider and Redis resources
func (a *app) Close() {
	a.closeProvider()
	if err := a.rdb.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

// profile resolves a philosophy flag; empty selects the default
func (a *app) profile(name string) (philosophy.Profile, error) {
	return resolveProfile(a.profiles, name)
}

func resolveProfile(profiles *philosophy.Registry, name string) (philosophy.Profile, error) {
	if name == "" {
		return profiles.Get(string(philosophy.ValueDCF)), nil
	}
	p, ok := profiles.Lookup(name)
	if !ok {
		return philosophy.Profile{}, fmt.Errorf("unknown philosophy %q (valid: %v)", name, philosophy.Names)
	}
	return p, nil
}
