// Package app wires configuration, logging, storage and the command layer
// into a ready-to-use application.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/config"
	"github.com/fishblog/fishblog/internal/logging"
	"github.com/fishblog/fishblog/internal/metrics"
	"github.com/fishblog/fishblog/internal/store"
)

// App is a bootstrapped blog: configuration, logger, store, model and the
// command layer the front ends drive.
type App struct {
	ConfigPath string
	Config     *config.Config
	Log        *zap.Logger

	Store    store.Store
	Model    *blog.Model
	Commands *command.App
}

// Options adjust bootstrap for the front end in use.
type Options struct {
	// Console mirrors logs to stderr. The TUI owns the terminal and turns
	// it off.
	Console bool
	// Seed installs the sample articles into an empty blog.
	Seed bool
}

// New loads the configuration at configPath and bootstraps from it. The
// returned cleanup closes the store and flushes the logger.
func New(ctx context.Context, configPath string, opts Options) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return NewWithConfig(ctx, cfg, configPath, opts)
}

// NewWithConfig bootstraps from an already loaded configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config, configPath string, opts Options) (*App, func(), error) {
	if err := os.MkdirAll(cfg.Paths.Data, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	logCfg := cfg.Log
	logCfg.Console = logCfg.Console || opts.Console
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, err
	}

	s, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}

	model := blog.NewModel(s, log.Named("model"))
	model.LoadAll(ctx)
	if opts.Seed {
		if _, err := model.SeedIfEmpty(ctx, time.Now().UTC().Truncate(time.Millisecond), uuid.NewString); err != nil {
			log.Warn("seeding failed", zap.Error(err))
		}
	}

	commands, err := command.New(model, command.Options{
		Canvas: canvas.Options{
			Width:       cfg.Canvas.Width,
			Height:      cfg.Canvas.Height,
			Color:       cfg.Canvas.Color,
			StrokeWidth: cfg.Canvas.StrokeWidth,
		},
		MaxDrawings: cfg.Canvas.MaxDrawings,
		Observer:    metrics.Recorder{},
		Log:         log.Named("command"),
	})
	if err != nil {
		closeStore()
		_ = log.Sync()
		return nil, nil, err
	}

	a := &App{
		ConfigPath: configPath,
		Config:     cfg,
		Log:        log,
		Store:      s,
		Model:      model,
		Commands:   commands,
	}

	cleanup := func() {
		closeStore()
		_ = log.Sync()
	}

	return a, cleanup, nil
}
