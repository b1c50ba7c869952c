package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/tomato/internal/kv"
	"github.com/verte-zerg/tomato/internal/notify"
	"github.com/verte-zerg/tomato/internal/stats"
	"github.com/verte-zerg/tomato/internal/store"
)

// app holds the persistence stack shared by the commands.
type app struct {
	db      *store.Store
	kv      kv.Store
	writer  *kv.Writer
	tracker *stats.Tracker
	logger  *slog.Logger
}

// openApp opens the stores and restores settings and stats. The directory
// store is primary; the SQLite store is the local fallback and journal.
func openApp(ctx context.Context, opts runtimeOptions, logger *slog.Logger, notifier notify.Notifier) (*app, error) {
	a := &app{logger: logger}
	if opts.Ephemeral {
		a.kv = kv.NewMemoryStore()
	} else {
		primary, err := kv.NewDirStore(opts.PrimaryDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open primary store: %w", err)
		}
		db, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		a.db = db
		a.kv = kv.NewFallback(primary, db, logger)
	}
	a.writer = kv.NewWriter(a.kv, logger)

	trackerOpts := stats.Options{
		Store:    a.kv,
		Writer:   a.writer,
		Notifier: notifier,
		Logger:   logger,
	}
	if a.db != nil {
		trackerOpts.Journal = a.db
	}
	a.tracker = stats.New(trackerOpts)
	a.tracker.LoadSettings(ctx)
	a.tracker.LoadStats(ctx)
	return a, nil
}

// Close flushes pending writes, saves stats once more and closes the
// database.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if err := a.tracker.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	if err := a.tracker.SaveStats(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save stats: %w", err))
	}
	if err := a.writer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
