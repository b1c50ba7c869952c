// Package kv provides the key-value stores settings and stats are persisted to.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidKey is returned for keys that cannot be stored.
var ErrInvalidKey = errors.New("invalid key")

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Fallback reads from Primary and falls back to Secondary on a miss,
// and mirrors every write to both.
type Fallback struct {
	Primary   Store
	Secondary Store
	Logger    *slog.Logger
}

// NewFallback builds a Fallback. Either store may be nil.
func NewFallback(primary, secondary Store, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{Primary: primary, Secondary: secondary, Logger: logger}
}

// Get implements Store.
func (f *Fallback) Get(ctx context.Context, key string) (string, bool, error) {
	var primaryErr error
	if f.Primary != nil {
		value, ok, err := f.Primary.Get(ctx, key)
		switch {
		case err != nil:
			primaryErr = err
			f.logger().Warn("primary store read failed", "key", key, "error", err)
		case ok:
			return value, true, nil
		}
	}
	if f.Secondary == nil {
		return "", false, primaryErr
	}
	value, ok, err := f.Secondary.Get(ctx, key)
	if err != nil {
		return "", false, errors.Join(primaryErr, fmt.Errorf("secondary get %s: %w", key, err))
	}
	return value, ok, nil
}

// GetEach returns the primary and secondary values separately, so callers
// can skip a primary value they cannot decode.
func (f *Fallback) GetEach(ctx context.Context, key string) []string {
	var values []string
	for _, st := range []Store{f.Primary, f.Secondary} {
		if st == nil {
			continue
		}
		value, ok, err := st.Get(ctx, key)
		if err != nil {
			f.logger().Warn("store read failed", "key", key, "error", err)
			continue
		}
		if ok {
			values = append(values, value)
		}
	}
	return values
}

// Set implements Store. It succeeds when at least one store accepted the write.
func (f *Fallback) Set(ctx context.Context, key, value string) error {
	return f.each(func(name string, st Store) error {
		if err := st.Set(ctx, key, value); err != nil {
			return fmt.Errorf("%s set %s: %w", name, key, err)
		}
		return nil
	})
}

// Delete implements Store.
func (f *Fallback) Delete(ctx context.Context, key string) error {
	return f.each(func(name string, st Store) error {
		if err := st.Delete(ctx, key); err != nil {
			return fmt.Errorf("%s delete %s: %w", name, key, err)
		}
		return nil
	})
}

func (f *Fallback) each(fn func(name string, st Store) error) error {
	var errs []error
	written := 0
	stores := 0
	for _, entry := range []struct {
		name string
		st   Store
	}{{"primary", f.Primary}, {"secondary", f.Secondary}} {
		if entry.st == nil {
			continue
		}
		stores++
		if err := fn(entry.name, entry.st); err != nil {
			f.logger().Warn("store write failed", "error", err)
			errs = append(errs, err)
			continue
		}
		written++
	}
	if stores > 0 && written == 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (f *Fallback) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}
