package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verte-zerg/tomato/internal/model"
)

const defaultSaveTimeout = 5 * time.Second

type multiReader interface {
	GetEach(ctx context.Context, key string) []string
}

// LoadSettings restores settings from the store. Missing or malformed data
// yields defaults; out-of-range fields are replaced by their defaults.
func (t *Tracker) LoadSettings(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()
	for _, raw := range t.read(ctx, SettingsKey) {
		decoded, err := decodeSettings(raw)
		if err != nil {
			t.logger.Warn("ignoring malformed settings", "error", err)
			continue
		}
		settings = decoded
		break
	}
	t.mu.Lock()
	t.settings = settings
	t.mu.Unlock()
	return settings
}

// SaveSettings validates and persists settings. Invalid input is rejected and
// leaves the current settings unchanged. A storage failure keeps the new
// settings in memory and is reported to the user.
func (t *Tracker) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	t.settings = settings
	t.mu.Unlock()

	if err := t.writeJSON(ctx, SettingsKey, settings); err != nil {
		t.logger.Error("failed to save settings", "error", err)
		t.notifier.Notify("Failed to save settings")
		return err
	}
	t.notifier.Notify("Settings saved")
	return nil
}

// ResetSettings restores and persists the default settings.
func (t *Tracker) ResetSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	t.mu.Lock()
	t.settings = settings
	t.mu.Unlock()

	if err := t.writeJSON(ctx, SettingsKey, settings); err != nil {
		t.logger.Error("failed to save settings", "error", err)
		t.notifier.Notify("Failed to save settings")
		return settings, err
	}
	t.notifier.Notify("Settings reset")
	return settings, nil
}

// LoadStats restores stats from the store, merged over defaults and rolled
// over to today. Missing or malformed data yields empty stats.
func (t *Tracker) LoadStats(ctx context.Context) model.Stats {
	now := t.now()
	stats := model.DefaultStats(now)
	for _, raw := range t.read(ctx, StatsKey) {
		decoded, err := decodeStats(raw, now)
		if err != nil {
			t.logger.Warn("ignoring malformed stats", "error", err)
			continue
		}
		stats = decoded
		break
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = stats
	if Rollover(&t.stats, now) {
		t.persistStatsLocked()
	}
	return t.stats.Clone()
}

// SaveStats persists the current stats synchronously.
func (t *Tracker) SaveStats(ctx context.Context) error {
	t.mu.Lock()
	snapshot := t.stats.Clone()
	t.mu.Unlock()
	return t.writeJSON(ctx, StatsKey, snapshot)
}

// ResetStats replaces stats with defaults and persists them.
func (t *Tracker) ResetStats(ctx context.Context) error {
	t.mu.Lock()
	t.stats = model.DefaultStats(t.now())
	snapshot := t.stats.Clone()
	t.mu.Unlock()

	if err := t.writeJSON(ctx, StatsKey, snapshot); err != nil {
		t.logger.Error("failed to save stats", "error", err)
		t.notifier.Notify("Failed to reset statistics")
		return err
	}
	t.notifier.Notify("Statistics reset")
	return nil
}

func (t *Tracker) read(ctx context.Context, key string) []string {
	if multi, ok := t.store.(multiReader); ok {
		return multi.GetEach(ctx, key)
	}
	value, ok, err := t.store.Get(ctx, key)
	if err != nil {
		t.logger.Warn("store read failed", "key", key, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return []string{value}
}

func (t *Tracker) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return t.store.Set(ctx, key, string(data))
}

// persistStatsLocked saves stats without blocking the caller when a
// background writer is configured.
func (t *Tracker) persistStatsLocked() {
	data, err := json.Marshal(t.stats)
	if err != nil {
		t.logger.Error("failed to encode stats", "error", err)
		return
	}
	if t.writer != nil {
		t.writer.Enqueue(StatsKey, string(data))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultSaveTimeout)
	defer cancel()
	if err := t.store.Set(ctx, StatsKey, string(data)); err != nil {
		t.logger.Warn("failed to save stats", "error", err)
	}
}

// decodeSettings merges a stored record over the defaults field by field. A
// field of the wrong type keeps its default without discarding the others.
func decodeSettings(raw string) (model.Settings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.DefaultSettings(), fmt.Errorf("decode settings: %w", err)
	}
	if fields == nil {
		return model.DefaultSettings(), fmt.Errorf("decode settings: empty record")
	}
	settings := model.DefaultSettings()
	decodeField(fields, "workDuration", &settings.WorkDuration)
	decodeField(fields, "shortBreakDuration", &settings.ShortBreakDuration)
	decodeField(fields, "longBreakDuration", &settings.LongBreakDuration)
	decodeField(fields, "sessionsUntilLongBreak", &settings.SessionsUntilLongBreak)
	decodeField(fields, "soundEnabled", &settings.SoundEnabled)
	decodeField(fields, "autoStartBreaks", &settings.AutoStartBreaks)
	decodeField(fields, "autoStartWork", &settings.AutoStartWork)
	decodeField(fields, "selectedSound", &settings.SelectedSound)
	settings.Normalize()
	return settings, nil
}

func decodeField[T any](fields map[string]json.RawMessage, name string, target *T) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return
	}
	*target = value
}

func decodeStats(raw string, now time.Time) (model.Stats, error) {
	stats := model.DefaultStats(now)
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return model.DefaultStats(now), fmt.Errorf("decode stats: %w", err)
	}
	stats.Normalize(now)
	return stats, nil
}
