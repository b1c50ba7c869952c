// Package sound plays session notification sounds.
package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/verte-zerg/tomato/internal/model"
)

// ErrUnknownSound is returned for identifiers outside the catalog.
var ErrUnknownSound = errors.New("unknown sound")

// Entry describes one catalog sound.
type Entry struct {
	ID   string
	Name string
}

var names = [model.SoundCount]string{
	"Soft chime",
	"Bell",
	"Marimba",
	"Digital beep",
	"Wood block",
	"Bird song",
	"Gong",
	"Harp",
	"Ding dong",
	"Kitchen timer",
}

// Catalog returns the fixed list of notification sounds.
func Catalog() []Entry {
	entries := make([]Entry, model.SoundCount)
	for i := range entries {
		entries[i] = Entry{ID: model.SoundID(i + 1), Name: names[i]}
	}
	return entries
}

// Player plays a catalog sound.
type Player interface {
	Play(id string) error
}

// Nop is a silent Player.
type Nop struct{}

// Play implements Player.
func (Nop) Play(string) error { return nil }

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	W io.Writer
}

// Play implements Player.
func (b BellPlayer) Play(id string) error {
	if !model.ValidSound(id) {
		return fmt.Errorf("%w: %q", ErrUnknownSound, id)
	}
	w := b.W
	if w == nil {
		w = os.Stderr
	}
	_, err := io.WriteString(w, "\a")
	return err
}

// candidates lists system audio players in preference order.
var candidates = []string{"paplay", "aplay", "afplay"}

// CommandPlayer plays <Dir>/<id>.wav through the first available system
// player and rings the bell when no file or player is available.
type CommandPlayer struct {
	Dir      string
	Fallback Player
	Logger   *slog.Logger
	Timeout  time.Duration

	once     sync.Once
	lookPath func(string) (string, error)
	command  string
}

// NewCommandPlayer returns a CommandPlayer reading sounds from dir.
func NewCommandPlayer(dir string, logger *slog.Logger) *CommandPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandPlayer{
		Dir:      dir,
		Fallback: BellPlayer{},
		Logger:   logger,
		Timeout:  10 * time.Second,
		lookPath: exec.LookPath,
	}
}

// Play implements Player. Playback runs in the background.
func (p *CommandPlayer) Play(id string) error {
	command, path, err := p.prepare(id)
	if err != nil {
		return err
	}
	if command == "" {
		return p.fallback(id)
	}
	go func() {
		if err := p.run(context.Background(), command, path); err != nil {
			p.Logger.Warn("sound playback failed", "sound", id, "player", command, "error", err)
		}
	}()
	return nil
}

// PlayWait plays id and returns once playback has finished.
func (p *CommandPlayer) PlayWait(ctx context.Context, id string) error {
	command, path, err := p.prepare(id)
	if err != nil {
		return err
	}
	if command == "" {
		return p.fallback(id)
	}
	return p.run(ctx, command, path)
}

// prepare resolves the player and file for id. An empty command means the
// fallback should be used.
func (p *CommandPlayer) prepare(id string) (command, path string, err error) {
	if !model.ValidSound(id) {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownSound, id)
	}
	command = p.resolveCommand()
	if command == "" || p.Dir == "" {
		return "", "", nil
	}
	path = filepath.Join(p.Dir, id+".wav")
	if _, err := os.Stat(path); err != nil {
		p.Logger.Debug("sound file unavailable", "path", path, "error", err)
		return "", "", nil
	}
	return command, path, nil
}

func (p *CommandPlayer) run(ctx context.Context, command, path string) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := exec.CommandContext(ctx, command, path).Run(); err != nil {
		return fmt.Errorf("run %s: %w", filepath.Base(command), err)
	}
	return nil
}

func (p *CommandPlayer) resolveCommand() string {
	p.once.Do(func() {
		lookPath := p.lookPath
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		for _, name := range candidates {
			if path, err := lookPath(name); err == nil {
				p.command = path
				return
			}
		}
	})
	return p.command
}

func (p *CommandPlayer) fallback(id string) error {
	if p.Fallback == nil {
		return nil
	}
	return p.Fallback.Play(id)
}
