package sound

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestCatalogHasTenSounds(t *testing.T) {
	entries := Catalog()
	if len(entries) != 10 {
		t.Fatalf("expected 10 sounds, got %d", len(entries))
	}
	if entries[0].ID != "sound1" || entries[9].ID != "sound10" {
		t.Fatalf("unexpected ids: %s..%s", entries[0].ID, entries[9].ID)
	}
}

func TestBellPlayerRejectsUnknownSound(t *testing.T) {
	var buf bytes.Buffer
	p := BellPlayer{W: &buf}
	if err := p.Play("nope"); !errors.Is(err, ErrUnknownSound) {
		t.Fatalf("expected ErrUnknownSound, got %v", err)
	}
	if err := p.Play("sound3"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected bell, got %q", buf.String())
	}
}

func TestCommandPlayerFallsBackWithoutPlayer(t *testing.T) {
	var buf bytes.Buffer
	p := NewCommandPlayer(t.TempDir(), nil)
	p.Fallback = BellPlayer{W: &buf}
	p.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	if err := p.Play("sound4"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected bell fallback, got %q", buf.String())
	}
}

func TestCommandPlayerFallsBackWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	p := NewCommandPlayer(t.TempDir(), nil)
	p.Fallback = BellPlayer{W: &buf}
	p.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

	if err := p.Play("sound7"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected bell fallback for missing file, got %q", buf.String())
	}
}

func TestCommandPlayerPlayWaitFallsBack(t *testing.T) {
	var buf bytes.Buffer
	p := NewCommandPlayer("", nil)
	p.Fallback = BellPlayer{W: &buf}

	if err := p.PlayWait(context.Background(), "sound11"); !errors.Is(err, ErrUnknownSound) {
		t.Fatalf("expected ErrUnknownSound, got %v", err)
	}
	if err := p.PlayWait(context.Background(), "sound1"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected bell without a sound dir, got %q", buf.String())
	}
}
