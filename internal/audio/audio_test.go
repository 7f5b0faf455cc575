package audio

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "player.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestPlayer_Run(t *testing.T) {
	t.Run("passes args then file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "args.txt")
		script := writeScript(t, `echo "$@" > `+out+"\n")
		p := NewPlayer(script, []string{"-nodisp", "-autoexit"}, time.Second, nil)

		if err := p.Run(context.Background(), "jingle.mp3"); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.TrimSpace(string(data)); got != "-nodisp -autoexit jingle.mp3" {
			t.Errorf("expected args %q, got %q", "-nodisp -autoexit jingle.mp3", got)
		}
	})

	t.Run("reports stderr on failure", func(t *testing.T) {
		script := writeScript(t, "echo 'no such file' >&2\nexit 1\n")
		p := NewPlayer(script, nil, time.Second, nil)

		err := p.Run(context.Background(), "missing.mp3")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "no such file") {
			t.Errorf("expected stderr in error, got %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		script := writeScript(t, "exec sleep 5\n")
		p := NewPlayer(script, nil, 100*time.Millisecond, nil)

		err := p.Run(context.Background(), "long.mp3")
		if err == nil || !strings.Contains(err.Error(), "timeout") {
			t.Errorf("expected timeout error, got %v", err)
		}
	})
}

func TestPlayer_PlayIgnoresMissingPlayer(t *testing.T) {
	var nilPlayer *Player
	nilPlayer.Play("x.mp3")

	p := NewPlayer(filepath.Join(t.TempDir(), "no-such-player"), nil, time.Second, nil)
	p.Play("x.mp3")
	p.Play("")
}
