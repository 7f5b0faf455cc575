// Package audio plays the sound that accompanies an animation through an
// external player process.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

// Player runs Command with Args followed by the file to play.
type Player struct {
	Command string
	Args    []string
	Timeout time.Duration
	Logger  *log.Logger
}

// NewPlayer creates a player. A zero timeout means 30 seconds.
func NewPlayer(command string, args []string, timeout time.Duration, logger *log.Logger) *Player {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Player{Command: command, Args: args, Timeout: timeout, Logger: logger}
}

// Play starts file in the background. Failures are logged and otherwise
// ignored; the animation never waits on sound. A nil player or an empty file
// does nothing.
func (p *Player) Play(file string) {
	if p == nil || p.Command == "" || file == "" {
		return
	}
	go func() {
		if err := p.Run(context.Background(), file); err != nil {
			p.Logger.Debug("audio playback failed", "file", file, "err", err)
		}
	}()
}

// Run plays file and waits for the player to exit or the timeout to pass.
func (p *Player) Run(ctx context.Context, file string) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	args := append(append([]string(nil), p.Args...), file)
	cmd := exec.CommandContext(ctx, p.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("audio player timeout after %s", p.Timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return fmt.Errorf("audio player failed: %w, stderr: %s", err, s)
		}
		return fmt.Errorf("audio player failed: %w", err)
	}

	return nil
}
