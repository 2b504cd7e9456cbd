package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/architect/internal/llm"
)

// Player plays audio until it finishes or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, audio *llm.Audio) error
}

// DiscardPlayer produces no sound but stays busy for the audio's duration.
type DiscardPlayer struct{}

// Play blocks for audio.Duration() or until ctx is done.
func (DiscardPlayer) Play(ctx context.Context, audio *llm.Audio) error {
	timer := time.NewTimer(audio.Duration())
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExecPlayer pipes a WAV stream to an external command such as "aplay -q" or "ffplay -nodisp -autoexit -".
type ExecPlayer struct {
	Command string
	Args    []string
}

// Play runs the command with the audio on stdin. Cancelling ctx kills the process.
func (p ExecPlayer) Play(ctx context.Context, audio *llm.Audio) error {
	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	cmd.Stdin = bytes.NewReader(audio.WAV())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %s", p.Command, err, stderr.String())
	}
	return nil
}

// Synthesizer turns text into audio.
type Synthesizer func(ctx context.Context, text string) (*llm.Audio, error)

// Speaker allows at most one playback at a time. Starting a new one stops the previous
// playback and waits for it to end before the new one begins.
type Speaker struct {
	synth  Synthesizer
	player Player
	logger zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSpeaker creates a Speaker.
func NewSpeaker(synth Synthesizer, player Player, logger zerolog.Logger) *Speaker {
	return &Speaker{synth: synth, player: player, logger: logger}
}

// Speak stops any current playback, synthesizes text and starts playing it.
// It returns once playback has started. A Speak or Stop issued while synthesis is
// in flight supersedes this call and its audio is dropped.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.stopLocked()
	s.mu.Unlock()

	audio, err := s.synth(ctx, text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.stopLocked()

	playCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()
		if err := s.player.Play(playCtx, audio); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("playback failed")
		}
	}()
	return nil
}

// Stop ends the active playback and waits for it to release the output.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.stopLocked()
}

// Wait blocks until the current playback finishes or ctx is done.
func (s *Speaker) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Playing reports whether a playback is in progress.
func (s *Speaker) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Speaker) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}
