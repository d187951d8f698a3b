// Package oto adapts the ebitengine/oto audio library to the scoreblock
// Engine and Transport interfaces. One Context is created per host process;
// Output hands out a fresh TunePlayer per rendered block.
package oto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/jlaakso/scoreblock"
	"github.com/jlaakso/scoreblock/synth"
)

type Context struct {
	context *oto.Context
	ready   chan struct{}
	config  scoreblock.SynthConfig
}

// NewContext opens the host audio device. An error here means the host has no
// audio output capability; callers then render blocks as visual-only.
func NewContext(config scoreblock.SynthConfig) (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.NumChannels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	return &Context{context: ctx, ready: ready, config: config}, nil
}

// Output returns a fresh engine/transport pair for one rendered block. Both
// values are the same *TunePlayer; the split exists so callers only hold the
// capability they need.
func (c *Context) Output() (scoreblock.Engine, scoreblock.Transport, error) {
	p := &TunePlayer{context: c}
	return p, p, nil
}

// Close suspends the underlying device; oto contexts cannot be destroyed.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// TunePlayer plays one tune's PCM rendition through an oto player. It
// implements both scoreblock.Engine and scoreblock.Transport.
type TunePlayer struct {
	context *Context

	mu      sync.Mutex
	player  *oto.Player
	stopped bool
}

// Init renders the tune to PCM and binds an oto player to it. It waits for
// the audio device to become ready, honoring ctx.
func (p *TunePlayer) Init(ctx context.Context, tune scoreblock.Tune, config scoreblock.SynthConfig) error {
	select {
	case <-p.context.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	pcm := FloatBufferTo16BitLE(synth.Render(tune, config), nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return errors.New("tune player was stopped before initialization completed")
	}
	p.player = p.context.context.NewPlayer(bytes.NewReader(pcm))
	return nil
}

// Stop halts in-flight audio for good. Safe to call in any state, any number
// of times.
func (p *TunePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
}

// SetTune swaps the playing material, preserving the running/paused flag.
func (p *TunePlayer) SetTune(tune scoreblock.Tune) {
	pcm := FloatBufferTo16BitLE(synth.Render(tune, p.context.config), nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return
	}
	wasPlaying := p.player.IsPlaying()
	p.player.Close()
	p.player = p.context.context.NewPlayer(bytes.NewReader(pcm))
	if wasPlaying {
		p.player.Play()
	}
}

func (p *TunePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Play()
	}
}

func (p *TunePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Pause()
	}
}

// Restart seeks back to the start without touching the running/paused flag.
func (p *TunePlayer) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Seek(0, io.SeekStart)
	}
}

func (p *TunePlayer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}
