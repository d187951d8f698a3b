// Package playback implements the per-block playback controller: a small
// state machine that owns one audio engine session and one transport session,
// drives them from click events, and guarantees clean teardown on unload.
package playback

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jlaakso/scoreblock"
)

// State is the lifecycle state of a controller.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Playing
	Paused
	Unloaded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Unloaded:
		return "unloaded"
	}
	return "unknown"
}

type (
	// Click is one interaction event on a rendered block. A single click
	// toggles play/pause; a double click restarts from the beginning.
	Click struct {
		Double bool
	}

	// ClickSource delivers the host's click events for one block. The
	// subscription is bound to ctx: when ctx is cancelled, the host must stop
	// delivering (and may close the channel). The single ctx is the only
	// detach mechanism; both click kinds ride the same subscription.
	ClickSource interface {
		Clicks(ctx context.Context) <-chan Click
	}

	// Indicator receives playing-state changes for the block's visual
	// "playing" marker.
	Indicator interface {
		SetPlaying(playing bool)
	}

	// Controller coordinates one block's engine and transport with the
	// host's click events. It is bound 1:1 to a rendered block and never
	// reused; construct a fresh one per attach.
	Controller struct {
		engine    scoreblock.Engine
		transport scoreblock.Transport
		config    scoreblock.SynthConfig
		indicator Indicator
		logger    *slog.Logger

		ctx    context.Context // the cancellation token governing the listeners
		cancel context.CancelFunc

		mu    sync.Mutex
		state State

		initDone  chan struct{}
		closeInit sync.Once
	}
)

// NewController creates a controller over one engine/transport session. A nil
// engine means the host has no audio output capability; the controller then
// stays Uninitialized permanently and the block is visual-only. indicator and
// logger may be nil.
func NewController(engine scoreblock.Engine, transport scoreblock.Transport, config scoreblock.SynthConfig, indicator Indicator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		engine:    engine,
		transport: transport,
		config:    config,
		indicator: indicator,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		initDone:  make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InitDone returns a channel closed once the asynchronous initialization
// continuation has run, whether it succeeded, failed or arrived post-unload.
// It also closes when Start declines to initialize at all.
func (c *Controller) InitDone() <-chan struct{} { return c.initDone }

// Start begins asynchronous engine initialization against the tune. It is
// called once per block, after the render has produced a playable tune. Start
// returns immediately; on success the continuation binds the transport
// (non-autoplay) and subscribes to the click source. On failure the block
// stays visually rendered but non-interactive.
func (c *Controller) Start(tune scoreblock.Tune, clicks ClickSource) {
	c.mu.Lock()
	if c.engine == nil || c.state != Uninitialized {
		c.mu.Unlock()
		c.closeInit.Do(func() { close(c.initDone) })
		return
	}
	c.state = Loading
	c.mu.Unlock()
	go c.initialize(tune, clicks)
}

func (c *Controller) initialize(tune scoreblock.Tune, clicks ClickSource) {
	defer c.closeInit.Do(func() { close(c.initDone) })
	err := c.engine.Init(c.ctx, tune, c.config)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Unloaded {
		// the block was torn down while we were initializing; do not
		// re-attach anything
		return
	}
	if err != nil {
		// deliberate degraded mode: the score stays visible, no listeners
		c.logger.Warn("audio engine initialization failed, block is visual-only", "error", err)
		return
	}
	c.transport.SetTune(tune)
	c.state = Ready
	ch := clicks.Clicks(c.ctx)
	go c.listen(ch)
}

// listen dispatches click events until the cancellation token fires. Both
// click kinds detach atomically with the one token.
func (c *Controller) listen(clicks <-chan Click) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case click, ok := <-clicks:
			if !ok {
				return
			}
			if click.Double {
				c.Restart()
			} else {
				c.Toggle()
			}
		}
	}
}

// Toggle starts playback if the transport is not currently running, otherwise
// pauses it, and updates the visual indicator accordingly. The decision is
// based on the transport's running flag at the moment of the call.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.interactive() {
		return
	}
	if c.transport.Running() {
		c.transport.Pause()
		c.state = Paused
		if c.indicator != nil {
			c.indicator.SetPlaying(false)
		}
	} else {
		c.transport.Play()
		c.state = Playing
		if c.indicator != nil {
			c.indicator.SetPlaying(true)
		}
	}
}

// Restart resets the transport position to the start without changing the
// running/paused flag.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.interactive() {
		return
	}
	c.transport.Restart()
}

// interactive reports whether the transport is bound and the block live.
// Callers must hold c.mu.
func (c *Controller) interactive() bool {
	switch c.state {
	case Ready, Playing, Paused:
		return true
	}
	return false
}

// Unload tears the session down: it fires the cancellation token so both
// click listeners detach, forces the transport back to the start, pauses it,
// and finally stops the engine directly, since the transport pause alone does
// not halt in-flight audio. Unload is safe to call in any state, any number of
// times, including before initialization has completed; a later-arriving
// initialization success then becomes a no-op.
func (c *Controller) Unload() {
	c.mu.Lock()
	if c.state == Unloaded {
		c.mu.Unlock()
		return
	}
	initialized := c.interactive()
	c.state = Unloaded
	c.mu.Unlock()

	c.cancel()
	if initialized {
		c.transport.Restart()
		c.transport.Pause()
	}
	if c.engine != nil {
		c.engine.Stop()
	}
}
