package scoreblock

import "context"

type (
	// Engine is the capability surface of a stateful audio synthesis backend.
	// Init blocks until the engine is ready to play the tune, the context is
	// cancelled, or initialization fails; it is intended to be called from a
	// goroutine so the caller never waits synchronously. Stop halts in-flight
	// audio immediately and must be safe to call in any state, including
	// before Init.
	Engine interface {
		Init(ctx context.Context, tune Tune, config SynthConfig) error
		Stop()
	}

	// Transport exposes play/pause/restart semantics over the current tune's
	// audio rendition. Restart resets the position to the start without
	// changing the running/paused flag. All methods must be safe to call
	// before the engine has been initialized; they are no-ops then.
	Transport interface {
		SetTune(tune Tune)
		Play()
		Pause()
		Restart()
		Running() bool
	}

	// AudioContext creates per-block audio sessions. Output returns a fresh
	// engine/transport pair on every call; sessions are never shared between
	// blocks nor reused across re-attachment. A nil AudioContext, or an
	// Output error, means the host has no audio output capability and the
	// block is rendered as visual-only notation.
	AudioContext interface {
		Output() (Engine, Transport, error)
		Close() error
	}
)
