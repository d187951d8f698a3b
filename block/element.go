// Package block ties one source block to one mount point in the host
// document: on attach it preprocesses the source, renders it, and hands the
// resulting tune to a playback controller; on detach it unloads that
// controller. The host adapter translates its own lifecycle callbacks into
// Attach and Detach.
package block

import (
	"fmt"
	"log/slog"

	"github.com/jlaakso/scoreblock"
	"github.com/jlaakso/scoreblock/playback"
	"github.com/jlaakso/scoreblock/preprocess"
)

type (
	// Mount is the host-side surface a rendered block lives on.
	Mount interface {
		SetContent(svg []byte)
		SetPlaying(playing bool)
		AppendNotice(notice string)
	}

	// Element is the render lifecycle element for a single source block.
	// Attach is called exactly once per instance; Detach may be called any
	// number of times, in any state, and is safe each time.
	Element struct {
		source   string
		mount    Mount
		clicks   playback.ClickSource
		renderer scoreblock.Renderer
		audio    scoreblock.AudioContext // nil: host has no audio output
		config   scoreblock.SynthConfig
		logger   *slog.Logger

		attached   bool
		controller *playback.Controller
	}
)

// NewElement creates the lifecycle element for one block. audio may be nil;
// the block then renders as visual-only notation. logger may be nil.
func NewElement(source string, mount Mount, clicks playback.ClickSource, renderer scoreblock.Renderer, audio scoreblock.AudioContext, config scoreblock.SynthConfig, logger *slog.Logger) *Element {
	if logger == nil {
		logger = slog.Default()
	}
	return &Element{
		source:   source,
		mount:    mount,
		clicks:   clicks,
		renderer: renderer,
		audio:    audio,
		config:   config,
		logger:   logger,
	}
}

// Attach preprocesses the source, renders it onto the mount and starts
// playback initialization against the rendered tune. A malformed options
// annotation is recovered: an inline notice is appended and rendering
// proceeds with the defaults. Repeated calls are no-ops.
func (e *Element) Attach() error {
	if e.attached {
		return nil
	}
	e.attached = true

	options, body, err := preprocess.Process(e.source)
	if err != nil {
		e.logger.Error("options annotation could not be parsed", "error", err)
		e.mount.AppendNotice(fmt.Sprintf("invalid options: %v", err))
	}
	expanded := preprocess.ExpandDirectives(body)

	result, err := e.renderer.Render(expanded, options)
	if err != nil {
		return fmt.Errorf("could not render block: %w", err)
	}
	e.mount.SetContent(result.SVG)

	var engine scoreblock.Engine
	var transport scoreblock.Transport
	if e.audio != nil {
		engine, transport, err = e.audio.Output()
		if err != nil {
			e.logger.Warn("no audio session available, block is visual-only", "error", err)
			engine, transport = nil, nil
		}
	}
	e.controller = playback.NewController(engine, transport, e.config, e.mount, e.logger)
	e.controller.Start(result.Tune, e.clicks)
	return nil
}

// Detach unloads the playback session. Safe to call multiple times and even
// if Attach never ran or never completed.
func (e *Element) Detach() {
	if e.controller != nil {
		e.controller.Unload()
	}
}

// Controller exposes the block's playback controller, mainly so hosts can
// inspect the playback state. Nil until Attach has run.
func (e *Element) Controller() *playback.Controller {
	return e.controller
}
