package block_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jlaakso/scoreblock"
	"github.com/jlaakso/scoreblock/block"
	"github.com/jlaakso/scoreblock/playback"
)

// fakeMount records what the element rendered onto it.
type fakeMount struct {
	mu      sync.Mutex
	content []byte
	notices []string
	playing bool
}

func (m *fakeMount) SetContent(svg []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = svg
}

func (m *fakeMount) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = playing
}

func (m *fakeMount) AppendNotice(notice string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, notice)
}

// fakeRenderer returns a canned result and remembers its inputs.
type fakeRenderer struct {
	body    string
	options scoreblock.Options
}

func (r *fakeRenderer) Render(body string, options scoreblock.Options) (scoreblock.RenderResult, error) {
	r.body = body
	r.options = options
	return scoreblock.RenderResult{
		Tune: scoreblock.Tune{Title: "fake"},
		SVG:  []byte("<svg/>"),
	}, nil
}

// instantAudio hands out engines that initialize immediately.
type instantAudio struct{}

func (instantAudio) Output() (scoreblock.Engine, scoreblock.Transport, error) {
	s := &instantSession{}
	return s, s, nil
}
func (instantAudio) Close() error { return nil }

type instantSession struct {
	mu      sync.Mutex
	running bool
	stopped bool
}

func (s *instantSession) Init(ctx context.Context, tune scoreblock.Tune, config scoreblock.SynthConfig) error {
	return ctx.Err()
}
func (s *instantSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}
func (s *instantSession) SetTune(tune scoreblock.Tune) {}
func (s *instantSession) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}
func (s *instantSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}
func (s *instantSession) Restart() {}
func (s *instantSession) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

type noClicks struct{}

func (noClicks) Clicks(ctx context.Context) <-chan playback.Click {
	return make(chan playback.Click)
}

func waitInit(t *testing.T, e *block.Element) {
	t.Helper()
	select {
	case <-e.Controller().InitDone():
	case <-time.After(3 * time.Second):
		t.Fatal("initialization never settled")
	}
}

func TestAttachRendersAndStartsPlayback(t *testing.T) {
	mount := &fakeMount{}
	renderer := &fakeRenderer{}
	e := block.NewElement("{\"scale\": 2}\nX:1\nA B C", mount, noClicks{}, renderer, instantAudio{}, scoreblock.DefaultSynthConfig(), nil)
	if err := e.Attach(); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if string(mount.content) != "<svg/>" {
		t.Errorf("mount content = %q", mount.content)
	}
	if len(mount.notices) != 0 {
		t.Errorf("unexpected notices: %v", mount.notices)
	}
	if renderer.body != "X:1\nA B C" {
		t.Errorf("renderer got body %q", renderer.body)
	}
	if renderer.options["scale"] != float64(2) {
		t.Errorf("renderer options missing user key: %v", renderer.options)
	}
	waitInit(t, e)
	if got := e.Controller().State(); got != playback.Ready {
		t.Errorf("controller state = %v, want ready", got)
	}
	e.Detach()
}

func TestAttachRecoversMalformedOptions(t *testing.T) {
	mount := &fakeMount{}
	renderer := &fakeRenderer{}
	e := block.NewElement("{oops}\nX:1\nA B C", mount, noClicks{}, renderer, nil, scoreblock.DefaultSynthConfig(), nil)
	if err := e.Attach(); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if len(mount.notices) != 1 || !strings.Contains(mount.notices[0], "invalid options") {
		t.Errorf("expected an inline error notice, got %v", mount.notices)
	}
	// the body still renders with default options
	if string(mount.content) != "<svg/>" {
		t.Errorf("block did not render, content = %q", mount.content)
	}
	if renderer.options["responsive"] != "resize" {
		t.Errorf("expected default options, got %v", renderer.options)
	}
}

func TestAttachIsCalledOnce(t *testing.T) {
	mount := &fakeMount{}
	renderer := &fakeRenderer{}
	e := block.NewElement("X:1\nA", mount, noClicks{}, renderer, nil, scoreblock.DefaultSynthConfig(), nil)
	if err := e.Attach(); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	first := e.Controller()
	if err := e.Attach(); err != nil {
		t.Fatalf("second Attach must be a safe no-op, got %v", err)
	}
	if e.Controller() != first {
		t.Error("second Attach created a new playback session")
	}
}

func TestDetachWithoutAttach(t *testing.T) {
	e := block.NewElement("X:1\nA", &fakeMount{}, noClicks{}, &fakeRenderer{}, nil, scoreblock.DefaultSynthConfig(), nil)
	e.Detach() // must not panic
	e.Detach()
}

func TestDetachTwiceAfterAttach(t *testing.T) {
	mount := &fakeMount{}
	e := block.NewElement("X:1\nA", mount, noClicks{}, &fakeRenderer{}, instantAudio{}, scoreblock.DefaultSynthConfig(), nil)
	if err := e.Attach(); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	waitInit(t, e)
	e.Detach()
	e.Detach()
	if got := e.Controller().State(); got != playback.Unloaded {
		t.Errorf("controller state = %v, want unloaded", got)
	}
}

func TestVisualOnlyWithoutAudio(t *testing.T) {
	mount := &fakeMount{}
	e := block.NewElement("X:1\nA", mount, noClicks{}, &fakeRenderer{}, nil, scoreblock.DefaultSynthConfig(), nil)
	if err := e.Attach(); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	waitInit(t, e)
	if got := e.Controller().State(); got != playback.Uninitialized {
		t.Errorf("controller state = %v, want uninitialized", got)
	}
	e.Detach()
}
