package scoreblock

type (
	// Renderer turns expanded notation text into graphics and a playable
	// Tune. Errors from malformed notation are the renderer's own
	// responsibility; the preprocessor only guarantees syntactically-intact
	// text.
	Renderer interface {
		Render(body string, options Options) (RenderResult, error)
	}

	// RenderResult is the outcome of one render pass: the drawn score and the
	// primary tune object fed to the playback controller.
	RenderResult struct {
		Tune Tune
		SVG  []byte
	}
)
