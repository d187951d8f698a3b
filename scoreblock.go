// Package scoreblock renders embedded music-notation blocks inside documents
// into visual scores with interactive audio playback.
//
// The root package holds the domain types (Tune, Note, Options, SynthConfig)
// and the narrow capability interfaces (Engine, Transport, AudioContext,
// Renderer) that the rest of the repository is built against. The interesting
// logic lives in the subpackages: preprocess (directive expansion), playback
// (the per-block playback controller), block (the attach/detach lifecycle
// element), notation (the ABC-subset parser), render (the default SVG
// engraver), synth and oto (the default audio backend).
package scoreblock

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
