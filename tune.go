package scoreblock

type (
	// Note is a single event in a Tune. Start and Duration are measured in
	// beats (quarter notes) from the start of the tune, so they are
	// independent of the playback tempo.
	Note struct {
		Pitch    int     // MIDI semitone number; ignored for rests
		Start    float64 // onset, in beats
		Duration float64 // length, in beats
		Rest     bool
	}

	// Tune is the structured in-memory representation of a parsed score. It
	// is produced by the notation parser, drawn by the renderer, synthesized
	// by the audio engine and exported to MIDI. Notes are ordered by Start.
	Tune struct {
		Title string
		BPM   float64
		Notes []Note
	}

	// Options is the per-block option mapping handed to the renderer. It is
	// parsed once per render pass from the block's leading annotation and
	// discarded afterwards.
	Options map[string]any

	// SynthConfig is the fixed synthesis configuration used when initializing
	// the audio engine for a block.
	SynthConfig struct {
		SampleRate  int     `yaml:"samplerate"`
		NumChannels int     `yaml:"numchannels"`
		Gain        float32 `yaml:"gain"`
		Ramp        float64 `yaml:"ramp"` // attack/release ramp, in seconds
	}
)

const DefaultBPM = 120

func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		SampleRate:  44100,
		NumChannels: 2,
		Gain:        0.4,
		Ramp:        0.01,
	}
}

// Beats returns the total length of the tune in beats.
func (t Tune) Beats() float64 {
	var end float64
	for _, n := range t.Notes {
		if e := n.Start + n.Duration; e > end {
			end = e
		}
	}
	return end
}

// Seconds returns the total length of the tune in seconds at its tempo.
func (t Tune) Seconds() float64 {
	bpm := t.BPM
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return t.Beats() * 60 / bpm
}
