// Package synth renders a Tune into raw PCM with simple additive sine
// voices. It is the default engine backend; anything fancier hides behind the
// scoreblock.Engine interface.
package synth

import (
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/jlaakso/scoreblock"
)

// Render synthesizes the tune into an interleaved float32 buffer with the
// sample rate, channel count and gain of the config. The same mono signal is
// written to every channel.
func Render(tune scoreblock.Tune, config scoreblock.SynthConfig) []float32 {
	rate := float64(config.SampleRate)
	bpm := tune.BPM
	if bpm <= 0 {
		bpm = scoreblock.DefaultBPM
	}
	secondsPerBeat := 60 / bpm
	frames := 0
	if beats := tune.Beats(); beats > 0 {
		// a little tail so release ramps are not cut off
		frames = int(beats*secondsPerBeat*rate) + int(config.Ramp*rate)
	}
	mono := make([]float32, frames)
	if frames == 0 {
		return mono
	}

	ramp := int(config.Ramp * rate)
	voice := make([]float32, 0, frames)
	for _, n := range tune.Notes {
		if n.Rest {
			continue
		}
		start := int(n.Start * secondsPerBeat * rate)
		length := int(n.Duration*secondsPerBeat*rate) + ramp
		if start >= frames {
			continue
		}
		if start+length > frames {
			length = frames - start
		}
		if length <= 0 {
			continue
		}
		voice = tone(voice[:0], n.Pitch, length, ramp, rate)
		vek32.Add_Inplace(mono[start:start+length], voice)
	}
	vek32.MulNumber_Inplace(mono, config.Gain)
	for i, v := range mono { // hard clip, voices can stack past unity
		if v > 1 {
			mono[i] = 1
		} else if v < -1 {
			mono[i] = -1
		}
	}

	if config.NumChannels <= 1 {
		return mono
	}
	out := make([]float32, frames*config.NumChannels)
	for i, v := range mono {
		for c := 0; c < config.NumChannels; c++ {
			out[i*config.NumChannels+c] = v
		}
	}
	return out
}

// tone appends one sine voice with linear attack and release ramps to dst.
func tone(dst []float32, pitch, length, ramp int, rate float64) []float32 {
	freq := 440 * math.Pow(2, float64(pitch-69)/12)
	step := 2 * math.Pi * freq / rate
	for i := 0; i < length; i++ {
		v := float32(math.Sin(float64(i) * step))
		if ramp > 0 {
			if i < ramp {
				v *= float32(i) / float32(ramp)
			}
			if tail := length - i; tail < ramp {
				v *= float32(tail) / float32(ramp)
			}
		}
		dst = append(dst, v)
	}
	return dst
}
