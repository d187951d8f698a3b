package oto

import "math"

// FloatBufferTo16BitLE converts a []float32 buffer to 16-bit little-endian
// samples, appending to the given byte slice so callers can reuse capacity.
func FloatBufferTo16BitLE(buff []float32, to []byte) []byte {
	for _, v := range buff {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		to = append(to, byte(uv&255), byte(uv>>8))
	}
	return to
}
