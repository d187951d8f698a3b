package scoreblock

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDI renders the tune as a standard MIDI file (format 0, single track) so
// blocks can be exported to sequencers and notation editors.
func (t Tune) MIDI() ([]byte, error) {
	clock := smf.MetricTicks(960)
	quarter := float64(clock.Ticks4th())

	type event struct {
		tick uint32
		msg  []byte
	}
	var events []event
	for _, n := range t.Notes {
		if n.Rest {
			continue
		}
		on := uint32(n.Start * quarter)
		off := uint32((n.Start + n.Duration) * quarter)
		if off <= on {
			off = on + 1
		}
		key := uint8(clamp(n.Pitch, 0, 127))
		events = append(events,
			event{tick: on, msg: midi.NoteOn(0, key, 100)},
			event{tick: off, msg: midi.NoteOff(0, key)})
	}
	// stable sort keeps note-off before the next note-on of the same tick pair
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	bpm := t.BPM
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))
	if t.Title != "" {
		track.Add(0, smf.MetaTrackSequenceName(t.Title))
	}
	var prev uint32
	for _, e := range events {
		track.Add(e.tick-prev, e.msg)
		prev = e.tick
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = clock
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("could not add track: %w", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("could not write midi file: %w", err)
	}
	return buf.Bytes(), nil
}
