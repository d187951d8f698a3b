// Package notation parses a subset of ABC notation text into a
// scoreblock.Tune. The parser is deliberately forgiving: unknown characters
// and unparseable fields are skipped, and Parse never fails; malformed
// notation just yields fewer notes.
package notation

import (
	"strconv"
	"strings"

	"github.com/jlaakso/scoreblock"
)

// pitchOffsets maps note letters to semitone offsets from C.
var pitchOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

const middleC = 60 // ABC uppercase C is middle C

// Parse reads ABC-subset notation and returns the tune it describes.
// Supported: X:/T:/Q:/L: headers, notes A-G a-g with ^ _ = accidentals,
// octave marks , and ', length suffixes (n, /, /n, n/m), rests z, chords in
// [ ], bar lines. Lines starting with % are comments.
func Parse(body string) scoreblock.Tune {
	p := parser{
		tune: scoreblock.Tune{BPM: scoreblock.DefaultBPM},
		unit: 0.125, // ABC default unit note length, as a fraction of a whole note
	}
	for _, line := range strings.Split(body, "\n") {
		p.parseLine(line)
	}
	return p.tune
}

type parser struct {
	tune scoreblock.Tune
	unit float64 // unit note length as a fraction of a whole note
	beat float64 // current position, in beats

	inChord    bool
	chordStart float64
	chordMax   float64
}

func (p *parser) parseLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "%") {
		return
	}
	if len(trimmed) >= 2 && trimmed[1] == ':' && isLetter(trimmed[0]) {
		p.parseHeader(trimmed[0], strings.TrimSpace(trimmed[2:]))
		return
	}
	p.parseNotes(trimmed)
}

func (p *parser) parseHeader(field byte, value string) {
	switch field {
	case 'T':
		if p.tune.Title == "" {
			p.tune.Title = value
		}
	case 'Q':
		// either a bare number or <fraction>=<number>
		if i := strings.IndexByte(value, '='); i >= 0 {
			value = strings.TrimSpace(value[i+1:])
		}
		if bpm, err := strconv.ParseFloat(value, 64); err == nil && bpm > 0 {
			p.tune.BPM = bpm
		}
	case 'L':
		if f, ok := parseFraction(value); ok && f > 0 {
			p.unit = f
		}
	default:
		// X:, M:, K: and friends carry no playback information we use
	}
}

func (p *parser) parseNotes(line string) {
	accidental := 0
	hasAccidental := false
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == '^':
			accidental, hasAccidental = accidental+1, true
			i++
		case c == '_':
			accidental, hasAccidental = accidental-1, true
			i++
		case c == '=':
			accidental, hasAccidental = 0, true
			i++
		case c == '[':
			p.inChord = true
			p.chordStart = p.beat
			p.chordMax = 0
			i++
		case c == ']':
			if p.inChord {
				p.inChord = false
				p.beat = p.chordStart + p.chordMax
			}
			i++
		case c == 'z' || c == 'Z':
			length, n := p.parseLength(line[i+1:])
			p.addNote(scoreblock.Note{Rest: true, Start: p.beat, Duration: length})
			i += 1 + n
		case isNoteLetter(c):
			pitch := p.pitch(c)
			i++
			for i < len(line) && (line[i] == ',' || line[i] == '\'') {
				if line[i] == ',' {
					pitch -= 12
				} else {
					pitch += 12
				}
				i++
			}
			if hasAccidental {
				pitch += accidental
			}
			length, n := p.parseLength(line[i:])
			i += n
			p.addNote(scoreblock.Note{Pitch: pitch, Start: p.beat, Duration: length})
			accidental, hasAccidental = 0, false
		default:
			// bar lines, spaces, decorations: no playback meaning
			accidental, hasAccidental = 0, false
			i++
		}
	}
}

func (p *parser) addNote(n scoreblock.Note) {
	if p.inChord {
		n.Start = p.chordStart
		if n.Duration > p.chordMax {
			p.chordMax = n.Duration
		}
	} else {
		p.beat += n.Duration
	}
	p.tune.Notes = append(p.tune.Notes, n)
}

func (p *parser) pitch(c byte) int {
	if c >= 'a' && c <= 'g' {
		return middleC + 12 + pitchOffsets[c-'a'+'A']
	}
	return middleC + pitchOffsets[c]
}

// parseLength reads an optional length suffix (e.g. "2", "/", "/4", "3/2")
// and returns the note duration in beats plus the number of bytes consumed.
func (p *parser) parseLength(s string) (float64, int) {
	num, den := 1, 1
	i := 0
	if d, n := readInt(s[i:]); n > 0 {
		num = d
		i += n
	}
	for i < len(s) && s[i] == '/' {
		i++
		if d, n := readInt(s[i:]); n > 0 {
			den *= d
			i += n
		} else {
			den *= 2
		}
	}
	// a whole note is four beats
	return p.unit * 4 * float64(num) / float64(den), i
}

func readInt(s string) (int, int) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, 0
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, 0
	}
	return v, i
}

func parseFraction(s string) (float64, bool) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	den := 1
	if len(parts) == 2 {
		den, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || den == 0 {
			return 0, false
		}
	}
	return float64(num) / float64(den), true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNoteLetter(c byte) bool {
	return (c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g')
}
