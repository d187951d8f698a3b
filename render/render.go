// Package render contains the default notation renderer: it parses the
// expanded body into a tune and engraves it onto a five-line staff as SVG.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/jlaakso/scoreblock"
	"github.com/jlaakso/scoreblock/notation"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Engraver implements scoreblock.Renderer with an SVG template.
type Engraver struct {
	tmpl *template.Template
}

func NewEngraver() (*Engraver, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("could not create the templates: %w", err)
	}
	return &Engraver{tmpl: tmpl}, nil
}

// Render parses the body and engraves it. The returned result carries both
// the SVG and the tune handed onwards to the playback controller.
func (e *Engraver) Render(body string, options scoreblock.Options) (scoreblock.RenderResult, error) {
	tune := notation.Parse(body)
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, "score.tmpl", layoutTune(tune, options)); err != nil {
		return scoreblock.RenderResult{}, fmt.Errorf("could not engrave tune: %w", err)
	}
	return scoreblock.RenderResult{Tune: tune, SVG: buf.Bytes()}, nil
}

type (
	// geometry is everything the SVG template needs to draw one tune.
	geometry struct {
		Title      string
		Width      int
		Height     int
		StaffYs    []int
		Heads      []head
		AddClasses bool
		Responsive bool
	}

	head struct {
		X, Y    int
		Hollow  bool  // half note or longer
		Ledgers []int // y coordinates of ledger lines through or next to the head
	}
)

const (
	lineGap    = 8  // gap between staff lines
	headStep   = 10 // horizontal advance per note
	leftMargin = 20
	topMargin  = 32
	staffLines = 5
)

// layoutTune computes note head positions on the staff. The vertical position
// follows the diatonic step of the pitch; the bottom staff line is E4.
func layoutTune(tune scoreblock.Tune, options scoreblock.Options) geometry {
	g := geometry{Title: tune.Title}
	if v, ok := options["add_classes"].(bool); ok {
		g.AddClasses = v
	}
	if _, ok := options["responsive"].(string); ok {
		g.Responsive = true
	}
	for i := 0; i < staffLines; i++ {
		g.StaffYs = append(g.StaffYs, topMargin+i*lineGap)
	}
	bottom := topMargin + (staffLines-1)*lineGap // y of the bottom line, E4
	x := leftMargin
	for _, n := range tune.Notes {
		if n.Rest {
			x += headStep
			continue
		}
		step := diatonicStep(n.Pitch) - diatonicStep(64) // steps above E4
		y := bottom - step*lineGap/2
		h := head{X: x, Y: y, Hollow: n.Duration >= 2}
		for ly := bottom + lineGap; ly <= y; ly += lineGap {
			h.Ledgers = append(h.Ledgers, ly) // below the staff
		}
		for ly := topMargin - lineGap; ly >= y; ly -= lineGap {
			h.Ledgers = append(h.Ledgers, ly) // above the staff
		}
		g.Heads = append(g.Heads, h)
		x += headStep
	}
	g.Width = x + leftMargin
	g.Height = bottom + topMargin
	return g
}

// diatonicStep maps a MIDI pitch to its diatonic step number (white-key
// index); accidentals land on the same step as their natural.
func diatonicStep(pitch int) int {
	steps := [12]int{0, 0, 1, 1, 2, 3, 3, 4, 4, 5, 5, 6}
	return (pitch/12)*7 + steps[pitch%12]
}
