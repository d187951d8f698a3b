package preprocess_test

import (
	"strings"
	"testing"

	"github.com/jlaakso/scoreblock/preprocess"
)

func TestProcessWellFormedOptions(t *testing.T) {
	raw := "{ \"responsive\": \"none\", \"scale\": 1.5 }\nX:1\nA B C"
	options, body, err := preprocess.Process(raw)
	if err != nil {
		t.Fatalf("Process returned error for well-formed options: %v", err)
	}
	if body != "X:1\nA B C" {
		t.Errorf("body mismatch, got %q", body)
	}
	// user keys win over defaults
	if options["responsive"] != "none" {
		t.Errorf("user option did not override default, got %v", options["responsive"])
	}
	if options["scale"] != 1.5 {
		t.Errorf("user option missing, got %v", options["scale"])
	}
	// untouched defaults survive the merge
	if options["add_classes"] != true {
		t.Errorf("default option lost, got %v", options["add_classes"])
	}
}

func TestProcessNoAnnotation(t *testing.T) {
	raw := "X:1\nA B C"
	options, body, err := preprocess.Process(raw)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if body != raw {
		t.Errorf("entire input should be body, got %q", body)
	}
	if options["add_classes"] != true || options["responsive"] != "resize" {
		t.Errorf("expected defaults, got %v", options)
	}
}

func TestProcessMalformedOptions(t *testing.T) {
	raw := "{ not valid json }\nX:1\nA B C"
	options, body, err := preprocess.Process(raw)
	if err == nil {
		t.Fatal("expected a recoverable error for malformed options")
	}
	if body != "X:1\nA B C" {
		t.Errorf("body must still be recoverable, got %q", body)
	}
	if options["add_classes"] != true || options["responsive"] != "resize" {
		t.Errorf("expected defaults after malformed options, got %v", options)
	}
	if len(options) != 2 {
		t.Errorf("expected exactly the defaults, got %v", options)
	}
}

func TestExpandPresetRegistered(t *testing.T) {
	fragment, ok := preprocess.Preset("drums")
	if !ok {
		t.Fatal("drums preset should be registered")
	}
	got := preprocess.ExpandDirectives("%%preset drums\nA B C")
	want := fragment + "\nA B C"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	// single pass: reprocessing the output is a no-op
	if again := preprocess.ExpandDirectives(got); again != got {
		t.Errorf("reprocessing changed the output:\n%s", again)
	}
}

func TestExpandPresetUnregistered(t *testing.T) {
	body := "%%preset nosuchthing\nA B C"
	if got := preprocess.ExpandDirectives(body); got != body {
		t.Errorf("unregistered preset line must stay verbatim, got %q", got)
	}
}

func TestMacroSequentialOrder(t *testing.T) {
	// first pass replaces a->1, second pass replaces b->a; the passes run in
	// definition order, so the result is order-dependent on purpose
	body := "m: a = 1\nm: b = a\na b"
	got := preprocess.ExpandDirectives(body)
	lines := strings.Split(got, "\n")
	if lines[2] != "1 a" {
		t.Errorf("got %q, want %q", lines[2], "1 a")
	}
}

func TestMacroLastWriteWins(t *testing.T) {
	body := "m: x = first\nm: x = second\nx"
	got := preprocess.ExpandDirectives(body)
	lines := strings.Split(got, "\n")
	if lines[2] != "second" {
		t.Errorf("got %q, want %q", lines[2], "second")
	}
}

func TestMacroSkipsHeaderLines(t *testing.T) {
	body := "m: C = Q\nK: C major\n%C stays here\nC D C"
	got := preprocess.ExpandDirectives(body)
	lines := strings.Split(got, "\n")
	if lines[1] != "K: C major" {
		t.Errorf("header line was altered: %q", lines[1])
	}
	if lines[2] != "%C stays here" {
		t.Errorf("percent line was altered: %q", lines[2])
	}
	if lines[3] != "Q D Q" {
		t.Errorf("notation line not expanded, got %q", lines[3])
	}
}

func TestMacroLiteralSubstringMatch(t *testing.T) {
	// substitution is literal by contract: a macro name inside unrelated
	// text matches too
	body := "m: do = re\nw dot w"
	got := preprocess.ExpandDirectives(body)
	lines := strings.Split(got, "\n")
	if lines[1] != "w ret w" {
		t.Errorf("got %q, want %q", lines[1], "w ret w")
	}
}

func TestMacroDefinitionLinesUntouched(t *testing.T) {
	// definition lines start with m: and are header lines themselves
	body := "m: a = 1\na"
	got := preprocess.ExpandDirectives(body)
	lines := strings.Split(got, "\n")
	if lines[0] != "m: a = 1" {
		t.Errorf("definition line was altered: %q", lines[0])
	}
}

func TestPresetNames(t *testing.T) {
	names := preprocess.PresetNames()
	if len(names) == 0 {
		t.Fatal("no presets registered")
	}
	for _, want := range []string{"bass", "drums", "waltz"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("preset %q missing from %v", want, names)
		}
	}
}
