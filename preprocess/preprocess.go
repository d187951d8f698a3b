// Package preprocess implements the directive preprocessing pipeline that
// transforms a raw notation block before it is handed to the renderer: it
// extracts the leading options annotation, expands registered presets and
// expands user-defined macros.
package preprocess

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jlaakso/scoreblock"
)

var (
	// optionsPattern splits a leading JSON-like annotation from the notation
	// body. If it does not match, the entire input is body.
	optionsPattern = regexp.MustCompile(`(?s)^\s*(?P<options>\{.*?\})[ \t]*\n?(?P<source>.*)$`)

	// presetPattern matches a whole preset directive line: %%preset <name>
	presetPattern = regexp.MustCompile(`(?m)^%%preset[ \t]+(\w+)[ \t]*$`)

	// macroPattern matches a macro definition line: m: <name> = <expansion>
	macroPattern = regexp.MustCompile(`(?m)^m:[ \t]*(.+?)[ \t]*=[ \t]*(.*?)[ \t]*$`)

	// headerPattern matches header/metadata lines (a single letter followed
	// by a colon, or a percent sign) that are exempt from macro substitution.
	headerPattern = regexp.MustCompile(`^([A-Za-z]:|%)`)
)

// DefaultOptions returns the fixed option defaults a block starts from; user
// options from the annotation override these key by key.
func DefaultOptions() scoreblock.Options {
	return scoreblock.Options{
		"add_classes": true,
		"responsive":  "resize",
	}
}

// Process splits the raw source into its options annotation and notation
// body. The returned options are the defaults merged with the parsed payload,
// user keys winning. A malformed payload is a recoverable condition: the
// error describes it, but the body is still returned with the annotation
// stripped and the options fall back to the defaults. Process never fails the
// render.
func Process(raw string) (scoreblock.Options, string, error) {
	options := DefaultOptions()
	m := optionsPattern.FindStringSubmatch(raw)
	if m == nil {
		return options, raw, nil
	}
	payload := m[optionsPattern.SubexpIndex("options")]
	body := m[optionsPattern.SubexpIndex("source")]
	parsed := gjson.Parse(payload)
	if !gjson.Valid(payload) || !parsed.IsObject() {
		return options, body, fmt.Errorf("malformed options annotation %q", payload)
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		options[key.String()] = value.Value()
		return true
	})
	return options, body, nil
}

// ExpandDirectives runs both substitution passes over the body: presets
// first, then macros collected from the preset-expanded text. Unknown preset
// names and unmatched macros are no-ops, never errors.
func ExpandDirectives(body string) string {
	body = expandPresets(body)
	return expandMacros(body, collectMacros(body))
}

// expandPresets replaces every registered preset directive line with its
// stored block, verbatim. The replacement is a single pass: expanded preset
// text is not rescanned for further directives. Unregistered names leave the
// line unchanged.
func expandPresets(body string) string {
	return presetPattern.ReplaceAllStringFunc(body, func(line string) string {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "%%preset"))
		if fragment, ok := registry[name]; ok {
			return fragment
		}
		return line
	})
}

// macro is one user-defined substitution rule.
type macro struct {
	name      string
	expansion string
}

// collectMacros scans the body for macro definition lines and returns the
// macro table in first-to-last textual order. A later definition of the same
// name overwrites the expansion but keeps the original table position, so
// expansion order stays stable.
func collectMacros(body string) []macro {
	var table []macro
	for _, m := range macroPattern.FindAllStringSubmatch(body, -1) {
		name, expansion := m[1], m[2]
		if i := slices.IndexFunc(table, func(e macro) bool { return e.name == name }); i >= 0 {
			table[i].expansion = expansion
			continue
		}
		table = append(table, macro{name: name, expansion: expansion})
	}
	return table
}

// expandMacros applies each macro to every non-header line, in table order.
// Substitution is literal: a macro name that happens to be a substring of
// unrelated text will also match. Because the passes run sequentially, one
// macro's expansion text can be further altered by a later macro; both
// behaviors are part of the contract.
func expandMacros(body string, table []macro) string {
	if len(table) == 0 {
		return body
	}
	lines := strings.Split(body, "\n")
	for _, m := range table {
		for i, line := range lines {
			if headerPattern.MatchString(line) {
				continue
			}
			lines[i] = strings.ReplaceAll(line, m.name, m.expansion)
		}
	}
	return strings.Join(lines, "\n")
}
