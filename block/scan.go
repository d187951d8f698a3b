package block

import "strings"

// Language is the fenced code block tag marking notation blocks in documents.
const Language = "music-abc"

// ScanBlocks returns the contents of all fenced code blocks in the document
// tagged with the given language. An unterminated fence runs to the end of
// the document, matching how hosts render dangling blocks while the user is
// still typing.
func ScanBlocks(document, lang string) []string {
	var blocks []string
	var current []string
	inBlock := false
	for _, line := range strings.Split(document, "\n") {
		trimmed := strings.TrimSpace(line)
		if inBlock {
			if trimmed == "```" {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
				inBlock = false
			} else {
				current = append(current, line)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") && strings.TrimSpace(strings.TrimPrefix(trimmed, "```")) == lang {
			inBlock = true
		}
	}
	if inBlock {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}
