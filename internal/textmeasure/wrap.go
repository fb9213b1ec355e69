// File: internal/textmeasure/wrap.go
package textmeasure

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks text into lines no wider than maxWidth. Hard line breaks are
// kept, runs of white space collapse to one space, and a word wider than
// maxWidth is split between runes. A non-positive maxWidth disables wrapping.
func Wrap(text string, maxWidth float32, advance func(string) float32) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(para, maxWidth, advance)...)
	}
	return lines
}

func wrapParagraph(para string, maxWidth float32, advance func(string) float32) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if advance(candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for advance(word) > maxWidth {
			cut := fitPrefix(word, maxWidth, advance)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		line = word
	}
	if line == "" {
		// The last word was consumed by the rune split.
		return lines
	}
	return append(lines, line)
}

// fitPrefix returns the byte length of the longest prefix of s that fits,
// never less than one rune so wrapping always makes progress.
func fitPrefix(s string, maxWidth float32, advance func(string) float32) int {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if advance(s[:next]) > maxWidth {
			break
		}
		end = next
	}
	if end == 0 {
		_, end = utf8.DecodeRuneInString(s)
	}
	return end
}
