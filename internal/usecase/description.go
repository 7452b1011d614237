package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	lineBreakRegex  = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRegex    = regexp.MustCompile(`</?[^>]+(>|$)`)
	newlineRunRegex = regexp.MustCompile(`\n+`)
)

// NormalizeDescription turns a product description fragment into plain text.
// Only the content before the second line break is kept; the remaining
// breaks become newlines and every other tag is dropped.
func NormalizeDescription(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	if breaks := lineBreakRegex.FindAllStringIndex(text, 2); len(breaks) == 2 {
		text = text[:breaks[1][0]]
	}

	text = lineBreakRegex.ReplaceAllString(text, "\n")
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = newlineRunRegex.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}
