// Package text holds the text side of the data pipeline: transforms that
// normalize raw transcripts, and tokenizers that turn them into token ids.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TextTransform rewrites a raw transcript before tokenization.
type TextTransform interface {
	Transform(text string) string
}

// TransformFunc adapts a plain function to TextTransform.
type TransformFunc func(string) string

func (f TransformFunc) Transform(text string) string { return f(text) }

// Identity leaves text untouched.
var Identity = TransformFunc(func(text string) string { return text })

// Stacked applies each transform in order.
type Stacked []TextTransform

func (s Stacked) Transform(text string) string {
	for _, transform := range s {
		text = transform.Transform(text)
	}
	return text
}

// Normalizer
// Applies NFKC unicode normalization followed by language aware lower
// casing.
type Normalizer struct {
	tag language.Tag
}

func NewNormalizer(tag language.Tag) *Normalizer {
	return &Normalizer{tag: tag}
}

func (n *Normalizer) Transform(text string) string {
	// A Caser is stateful, so one is made per call.
	return cases.Lower(n.tag).String(norm.NFKC.String(text))
}

// AlphabetFilter
// Replaces every rune that Keep rejects with a space, then collapses runs of
// whitespace into single spaces and trims the ends.
type AlphabetFilter struct {
	Keep func(r rune) bool
}

func (f AlphabetFilter) Transform(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || !f.Keep(r) {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

// SwahiliAlphabet keeps lower case latin letters, digits and apostrophes.
func SwahiliAlphabet(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\''
}

// NewSwahiliTransform
// The transcript normalization used for Swahili corpora: sanitize
// whitespace, normalize and lower case, then drop anything outside the
// alphabet.
func NewSwahiliTransform() TextTransform {
	return Stacked{
		Sanitizer{},
		NewNormalizer(language.Swahili),
		AlphabetFilter{Keep: SwahiliAlphabet},
	}
}
