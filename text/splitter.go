package text

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
)

// Splitter breaks a transcript into words.
type Splitter interface {
	Split(text string) []string
}

// WhitespaceSplitter splits on runs of whitespace.
type WhitespaceSplitter struct{}

func (WhitespaceSplitter) Split(text string) []string {
	return strings.Fields(text)
}

// ProseSplitter
// Splits with prose's tokenizer, which separates punctuation and
// contractions from the words they are attached to. Text prose cannot
// handle falls back to whitespace splitting.
type ProseSplitter struct{}

func (ProseSplitter) Split(text string) []string {
	doc, err := prose.NewDocument(
		text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return strings.Fields(text)
	}
	tokens := doc.Tokens()
	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		words = append(words, token.Text)
	}
	return words
}

// NewSplitter
// Returns the splitter named by `name`: "" or `whitespace`, or `prose`.
func NewSplitter(name string) (Splitter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "whitespace":
		return WhitespaceSplitter{}, nil
	case "prose":
		return ProseSplitter{}, nil
	}
	return nil, errors.Errorf("unknown word splitter: %q", name)
}
