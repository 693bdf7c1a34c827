package text

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/wbrown/speech_data/types"
)

// CharacterTokenizer maps each rune of a transcript to an id.
type CharacterTokenizer struct {
	vocab []string
	index map[rune]types.Token
}

// NewCharacterTokenizer
// Builds a tokenizer whose vocabulary is the reserved symbols followed by
// `symbols`, each of which must be exactly one rune.
func NewCharacterTokenizer(symbols []string) (*CharacterTokenizer, error) {
	vocab := append(append([]string{}, reservedSymbols...), symbols...)
	index := make(map[rune]types.Token, len(symbols))
	for idx, symbol := range symbols {
		if utf8.RuneCountInString(symbol) != 1 {
			return nil, errors.Errorf(
				"character vocab entry %d is not a single character: %q",
				idx, symbol)
		}
		r, _ := utf8.DecodeRuneInString(symbol)
		if _, dup := index[r]; dup {
			return nil, errors.Errorf("duplicate character vocab entry %q",
				symbol)
		}
		index[r] = types.Token(len(reservedSymbols) + idx)
	}
	return &CharacterTokenizer{vocab: vocab, index: index}, nil
}

// NewCharacterTokenizerFromFile reads one character per line.
func NewCharacterTokenizerFromFile(path string) (*CharacterTokenizer, error) {
	lines, err := readVocabLines(path)
	if err != nil {
		return nil, err
	}
	return NewCharacterTokenizer(lines)
}

func (t *CharacterTokenizer) Encode(text string) types.Tokens {
	tokens := make(types.Tokens, 0, len(text)+1)
	for _, r := range text {
		if token, ok := t.index[r]; ok {
			tokens = append(tokens, token)
		} else {
			tokens = append(tokens, UnkIdx)
		}
	}
	return append(tokens, EosIdx)
}

func (t *CharacterTokenizer) Decode(tokens types.Tokens) string {
	return decodeSymbols(tokens, t.vocab, "")
}

func (t *CharacterTokenizer) VocabSize() int { return len(t.vocab) }

func (t *CharacterTokenizer) TokenType() string { return "character" }
