package text

import (
	"github.com/pkg/errors"
	"github.com/wbrown/speech_data/types"
)

// WordTokenizer maps whole words to ids.
type WordTokenizer struct {
	vocab    []string
	index    map[string]types.Token
	splitter Splitter
}

func NewWordTokenizer(words []string, splitter Splitter) (*WordTokenizer,
	error) {
	if splitter == nil {
		splitter = WhitespaceSplitter{}
	}
	vocab := append(append([]string{}, reservedSymbols...), words...)
	index := make(map[string]types.Token, len(words))
	for idx, word := range words {
		if _, dup := index[word]; dup {
			return nil, errors.Errorf("duplicate word vocab entry %q", word)
		}
		index[word] = types.Token(len(reservedSymbols) + idx)
	}
	return &WordTokenizer{vocab: vocab, index: index, splitter: splitter}, nil
}

// NewWordTokenizerFromFile reads one word per line.
func NewWordTokenizerFromFile(path string, splitter Splitter) (*WordTokenizer,
	error) {
	lines, err := readVocabLines(path)
	if err != nil {
		return nil, err
	}
	return NewWordTokenizer(lines, splitter)
}

func (t *WordTokenizer) Encode(text string) types.Tokens {
	words := t.splitter.Split(text)
	tokens := make(types.Tokens, 0, len(words)+1)
	for _, word := range words {
		if token, ok := t.index[word]; ok {
			tokens = append(tokens, token)
		} else {
			tokens = append(tokens, UnkIdx)
		}
	}
	return append(tokens, EosIdx)
}

func (t *WordTokenizer) Decode(tokens types.Tokens) string {
	return decodeSymbols(tokens, t.vocab, " ")
}

func (t *WordTokenizer) VocabSize() int { return len(t.vocab) }

func (t *WordTokenizer) TokenType() string { return "word" }
