package text

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/wbrown/speech_data/resources"
	"github.com/wbrown/speech_data/types"
)

// Reserved ids shared by the character and word tokenizers. Subword models
// are expected to be trained with the same pad and eos ids.
const (
	PadIdx types.Token = 0
	EosIdx types.Token = 1
	UnkIdx types.Token = 2
)

var reservedSymbols = []string{"<pad>", "<eos>", "<unk>"}

// Tokenizer encodes transcripts into token ids and back.
type Tokenizer interface {
	Encode(text string) types.Tokens
	Decode(tokens types.Tokens) string
	VocabSize() int
	TokenType() string
}

// TokenizerConfig
// Selects and locates a tokenizer. VocabFile may be a local path or an
// http(s) URL, in which case it is downloaded into CacheDir.
type TokenizerConfig struct {
	Mode      string `yaml:"mode"`
	VocabFile string `yaml:"vocab_file"`
	Split     string `yaml:"split"`
	CacheDir  string `yaml:"cache_dir"`
}

// LoadTokenizer
// Builds the tokenizer named by cfg.Mode: `character`, `word` or `subword`.
func LoadTokenizer(cfg TokenizerConfig) (Tokenizer, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "character", "word", "subword":
	default:
		return nil, errors.Errorf("unsupported tokenizer mode: %q", cfg.Mode)
	}
	if cfg.VocabFile == "" {
		return nil, errors.Errorf("tokenizer mode %s requires a vocab_file",
			mode)
	}
	vocabPath, err := resolveVocab(cfg.VocabFile, cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	switch mode {
	case "character":
		return NewCharacterTokenizerFromFile(vocabPath)
	case "word":
		splitter, splitErr := NewSplitter(cfg.Split)
		if splitErr != nil {
			return nil, splitErr
		}
		return NewWordTokenizerFromFile(vocabPath, splitter)
	default:
		return NewSubwordTokenizerFromFile(vocabPath)
	}
}

func resolveVocab(vocabFile string, cacheDir string) (string, error) {
	uri, rsrc := ".", vocabFile
	if slash := strings.LastIndex(vocabFile, "/"); slash >= 0 {
		uri, rsrc = vocabFile[:slash], vocabFile[slash+1:]
		if uri == "" {
			uri = "/"
		}
	}
	return resources.Resolve(uri, rsrc, cacheDir)
}

// readVocabLines returns every non-empty line of the file. Lines are not
// trimmed, since a single space is a valid character symbol.
func readVocabLines(path string) ([]string, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	lines := make([]string, 0)
	scanner := bufio.NewScanner(handle)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.Errorf("vocab file %s is empty", path)
	}
	return lines, nil
}

// decodeSymbols joins symbols for the given tokens, skipping padding and
// stopping at the first end of sequence.
func decodeSymbols(tokens types.Tokens, vocab []string, sep string) string {
	symbols := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == PadIdx {
			continue
		} else if token == EosIdx {
			break
		} else if int(token) < len(vocab) {
			symbols = append(symbols, vocab[token])
		}
	}
	return strings.Join(symbols, sep)
}
