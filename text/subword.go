package text

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"github.com/wbrown/speech_data/types"
	"google.golang.org/protobuf/proto"
)

const pieceSpace = "▁"

// SubwordTokenizer encodes with a sentencepiece model.
type SubwordTokenizer struct {
	sp      sentencepiece.Sentencepiece
	pieces  []string
	control map[types.Token]bool
}

// NewSubwordTokenizerFromFile
// Loads a sentencepiece `.model` file. The model proto is decoded directly
// to recover the piece table used for decoding.
func NewSubwordTokenizerFromFile(path string) (*SubwordTokenizer, error) {
	modelBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model sentencepiece.ModelProto
	if err := proto.Unmarshal(modelBytes, &model); err != nil {
		return nil, errors.Wrapf(err, "cannot decode sentencepiece model %s",
			path)
	}
	if len(model.GetPieces()) == 0 {
		return nil, errors.Errorf("sentencepiece model %s has no pieces", path)
	}
	sp, err := sentencepiece.NewSentencepieceFromFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load sentencepiece model %s",
			path)
	}
	pieces := make([]string, len(model.GetPieces()))
	control := make(map[types.Token]bool)
	for pieceIdx, piece := range model.GetPieces() {
		pieces[pieceIdx] = piece.GetPiece()
		switch piece.GetType() {
		case sentencepiece.ModelProto_SentencePiece_CONTROL,
			sentencepiece.ModelProto_SentencePiece_UNKNOWN:
			control[types.Token(pieceIdx)] = true
		}
	}
	return &SubwordTokenizer{sp: sp, pieces: pieces, control: control}, nil
}

func (t *SubwordTokenizer) Encode(text string) types.Tokens {
	pieces := t.sp.Tokenize(text)
	tokens := make(types.Tokens, 0, len(pieces)+1)
	for _, piece := range pieces {
		tokens = append(tokens, types.Token(piece.ID))
	}
	return append(tokens, EosIdx)
}

func (t *SubwordTokenizer) Decode(tokens types.Tokens) string {
	var sb strings.Builder
	for _, token := range tokens {
		if token == EosIdx {
			break
		} else if token == PadIdx || t.control[token] ||
			int(token) >= len(t.pieces) {
			continue
		}
		sb.WriteString(t.pieces[token])
	}
	return strings.TrimSpace(strings.ReplaceAll(sb.String(), pieceSpace, " "))
}

func (t *SubwordTokenizer) VocabSize() int { return len(t.pieces) }

func (t *SubwordTokenizer) TokenType() string { return "subword" }
