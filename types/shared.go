package types

import (
	"fmt"
	"strings"
)

type Token uint32
type Tokens []Token

// Sample
// A single manifest entry after preprocessing: the audio identifier taken
// from the first manifest field, and the token ids of its transcript.
type Sample struct {
	ID     string
	Tokens Tokens
}

// Mode selects between training and evaluation collation policies.
type Mode uint8

const (
	ModeTrain Mode = iota
	ModeEval
)

func (m Mode) String() string {
	switch m {
	case ModeTrain:
		return "train"
	case ModeEval:
		return "eval"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode
// Accepts `train`, or any of `eval`, `dev`, `test` for evaluation.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "train":
		return ModeTrain, nil
	case "eval", "dev", "test":
		return ModeEval, nil
	}
	return ModeEval, fmt.Errorf("unknown mode: %q", s)
}
