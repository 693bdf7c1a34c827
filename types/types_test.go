package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"train", " TRAIN "} {
		mode, err := ParseMode(s)
		assert.NoError(t, err)
		assert.Equal(t, ModeTrain, mode)
	}
	for _, s := range []string{"eval", "dev", "test"} {
		mode, err := ParseMode(s)
		assert.NoError(t, err)
		assert.Equal(t, ModeEval, mode)
	}
	_, err := ParseMode("finetune")
	assert.Error(t, err)
}

func TestTokensConversions(t *testing.T) {
	tokens := TokensFromInts([]int{3, -1, 7, 0})
	assert.Equal(t, Tokens{3, 7, 0}, tokens)
	assert.Equal(t, []int64{3, 7, 0}, tokens.Int64s())
	assert.Equal(t, []int{3, 7, 0}, tokens.Ints())
	assert.Equal(t, "train", ModeTrain.String())
	assert.Equal(t, "eval", ModeEval.String())
}
