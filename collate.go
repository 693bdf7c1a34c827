package speech_data

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/wbrown/speech_data/audio"
	"github.com/wbrown/speech_data/types"
)

// Training batches whose first sample exceeds these lengths are halved.
const (
	DefaultHalfBatchAudioLen = 800
	DefaultHalfBatchTextLen  = 150
)

// CollateConfig
// HalfBatchAudioLen is in feature frames and HalfBatchTextLen in tokens.
// Batches are only ever halved in ModeTrain.
type CollateConfig struct {
	Mode              types.Mode
	HalfBatchAudioLen int
	HalfBatchTextLen  int
}

func DefaultCollateConfig(mode types.Mode) CollateConfig {
	return CollateConfig{
		Mode:              mode,
		HalfBatchAudioLen: DefaultHalfBatchAudioLen,
		HalfBatchTextLen:  DefaultHalfBatchTextLen,
	}
}

// halve keeps the first half of items when the probe is too long.
func halve[T any](items []T, probeLen, threshold int,
	cfg CollateConfig) ([]T, error) {
	if cfg.Mode == types.ModeTrain && probeLen > threshold {
		items = items[:len(items)/2]
		if len(items) == 0 {
			return nil, errors.Wrapf(ErrEmptyBatch,
				"nothing left after halving for a probe of length %d",
				probeLen)
		}
	}
	return items, nil
}

// utteranceName is the last path component up to its first dot.
func utteranceName(path string) string {
	if slash := strings.LastIndex(path, "/"); slash >= 0 {
		path = path[slash+1:]
	}
	name, _, _ := strings.Cut(path, ".")
	return name
}

// CollateAudio
// Featurizes every utterance of the batch and pads it. The first sample is
// the probe: in training, when its frame count exceeds HalfBatchAudioLen
// only the first half of the batch is kept. The result is stably sorted by
// descending frame count.
func CollateAudio(batch RawBatch[types.Sample], transform audio.Transform,
	cfg CollateConfig) (*AudioBatch, error) {
	items := batch.Items()
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	probe, err := transform(items[0].ID)
	if err != nil {
		return nil, err
	}
	if items, err = halve(items, probe.Frames(), cfg.HalfBatchAudioLen,
		cfg); err != nil {
		return nil, err
	}

	type utterance struct {
		name   string
		feats  audio.Features
		tokens []int64
	}
	utterances := make([]utterance, len(items))
	featDim := probe.Dim()
	for idx, item := range items {
		feats := probe
		if idx > 0 {
			if feats, err = transform(item.ID); err != nil {
				return nil, err
			}
		}
		if featDim == 0 {
			featDim = feats.Dim()
		}
		if feats.Frames() > 0 && feats.Dim() != featDim {
			return nil, errors.Errorf("%s has feature dim %d, expected %d",
				item.ID, feats.Dim(), featDim)
		}
		utterances[idx] = utterance{
			name:   utteranceName(item.ID),
			feats:  feats,
			tokens: item.Tokens.Int64s(),
		}
	}
	slices.SortStableFunc(utterances, func(a, b utterance) int {
		return b.feats.Frames() - a.feats.Frames()
	})

	maxFrames := utterances[0].feats.Frames()
	maxTokens := 0
	for _, u := range utterances {
		maxTokens = max(maxTokens, len(u.tokens))
	}
	out := &AudioBatch{
		IDs:      make([]string, len(utterances)),
		Features: make([][][]float32, len(utterances)),
		Lengths:  make([]int, len(utterances)),
		Tokens:   make([][]int64, len(utterances)),
	}
	featBuf := make([]float32, len(utterances)*maxFrames*featDim)
	for idx, u := range utterances {
		out.IDs[idx] = u.name
		out.Lengths[idx] = u.feats.Frames()
		padded := make([][]float32, maxFrames)
		for frame := range padded {
			offset := (idx*maxFrames + frame) * featDim
			padded[frame] = featBuf[offset : offset+featDim]
			if frame < u.feats.Frames() {
				copy(padded[frame], u.feats[frame])
			}
		}
		out.Features[idx] = padded
		out.Tokens[idx] = padTokens(u.tokens, maxTokens)
	}
	return out, nil
}

func padTokens(tokens []int64, width int) []int64 {
	padded := make([]int64, width)
	copy(padded, tokens)
	return padded
}

// CollateText
// Pads a batch of token sequences without reordering it. In training, when
// the first sequence is longer than HalfBatchTextLen only the first half of
// the batch is kept.
func CollateText(batch RawBatch[types.Tokens], cfg CollateConfig) (*TextBatch,
	error) {
	items := batch.Items()
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	items, err := halve(items, len(items[0]), cfg.HalfBatchTextLen, cfg)
	if err != nil {
		return nil, err
	}
	maxTokens := 0
	for _, item := range items {
		maxTokens = max(maxTokens, len(item))
	}
	out := &TextBatch{Tokens: make([][]int64, len(items))}
	for idx, item := range items {
		out.Tokens[idx] = padTokens(item.Int64s(), maxTokens)
	}
	return out, nil
}
