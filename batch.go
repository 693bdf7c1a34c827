package speech_data

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// RawBatch
// What a loader hands to a collator: either a flat run of samples, one per
// requested index, or the single bucket a bucketed dataset returned for one
// index. Items gives the samples in both cases.
type RawBatch[T any] struct {
	items    []T
	bucketed bool
}

// Flat wraps individually requested samples.
func Flat[T any](items ...T) RawBatch[T] {
	return RawBatch[T]{items: items}
}

// Bucketed wraps one bucket.
func Bucketed[T any](bucket []T) RawBatch[T] {
	return RawBatch[T]{items: bucket, bucketed: true}
}

// Items returns the samples of the batch. Callers must not modify them.
func (b RawBatch[T]) Items() []T { return b.items }

func (b RawBatch[T]) IsBucketed() bool { return b.bucketed }

func (b RawBatch[T]) Len() int { return len(b.items) }

// Batch is a collated batch that can be fed to a gomlx training loop.
type Batch interface {
	Tensors() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor)
}

// AudioBatch
// A padded batch of utterances, sorted by descending frame count.
//   - Features is [batch][maxFrames][featDim], zero padded.
//   - Lengths holds the unpadded frame counts.
//   - Tokens is [batch][maxTokens], zero padded.
type AudioBatch struct {
	IDs      []string
	Features [][][]float32
	Lengths  []int
	Tokens   [][]int64
}

// Size is the number of utterances in the batch.
func (b *AudioBatch) Size() int { return len(b.IDs) }

// Tensors
// Returns the batch ids as the yield spec, the features `[B, T, D]` and lengths
// `[B]` as inputs, and the tokens `[B, L]` as labels.
func (b *AudioBatch) Tensors() (any, []*tensors.Tensor, []*tensors.Tensor) {
	size := len(b.Features)
	frames, featDim := 0, 0
	if size > 0 {
		frames = len(b.Features[0])
		if frames > 0 {
			featDim = len(b.Features[0][0])
		}
	}
	flat := make([]float32, 0, size*frames*featDim)
	for _, utterance := range b.Features {
		for _, frame := range utterance {
			flat = append(flat, frame...)
		}
	}
	lengths := make([]int64, size)
	for idx, length := range b.Lengths {
		lengths[idx] = int64(length)
	}
	inputs := []*tensors.Tensor{
		tensors.FromFlatDataAndDimensions(flat, size, frames, featDim),
		tensors.FromFlatDataAndDimensions(lengths, size),
	}
	labels := []*tensors.Tensor{paddedTensor(b.Tokens)}
	return b.IDs, inputs, labels
}

// TextBatch is a padded batch of token sequences in loader order.
type TextBatch struct {
	Tokens [][]int64
}

func (b *TextBatch) Size() int { return len(b.Tokens) }

// Tensors returns the tokens `[B, L]` as the only input.
func (b *TextBatch) Tensors() (any, []*tensors.Tensor, []*tensors.Tensor) {
	return nil, []*tensors.Tensor{paddedTensor(b.Tokens)}, nil
}

func paddedTensor(rows [][]int64) *tensors.Tensor {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	flat := make([]int64, 0, len(rows)*width)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return tensors.FromFlatDataAndDimensions(flat, len(rows), width)
}
