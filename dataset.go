package speech_data

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wbrown/speech_data/manifest"
	"github.com/wbrown/speech_data/text"
	"github.com/wbrown/speech_data/types"
	"k8s.io/klog/v2"
)

// Encoder is the part of a tokenizer the datasets need.
type Encoder interface {
	Encode(text string) types.Tokens
}

// Dataset
// An immutable, ordered collection of preprocessed samples. With a bucket
// size above one every access returns a fixed size window of neighbouring
// samples instead of a single one. Datasets are safe for concurrent reads.
type Dataset[T any] struct {
	name       string
	items      []T
	bucketSize int
}

// NewDataset
// Wraps items in manifest order. bucketSize must be at least 1, and may not
// exceed the number of items when above 1.
func NewDataset[T any](name string, items []T, bucketSize int) (*Dataset[T],
	error) {
	if bucketSize < 1 {
		return nil, configErrorf("%s: bucket size must be at least 1, got %d",
			name, bucketSize)
	}
	if bucketSize > 1 && bucketSize > len(items) {
		return nil, configErrorf("%s: bucket size %d exceeds dataset "+
			"length %d", name, bucketSize, len(items))
	}
	return &Dataset[T]{name: name, items: items, bucketSize: bucketSize}, nil
}

func (ds *Dataset[T]) Name() string { return ds.name }

func (ds *Dataset[T]) Len() int { return len(ds.items) }

func (ds *Dataset[T]) BucketSize() int { return ds.bucketSize }

func (ds *Dataset[T]) checkIndex(index int) error {
	if index < 0 || index >= len(ds.items) {
		return &IndexError{Index: index, Length: len(ds.items)}
	}
	return nil
}

// Item returns the sample at index, ignoring bucketing.
func (ds *Dataset[T]) Item(index int) (T, error) {
	if err := ds.checkIndex(index); err != nil {
		var zero T
		return zero, err
	}
	return ds.items[index], nil
}

// Bucket
// Returns the BucketSize samples starting at min(index, Len-BucketSize).
// Indices near the tail therefore share the same final window.
func (ds *Dataset[T]) Bucket(index int) ([]T, error) {
	if err := ds.checkIndex(index); err != nil {
		return nil, err
	}
	start := min(index, len(ds.items)-ds.bucketSize)
	end := start + ds.bucketSize
	return ds.items[start:end:end], nil
}

// Get returns what a loader sees for index: a single sample, or a bucket.
func (ds *Dataset[T]) Get(index int) (RawBatch[T], error) {
	if ds.bucketSize == 1 {
		item, err := ds.Item(index)
		if err != nil {
			return RawBatch[T]{}, err
		}
		return Flat(item), nil
	}
	bucket, err := ds.Bucket(index)
	if err != nil {
		return RawBatch[T]{}, err
	}
	return Bucketed(bucket), nil
}

// Preprocess normalizes and tokenizes the transcript of one record.
func Preprocess(record manifest.Record, transform text.TextTransform,
	tokenizer Encoder) types.Sample {
	return types.Sample{
		ID:     record.ID,
		Tokens: tokenizer.Encode(transform.Transform(record.Text)),
	}
}

func preprocessAll(name string, manifestPath string,
	transform text.TextTransform, tokenizer Encoder) ([]types.Sample, error) {
	records, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	samples := make([]types.Sample, len(records))
	var numTokens int
	for idx, record := range records {
		samples[idx] = Preprocess(record, transform, tokenizer)
		numTokens += len(samples[idx].Tokens)
	}
	klog.V(1).Infof("%s: tokenized %s utterances into %s tokens in %v",
		name, humanize.Comma(int64(len(samples))),
		humanize.Comma(int64(numTokens)), time.Since(start))
	return samples, nil
}

// NewAudioDataset
// Reads every record of the manifest, preprocessing all transcripts up
// front, and keeps the audio path of each as its identifier.
func NewAudioDataset(name string, manifestPath string,
	transform text.TextTransform, tokenizer Encoder,
	bucketSize int) (*Dataset[types.Sample], error) {
	samples, err := preprocessAll(name, manifestPath, transform, tokenizer)
	if err != nil {
		return nil, err
	}
	return NewDataset(name, samples, bucketSize)
}

// NewTextDataset is NewAudioDataset keeping only the token sequences.
func NewTextDataset(name string, manifestPath string,
	transform text.TextTransform, tokenizer Encoder,
	bucketSize int) (*Dataset[types.Tokens], error) {
	samples, err := preprocessAll(name, manifestPath, transform, tokenizer)
	if err != nil {
		return nil, err
	}
	texts := make([]types.Tokens, len(samples))
	for idx, sample := range samples {
		texts[idx] = sample.Tokens
	}
	return NewDataset(name, texts, bucketSize)
}
