package speech_data

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/speech_data/manifest"
	"github.com/wbrown/speech_data/text"
	"github.com/wbrown/speech_data/types"
)

func intDataset(t *testing.T, n int, bucketSize int) *Dataset[int] {
	items := make([]int, n)
	for idx := range items {
		items[idx] = idx
	}
	ds, err := NewDataset("ints", items, bucketSize)
	require.NoError(t, err)
	return ds
}

func TestDatasetBuckets(t *testing.T) {
	ds := intDataset(t, 10, 4)
	assert.Equal(t, 10, ds.Len())
	assert.Equal(t, 4, ds.BucketSize())
	for index := 0; index < ds.Len(); index++ {
		raw, err := ds.Get(index)
		require.NoError(t, err)
		assert.True(t, raw.IsBucketed())
		require.Equal(t, 4, raw.Len())
		start := min(index, 6)
		assert.Equal(t, []int{start, start + 1, start + 2, start + 3},
			raw.Items(), "index %d", index)
	}
	// The tail windows are shared.
	last, _ := ds.Bucket(9)
	clamped, _ := ds.Bucket(6)
	assert.Equal(t, clamped, last)
}

func TestDatasetBucketIsNotAppendable(t *testing.T) {
	ds := intDataset(t, 6, 2)
	bucket, err := ds.Bucket(0)
	require.NoError(t, err)
	_ = append(bucket, 100)
	item, err := ds.Item(2)
	require.NoError(t, err)
	assert.Equal(t, 2, item)
}

func TestDatasetSingle(t *testing.T) {
	ds := intDataset(t, 3, 1)
	for index := 0; index < 3; index++ {
		raw, err := ds.Get(index)
		require.NoError(t, err)
		assert.False(t, raw.IsBucketed())
		assert.Equal(t, []int{index}, raw.Items())
	}
	for _, index := range []int{-1, 3, 42} {
		_, err := ds.Get(index)
		var indexErr *IndexError
		require.True(t, errors.As(err, &indexErr), "index %d", index)
		assert.Equal(t, index, indexErr.Index)
		assert.Equal(t, 3, indexErr.Length)
	}
}

func TestDatasetBucketedIndexError(t *testing.T) {
	ds := intDataset(t, 5, 5)
	_, err := ds.Get(5)
	var indexErr *IndexError
	assert.True(t, errors.As(err, &indexErr))
	raw, err := ds.Get(4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, raw.Items())
}

func TestNewDatasetConfigErrors(t *testing.T) {
	var configErr *ConfigError
	_, err := NewDataset("ints", []int{1, 2, 3}, 0)
	assert.True(t, errors.As(err, &configErr))
	_, err = NewDataset("ints", []int{1, 2, 3}, 4)
	assert.True(t, errors.As(err, &configErr))
	ds, err := NewDataset("empty", []int{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestNewAudioDatasetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeCorpus(t, dir, "train", corpusLabels)
	tokenizer, err := text.NewCharacterTokenizerFromFile(
		writeCharVocab(t, dir))
	require.NoError(t, err)
	transform := text.NewSwahiliTransform()

	ds, err := NewAudioDataset("train", manifestPath, transform, tokenizer, 1)
	require.NoError(t, err)
	require.Equal(t, len(corpusLabels), ds.Len())
	for idx, label := range corpusLabels {
		sample, err := ds.Item(idx)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "train",
			"utt0"+string(rune('0'+idx))+".wav"), sample.ID)
		assert.Equal(t, tokenizer.Encode(transform.Transform(label)),
			sample.Tokens)
		assert.NotContains(t, sample.Tokens, text.UnkIdx)
	}

	texts, err := NewTextDataset("train", manifestPath, transform, tokenizer,
		3)
	require.NoError(t, err)
	bucket, err := texts.Bucket(5)
	require.NoError(t, err)
	assert.Len(t, bucket, 3)
	assert.Equal(t, tokenizer.Encode("asante sana rafiki"), bucket[2])
}

func TestNewAudioDatasetErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewAudioDataset("train", filepath.Join(dir, "missing.csv"),
		text.Identity, lengthEncoder{}, 1)
	var manifestErr *manifest.ManifestReadError
	assert.True(t, errors.As(err, &manifestErr))

	manifestPath := writeFile(t, filepath.Join(dir, "bad.csv"),
		[]byte("a.wav,"+filepath.Join(dir, "nope.txt")+"\n"))
	_, err = NewAudioDataset("train", manifestPath, text.Identity,
		lengthEncoder{}, 1)
	var labelErr *manifest.LabelReadError
	assert.True(t, errors.As(err, &labelErr))

	manifestPath = writeCorpus(t, dir, "small", corpusLabels[:2])
	_, err = NewAudioDataset("small", manifestPath, text.Identity,
		lengthEncoder{}, 3)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestPreprocess(t *testing.T) {
	sample := Preprocess(manifest.Record{ID: "x.wav", Text: "ab"},
		text.TransformFunc(func(s string) string { return s + s }),
		lengthEncoder{})
	assert.Equal(t, types.Sample{ID: "x.wav",
		Tokens: types.Tokens{'a', 'b', 'a', 'b'}}, sample)
}
