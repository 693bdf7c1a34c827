package speech_data

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/speech_data/audio"
	"github.com/wbrown/speech_data/types"
)

func TestDataMessages(t *testing.T) {
	assert.Equal(t, []string{
		"Data spec. | Corpus = mnm-early (from data/mnm)",
		"           | Train sets = train.csv\t| Number of utts = 12,345",
		"           | Dev sets = dev.csv\t| Number of utts = 17",
		"           | Batch size = 8\t\t| Bucketing = true",
	}, DataMessages("mnm-early", "data/mnm", "train.csv", 12345, "dev.csv",
		17, 8, true))
}

func testCorpus(t *testing.T) (string, CorpusConfig) {
	dir := t.TempDir()
	writeCorpus(t, dir, "train", corpusLabels)
	writeCorpus(t, dir, "dev", corpusLabels[:3])
	return dir, CorpusConfig{
		Name:          "MnM-Early",
		Path:          dir,
		TrainManifest: "train.csv",
		ValManifest:   "dev.csv",
		BatchSize:     2,
	}
}

func TestCreateDataset(t *testing.T) {
	_, cfg := testCorpus(t)
	splits, err := CreateDataset(lengthEncoder{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, len(corpusLabels), splits.Train.Len())
	assert.Equal(t, 3, splits.Dev.Len())
	assert.Equal(t, 1, splits.Train.BucketSize())
	assert.Equal(t, 2, splits.TrainBatchSize)
	assert.Equal(t, 2, splits.DevBatchSize)
	assert.Equal(t, types.ModeTrain, splits.Mode)
	assert.Len(t, splits.Messages, 4)

	cfg.Bucketing = true
	splits, err = CreateDataset(lengthEncoder{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, splits.Train.BucketSize())
	assert.Equal(t, 1, splits.Dev.BucketSize())
	assert.Equal(t, 1, splits.TrainBatchSize)
	assert.Equal(t, 2, splits.DevBatchSize)

	texts, err := CreateTextset(lengthEncoder{}, cfg)
	require.NoError(t, err)
	sample, err := texts.Dev.Item(0)
	require.NoError(t, err)
	assert.Equal(t, lengthEncoder{}.Encode("habari ya asubuhi"), sample)
}

func TestCreateDatasetConfigErrors(t *testing.T) {
	_, base := testCorpus(t)
	for name, mutate := range map[string]func(*CorpusConfig){
		"unknown corpus":  func(c *CorpusConfig) { c.Name = "librispeech" },
		"test manifest":   func(c *CorpusConfig) { c.TestManifest = "t.csv" },
		"no train":        func(c *CorpusConfig) { c.TrainManifest = "" },
		"no dev":          func(c *CorpusConfig) { c.ValManifest = "" },
		"zero batch size": func(c *CorpusConfig) { c.BatchSize = 0 },
		"bucket too big": func(c *CorpusConfig) {
			c.Bucketing = true
			c.BatchSize = 100
		},
	} {
		cfg := base
		mutate(&cfg)
		_, err := CreateDataset(lengthEncoder{}, cfg)
		var configErr *ConfigError
		assert.True(t, errors.As(err, &configErr), name)
	}
}

func testConfig(t *testing.T) Config {
	dir, corpus := testCorpus(t)
	cfg := DefaultConfig()
	cfg.Data.Corpus = corpus
	cfg.Data.Text.VocabFile = writeCharVocab(t, dir)
	return cfg
}

func TestLoadDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Corpus.Bucketing = true
	cfg.NJobs = 2
	data, err := LoadDataset(cfg)
	require.NoError(t, err)
	defer data.Close()

	assert.Equal(t, 40, data.FeatDim)
	assert.Equal(t, 31, data.VocabSize)
	require.Len(t, data.Messages, 5)
	assert.Equal(t, "I/O spec.  | Audio feature = fbank\t| feature dim = 40\t"+
		"| Token type = character\t| Vocab size = 31", data.Messages[4])

	numBatches := 0
	for {
		batch, err := data.Train.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		numBatches++
		require.Equal(t, 2, batch.Size())
		assert.GreaterOrEqual(t, batch.Lengths[0], batch.Lengths[1])
		assert.Len(t, batch.Features[0], batch.Lengths[0])
		assert.Len(t, batch.Features[0][0], 40)
	}
	assert.Equal(t, len(corpusLabels), numBatches)

	batch, err := data.Dev.Next()
	require.NoError(t, err)
	// Utterance i has 1 + (1600 + 800*i - 400) / 160 frames.
	assert.Equal(t, []int{13, 8}, batch.Lengths)
	assert.Equal(t, []string{"utt01", "utt00"}, batch.IDs)
	batch, err = data.Dev.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Size())
	_, err = data.Dev.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLoadDatasetErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Audio.FeatType = "plp"
	_, err := LoadDataset(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Data.Text.Mode = "bpe"
	_, err = LoadDataset(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Data.Corpus.TestManifest = "test.csv"
	_, err = LoadDataset(cfg)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestLoadTextset(t *testing.T) {
	cfg := testConfig(t)
	data, err := LoadTextset(cfg)
	require.NoError(t, err)
	defer data.Close()

	require.Len(t, data.Messages, 5)
	assert.Equal(t, "I/O spec.  | Token type = character\t| Vocab size = 31",
		data.Messages[4])
	assert.Equal(t, 3, data.Train.NumBatches())
	assert.Equal(t, 2, data.Dev.NumBatches())

	batch, err := data.Dev.Next()
	require.NoError(t, err)
	decoded := data.Tokenizer.Decode(types.TokensFromInts(
		[]int{int(batch.Tokens[0][0]), int(batch.Tokens[0][1])}))
	assert.Equal(t, "ha", decoded)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "asr.yaml"), []byte(`
data:
  corpus:
    name: mnm-early
    path: corpora/mnm
    train_manifest_csv: train.csv
    val_manifest_csv: dev.csv
    bucketing: true
    batch_size: 8
  audio:
    feat_type: mfcc
    feat_dim: 13
    delta_order: 2
  text:
    mode: subword
    vocab_file: https://example.com/models/sw.model
n_jobs: 4
hparas:
  lr: 0.001
`))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NJobs)
	assert.Equal(t, "corpora/mnm", cfg.Data.Corpus.Path)
	assert.True(t, cfg.Data.Corpus.Bucketing)
	assert.True(t, cfg.Data.Corpus.PathFromHome)
	assert.Equal(t, 8, cfg.Data.Corpus.BatchSize)
	assert.Equal(t, audio.FeatMFCC, cfg.Data.Audio.FeatType)
	assert.Equal(t, 13, cfg.Data.Audio.FeatDim)
	assert.Equal(t, 2, cfg.Data.Audio.DeltaOrder)
	assert.Equal(t, 25.0, cfg.Data.Audio.FrameLength)
	assert.True(t, cfg.Data.Audio.ApplyCMVN)
	assert.Equal(t, "subword", cfg.Data.Text.Mode)

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = ParseConfig([]byte("data: [1, 2"))
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, strings.Contains(err.Error(), "missing.yaml"))
}
