package speech_data

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/wbrown/speech_data/audio"
	"github.com/wbrown/speech_data/manifest"
	"github.com/wbrown/speech_data/text"
	"github.com/wbrown/speech_data/types"
	"k8s.io/klog/v2"
)

// CorpusMnMEarly is the only corpus currently recognized.
const CorpusMnMEarly = "mnm-early"

// Splits holds the train and dev datasets of a corpus with their loader
// batch sizes.
type Splits[T any] struct {
	Train          *Dataset[T]
	Dev            *Dataset[T]
	TrainBatchSize int
	DevBatchSize   int
	Mode           types.Mode
	Messages       []string
}

type datasetFactory[T any] func(name string, manifestPath string,
	transform text.TextTransform, tokenizer Encoder,
	bucketSize int) (*Dataset[T], error)

func createSplits[T any](tokenizer Encoder, cfg CorpusConfig,
	factory datasetFactory[T]) (*Splits[T], error) {
	if !strings.EqualFold(strings.TrimSpace(cfg.Name), CorpusMnMEarly) {
		return nil, configErrorf("corpus %q is not implemented", cfg.Name)
	}
	if cfg.TestManifest != "" {
		return nil, configErrorf("test_manifest_csv is not implemented")
	}
	if cfg.TrainManifest == "" {
		return nil, configErrorf("train_manifest_csv is required")
	}
	if cfg.ValManifest == "" {
		return nil, configErrorf("val_manifest_csv is required")
	}
	if cfg.BatchSize < 1 {
		return nil, configErrorf("batch_size must be at least 1, got %d",
			cfg.BatchSize)
	}
	bucketSize, trainBatchSize := 1, cfg.BatchSize
	if cfg.Bucketing {
		bucketSize, trainBatchSize = cfg.BatchSize, 1
	}

	valPath, err := manifest.CorpusPath(cfg.Path, cfg.ValManifest,
		cfg.PathFromHome)
	if err != nil {
		return nil, err
	}
	trainPath, err := manifest.CorpusPath(cfg.Path, cfg.TrainManifest,
		cfg.PathFromHome)
	if err != nil {
		return nil, err
	}
	transform := text.NewSwahiliTransform()
	// The dev set is never bucketed.
	dev, err := factory(cfg.Name+"/dev", valPath, transform, tokenizer, 1)
	if err != nil {
		return nil, err
	}
	train, err := factory(cfg.Name+"/train", trainPath, transform, tokenizer,
		bucketSize)
	if err != nil {
		return nil, err
	}
	return &Splits[T]{
		Train:          train,
		Dev:            dev,
		TrainBatchSize: trainBatchSize,
		DevBatchSize:   cfg.BatchSize,
		Mode:           types.ModeTrain,
		Messages: DataMessages(cfg.Name, cfg.Path, cfg.TrainManifest,
			train.Len(), cfg.ValManifest, dev.Len(), cfg.BatchSize,
			cfg.Bucketing),
	}, nil
}

// CreateDataset
// Builds the train and dev audio datasets of the corpus. With bucketing the
// train set returns buckets of BatchSize samples, and is loaded one bucket
// at a time.
func CreateDataset(tokenizer Encoder, cfg CorpusConfig) (
	*Splits[types.Sample], error) {
	return createSplits[types.Sample](tokenizer, cfg, NewAudioDataset)
}

// CreateTextset is CreateDataset for text only language model data.
func CreateTextset(tokenizer Encoder, cfg CorpusConfig) (
	*Splits[types.Tokens], error) {
	return createSplits[types.Tokens](tokenizer, cfg, NewTextDataset)
}

// DataMessages lists the verbose description of a corpus.
func DataMessages(name, path, trainSplit string, trainLen int,
	devSplit string, devLen int, batchSize int, bucketing bool) []string {
	return []string{
		fmt.Sprintf("Data spec. | Corpus = %s (from %s)", name, path),
		fmt.Sprintf("           | Train sets = %s\t| Number of utts = %s",
			trainSplit, humanize.Comma(int64(trainLen))),
		fmt.Sprintf("           | Dev sets = %s\t| Number of utts = %s",
			devSplit, humanize.Comma(int64(devLen))),
		fmt.Sprintf("           | Batch size = %d\t\t| Bucketing = %t",
			batchSize, bucketing),
	}
}

// AudioData is everything a speech recognition trainer needs.
type AudioData struct {
	Train     *Loader[types.Sample, *AudioBatch]
	Dev       *Loader[types.Sample, *AudioBatch]
	FeatDim   int
	VocabSize int
	Tokenizer text.Tokenizer
	Messages  []string
}

func (d *AudioData) Close() {
	d.Train.Close()
	d.Dev.Close()
}

// LoadDataset
// Builds the feature transform, tokenizer and corpus named by cfg, and
// wraps the splits in loaders. Training batches are shuffled, may be
// halved, and a trailing partial batch is dropped. Dev batches are
// collated as is.
func LoadDataset(cfg Config) (*AudioData, error) {
	transform, featDim, err := audio.CreateTransform(cfg.Data.Audio)
	if err != nil {
		return nil, err
	}
	tokenizer, err := text.LoadTokenizer(cfg.Data.Text)
	if err != nil {
		return nil, err
	}
	splits, err := CreateDataset(tokenizer, cfg.Data.Corpus)
	if err != nil {
		return nil, err
	}
	collateWith := func(mode types.Mode) CollateFunc[types.Sample,
		*AudioBatch] {
		collateCfg := DefaultCollateConfig(mode)
		return func(batch RawBatch[types.Sample]) (*AudioBatch, error) {
			return CollateAudio(batch, transform, collateCfg)
		}
	}
	shuffle := splits.Mode == types.ModeTrain
	train, err := NewLoader(splits.Train, collateWith(splits.Mode),
		LoaderConfig{
			BatchSize: splits.TrainBatchSize,
			Shuffle:   shuffle,
			DropLast:  shuffle,
			Workers:   cfg.NJobs,
			Seed:      cfg.Seed,
		})
	if err != nil {
		return nil, err
	}
	dev, err := NewLoader(splits.Dev, collateWith(types.ModeEval),
		LoaderConfig{BatchSize: splits.DevBatchSize, Workers: cfg.NJobs})
	if err != nil {
		train.Close()
		return nil, err
	}
	messages := append(splits.Messages, fmt.Sprintf(
		"I/O spec.  | Audio feature = %s\t| feature dim = %d\t"+
			"| Token type = %s\t| Vocab size = %d",
		cfg.Data.Audio.FeatType, featDim, tokenizer.TokenType(),
		tokenizer.VocabSize()))
	klog.V(1).Infof("Loaded %s: %s train and %s dev batches per epoch",
		cfg.Data.Corpus.Name, humanize.Comma(int64(train.NumBatches())),
		humanize.Comma(int64(dev.NumBatches())))
	return &AudioData{
		Train:     train,
		Dev:       dev,
		FeatDim:   featDim,
		VocabSize: tokenizer.VocabSize(),
		Tokenizer: tokenizer,
		Messages:  messages,
	}, nil
}

// TextData is everything a language model trainer needs.
type TextData struct {
	Train     *Loader[types.Tokens, *TextBatch]
	Dev       *Loader[types.Tokens, *TextBatch]
	VocabSize int
	Tokenizer text.Tokenizer
	Messages  []string
}

func (d *TextData) Close() {
	d.Train.Close()
	d.Dev.Close()
}

// LoadTextset
// The text only counterpart of LoadDataset. Token sequences are already in
// memory, so collation happens on the calling goroutine.
func LoadTextset(cfg Config) (*TextData, error) {
	tokenizer, err := text.LoadTokenizer(cfg.Data.Text)
	if err != nil {
		return nil, err
	}
	splits, err := CreateTextset(tokenizer, cfg.Data.Corpus)
	if err != nil {
		return nil, err
	}
	collateWith := func(mode types.Mode) CollateFunc[types.Tokens,
		*TextBatch] {
		collateCfg := DefaultCollateConfig(mode)
		return func(batch RawBatch[types.Tokens]) (*TextBatch, error) {
			return CollateText(batch, collateCfg)
		}
	}
	train, err := NewLoader(splits.Train, collateWith(types.ModeTrain),
		LoaderConfig{
			BatchSize: splits.TrainBatchSize,
			Shuffle:   true,
			DropLast:  true,
			Seed:      cfg.Seed,
		})
	if err != nil {
		return nil, err
	}
	dev, err := NewLoader(splits.Dev, collateWith(types.ModeEval),
		LoaderConfig{BatchSize: splits.DevBatchSize})
	if err != nil {
		return nil, err
	}
	messages := append(splits.Messages, fmt.Sprintf(
		"I/O spec.  | Token type = %s\t| Vocab size = %d",
		tokenizer.TokenType(), tokenizer.VocabSize()))
	return &TextData{
		Train:     train,
		Dev:       dev,
		VocabSize: tokenizer.VocabSize(),
		Tokenizer: tokenizer,
		Messages:  messages,
	}, nil
}
