package speech_data

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/wbrown/speech_data/audio"
	"github.com/wbrown/speech_data/text"
	"gopkg.in/yaml.v3"
)

// CorpusConfig locates a corpus and describes how it is batched.
type CorpusConfig struct {
	Name          string `yaml:"name"`
	Path          string `yaml:"path"`
	TrainManifest string `yaml:"train_manifest_csv"`
	ValManifest   string `yaml:"val_manifest_csv"`
	TestManifest  string `yaml:"test_manifest_csv"`
	Bucketing     bool   `yaml:"bucketing"`
	BatchSize     int    `yaml:"batch_size"`
	PathFromHome  bool   `yaml:"path_from_home"`
}

// DataConfig is the `data` section of an experiment configuration.
type DataConfig struct {
	Corpus CorpusConfig         `yaml:"corpus"`
	Audio  audio.Config         `yaml:"audio"`
	Text   text.TokenizerConfig `yaml:"text"`
}

// Config
// The subset of an experiment configuration read by this package. NJobs is
// the number of collation workers for audio loaders.
type Config struct {
	Data  DataConfig `yaml:"data"`
	NJobs int        `yaml:"n_jobs"`
	Seed  int64      `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			Corpus: CorpusConfig{
				Name:         CorpusMnMEarly,
				BatchSize:    16,
				PathFromHome: true,
			},
			Audio: audio.DefaultConfig(),
			Text:  text.TokenizerConfig{Mode: "character"},
		},
	}
}

// ParseConfig
// Decodes YAML over DefaultConfig, so omitted keys keep their defaults.
// Sections belonging to the model or the trainer are ignored.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "cannot parse configuration")
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML configuration at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read configuration %s",
			path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}
