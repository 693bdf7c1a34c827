package audio

import (
	"strings"

	"github.com/pkg/errors"
)

// Feature types understood by CreateTransform.
const (
	FeatFbank = "fbank"
	FeatMFCC  = "mfcc"
)

// Features is a [frames][featDim] matrix for one utterance.
type Features [][]float32

// Frames returns the number of frames.
func (f Features) Frames() int { return len(f) }

// Dim returns the width of a frame, or 0 for an empty matrix.
func (f Features) Dim() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0])
}

// Transform maps an audio file path to its features.
type Transform func(path string) (Features, error)

// Config selects the acoustic features computed for each utterance.
// FrameLength and FrameShift are in milliseconds.
type Config struct {
	FeatType        string  `yaml:"feat_type"`
	FeatDim         int     `yaml:"feat_dim"`
	FrameLength     float64 `yaml:"frame_length"`
	FrameShift      float64 `yaml:"frame_shift"`
	ApplyCMVN       bool    `yaml:"apply_cmvn"`
	DeltaOrder      int     `yaml:"delta_order"`
	DeltaWindowSize int     `yaml:"delta_window_size"`
	CacheSize       int     `yaml:"cache_size"`
}

func DefaultConfig() Config {
	return Config{
		FeatType:        FeatFbank,
		FeatDim:         40,
		FrameLength:     25,
		FrameShift:      10,
		ApplyCMVN:       true,
		DeltaOrder:      0,
		DeltaWindowSize: 2,
		CacheSize:       0,
	}
}

// OutputDim is the width of each frame after deltas are appended.
func (c Config) OutputDim() int {
	return c.FeatDim * (1 + c.DeltaOrder)
}

func (c Config) validate() error {
	switch c.FeatType {
	case FeatFbank, FeatMFCC:
	default:
		return errors.Errorf("unsupported feat_type %q", c.FeatType)
	}
	switch {
	case c.FeatDim < 1:
		return errors.Errorf("feat_dim must be positive, got %d", c.FeatDim)
	case c.FrameLength <= 0 || c.FrameShift <= 0:
		return errors.Errorf("frame_length (%v) and frame_shift (%v) "+
			"must be positive", c.FrameLength, c.FrameShift)
	case c.DeltaOrder < 0:
		return errors.Errorf("delta_order must not be negative, got %d",
			c.DeltaOrder)
	case c.DeltaOrder > 0 && c.DeltaWindowSize < 1:
		return errors.Errorf("delta_window_size must be positive, got %d",
			c.DeltaWindowSize)
	case c.CacheSize < 0:
		return errors.Errorf("cache_size must not be negative, got %d",
			c.CacheSize)
	}
	return nil
}

// Extract computes features for samples recorded at sampleRate.
func Extract(samples []float64, sampleRate int, cfg Config) (Features,
	error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ext := newExtractor(cfg, sampleRate)
	if ext.frameLen < 1 || ext.shift < 1 {
		return nil, errors.Errorf("sample rate %d is too low for %vms "+
			"frames", sampleRate, cfg.FrameLength)
	}
	if len(samples) < ext.frameLen {
		return nil, errors.Errorf("audio too short for a single frame: "+
			"%d samples, need %d", len(samples), ext.frameLen)
	}
	feats := ext.extract(samples, cfg.FeatDim)
	if cfg.ApplyCMVN {
		applyCMVN(feats)
	}
	feats = appendDeltas(feats, cfg.DeltaOrder, cfg.DeltaWindowSize)

	out := make(Features, len(feats))
	buf := make([]float32, len(feats)*cfg.OutputDim())
	width := cfg.OutputDim()
	for t, row := range feats {
		out[t] = buf[t*width : (t+1)*width]
		for d, v := range row {
			out[t][d] = float32(v)
		}
	}
	return out, nil
}

// CreateTransform
// Builds the path to features transform described by cfg, and reports the
// feature dimension it produces. A positive CacheSize memoizes decoded
// utterances.
func CreateTransform(cfg Config) (Transform, int, error) {
	cfg.FeatType = strings.ToLower(strings.TrimSpace(cfg.FeatType))
	if err := cfg.validate(); err != nil {
		return nil, 0, err
	}
	transform := Transform(func(path string) (Features, error) {
		samples, header, err := ReadWAVFile(path)
		if err != nil {
			return nil, err
		}
		feats, err := Extract(samples, int(header.SampleRate), cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot featurize %s", path)
		}
		return feats, nil
	})
	if cfg.CacheSize > 0 {
		cached, err := Cached(transform, cfg.CacheSize)
		if err != nil {
			return nil, 0, err
		}
		transform = cached
	}
	return transform, cfg.OutputDim(), nil
}
