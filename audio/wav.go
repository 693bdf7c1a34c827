// Package audio decodes utterances and turns them into frame level
// acoustic features.
package audio

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// WAVHeader holds the parsed RIFF/WAV header fields.
type WAVHeader struct {
	SampleRate    uint32
	BitsPerSample uint16
	NumChannels   uint16
	NumSamples    int
}

// ReadWAV
// Reads a 16-bit PCM WAV stream and returns mono samples normalized to
// [-1.0, 1.0]. Multichannel audio is averaged down to one channel. Any
// sample rate is accepted; it is reported in the header.
func ReadWAV(r io.ReadSeeker) ([]float64, WAVHeader, error) {
	var header WAVHeader

	var riffID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &riffID); err != nil {
		return nil, header, errors.Wrap(err, "read RIFF ID")
	}
	if string(riffID[:]) != "RIFF" {
		return nil, header, errors.New("not a RIFF file")
	}
	var fileSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return nil, header, errors.Wrap(err, "read file size")
	}
	var waveID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &waveID); err != nil {
		return nil, header, errors.Wrap(err, "read WAVE ID")
	}
	if string(waveID[:]) != "WAVE" {
		return nil, header, errors.New("not a WAVE file")
	}

	var fmtFound, dataFound bool
	var samples []float64
	for !(fmtFound && dataFound) {
		var chunkID [4]byte
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, header, errors.Wrap(err, "read chunk ID")
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, header, errors.Wrap(err, "read chunk size")
		}
		switch string(chunkID[:]) {
		case "fmt ":
			if err := readFmtChunk(r, chunkSize, &header); err != nil {
				return nil, header, err
			}
			fmtFound = true
		case "data":
			if !fmtFound {
				return nil, header, errors.New("data chunk before fmt chunk")
			}
			var err error
			if samples, err = readDataChunk(r, chunkSize, &header); err != nil {
				return nil, header, err
			}
			dataFound = true
		default:
			// Chunks are padded to an even size.
			skip := int64(chunkSize) + int64(chunkSize%2)
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, header, errors.Wrapf(err, "skip chunk %q", chunkID)
			}
		}
	}
	if !fmtFound {
		return nil, header, errors.New("missing fmt chunk")
	}
	if !dataFound {
		return nil, header, errors.New("missing data chunk")
	}
	return samples, header, nil
}

// ReadWAVFile opens and decodes the WAV file at path.
func ReadWAVFile(path string) ([]float64, WAVHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WAVHeader{}, err
	}
	defer f.Close()
	samples, header, err := ReadWAV(f)
	if err != nil {
		return nil, header, errors.Wrapf(err, "cannot decode %s", path)
	}
	return samples, header, nil
}

func readFmtChunk(r io.ReadSeeker, size uint32, h *WAVHeader) error {
	var audioFormat uint16
	if err := binary.Read(r, binary.LittleEndian, &audioFormat); err != nil {
		return errors.Wrap(err, "read audio format")
	}
	if audioFormat != 1 {
		return errors.Errorf("unsupported audio format %d (only PCM=1 "+
			"supported)", audioFormat)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.NumChannels); err != nil {
		return errors.Wrap(err, "read num channels")
	}
	if h.NumChannels == 0 {
		return errors.New("wav declares zero channels")
	}
	if err := binary.Read(r, binary.LittleEndian, &h.SampleRate); err != nil {
		return errors.Wrap(err, "read sample rate")
	}
	if h.SampleRate == 0 {
		return errors.New("wav declares a zero sample rate")
	}
	// byteRate (4 bytes) and blockAlign (2 bytes)
	if _, err := r.Seek(6, io.SeekCurrent); err != nil {
		return errors.Wrap(err, "skip byte rate / block align")
	}
	if err := binary.Read(r, binary.LittleEndian,
		&h.BitsPerSample); err != nil {
		return errors.Wrap(err, "read bits per sample")
	}
	if h.BitsPerSample != 16 {
		return errors.Errorf("unsupported bits per sample %d (only 16 "+
			"supported)", h.BitsPerSample)
	}
	const consumed = uint32(16)
	if size > consumed {
		extra := int64(size-consumed) + int64(size%2)
		if _, err := r.Seek(extra, io.SeekCurrent); err != nil {
			return errors.Wrap(err, "skip extra fmt bytes")
		}
	}
	return nil
}

func readDataChunk(r io.Reader, size uint32, h *WAVHeader) ([]float64,
	error) {
	channels := int(h.NumChannels)
	numFrames := int(size) / 2 / channels
	h.NumSamples = numFrames

	raw := make([]int16, numFrames*channels)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, errors.Wrap(err, "read PCM data")
	}
	samples := make([]float64, numFrames)
	scale := 1.0 / (32768.0 * float64(channels))
	for i := range samples {
		var acc float64
		for c := 0; c < channels; c++ {
			acc += float64(raw[i*channels+c])
		}
		samples[i] = acc * scale
	}
	return samples, nil
}
