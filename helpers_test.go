package speech_data

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/speech_data/types"
)

func writeFile(t *testing.T, path string, contents []byte) string {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, contents, 0644))
	return path
}

// wavBytes encodes a 16kHz mono sine of n samples.
func wavBytes(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+2*n))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(16000))
	binary.Write(&buf, binary.LittleEndian, uint32(32000))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(2*n))
	for i := 0; i < n; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*220*float64(i)/16000))
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

var corpusLabels = []string{
	"Habari ya asubuhi",
	"Ninakupenda sana!",
	"Jina langu ni Amani.",
	"Tutaonana kesho",
	"Karibu nyumbani",
	"Asante sana, rafiki",
}

// writeCorpus
// Writes an utterance and label per entry of labels under dir/<split>, and
// a manifest dir/<split>.csv referencing them. Utterance i lasts
// 0.1 + 0.05*i seconds.
func writeCorpus(t *testing.T, dir string, split string,
	labels []string) string {
	var manifest strings.Builder
	for idx, label := range labels {
		wavPath := writeFile(t, filepath.Join(dir, split,
			fmt.Sprintf("utt%02d.wav", idx)), wavBytes(1600+800*idx))
		txtPath := writeFile(t, filepath.Join(dir, split,
			fmt.Sprintf("utt%02d.txt", idx)), []byte(label+"\n"))
		fmt.Fprintf(&manifest, "%s,%d,%s\n", wavPath, idx, txtPath)
	}
	return writeFile(t, filepath.Join(dir, split+".csv"),
		[]byte(manifest.String()))
}

// writeCharVocab writes a character vocabulary for lower case Swahili.
func writeCharVocab(t *testing.T, dir string) string {
	symbols := []string{" ", "'"}
	for r := 'a'; r <= 'z'; r++ {
		symbols = append(symbols, string(r))
	}
	return writeFile(t, filepath.Join(dir, "vocab.txt"),
		[]byte(strings.Join(symbols, "\n")+"\n"))
}

// lengthEncoder encodes a text as one token per rune.
type lengthEncoder struct{}

func (lengthEncoder) Encode(text string) types.Tokens {
	tokens := make(types.Tokens, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, types.Token(r))
	}
	return tokens
}

func tokensOfLen(n int, value types.Token) types.Tokens {
	tokens := make(types.Tokens, n)
	for idx := range tokens {
		tokens[idx] = value
	}
	return tokens
}
