// Package manifest reads CSV manifests that pair an audio file with the path
// of a single-line transcript file.
//
// Each non-empty line is a comma separated record. The first field is the
// sample identifier (the audio path) and the last field is the path to the
// label file. Any fields in between are ignored.
package manifest

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/wbrown/speech_data/resources"
	"github.com/yargevad/filepathx"
	"k8s.io/klog/v2"
)

const progressEvery = 10000

// Entry is one manifest record before its label has been read.
type Entry struct {
	ID        string
	LabelPath string
	Line      int
}

// Record is an Entry with its label text loaded.
type Record struct {
	ID   string
	Text string
}

// Parse
// Reads manifest records from r. `name` is only used in errors.
func Parse(r io.Reader, name string) ([]Entry, error) {
	entries := make([]Entry, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, &ManifestReadError{
				Path: name,
				Line: lineNo,
				Err: errors.Errorf("expected at least 2 fields, got %d",
					len(fields)),
			}
		}
		entries = append(entries, Entry{
			ID:        fields[0],
			LabelPath: fields[len(fields)-1],
			Line:      lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, &ManifestReadError{Path: name, Err: err}
	}
	return entries, nil
}

// Read
// Maps the manifest at path and parses its records.
func Read(path string) ([]Entry, error) {
	mapped, err := resources.ReadMmap(path)
	if err != nil {
		return nil, &ManifestReadError{Path: path, Err: err}
	}
	defer mapped.Close()
	klog.V(1).Infof("Reading manifest %s (%s)", path,
		humanize.Bytes(uint64(len(mapped.Data))))
	return Parse(bytes.NewReader(mapped.Data), path)
}

// ReadLabel
// Returns the first line of the label file, with surrounding whitespace
// trimmed. A file without any line is a LabelReadError.
func ReadLabel(path string) (string, error) {
	handle, err := os.Open(path)
	if err != nil {
		return "", &LabelReadError{Path: path, Err: err}
	}
	defer handle.Close()
	reader := bufio.NewReader(handle)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", &LabelReadError{Path: path, Err: err}
	}
	if err == io.EOF && line == "" {
		return "", &LabelReadError{Path: path, Err: ErrEmptyLabel}
	}
	return strings.TrimSpace(line), nil
}

// LoadEntries
// Reads the label for every entry, in order. The first failure aborts the
// whole load.
func LoadEntries(entries []Entry) ([]Record, error) {
	records := make([]Record, 0, len(entries))
	for idx, entry := range entries {
		text, err := ReadLabel(entry.LabelPath)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{ID: entry.ID, Text: text})
		if (idx+1)%progressEvery == 0 {
			klog.V(1).Infof("Read %s labels", humanize.Comma(int64(idx+1)))
		}
	}
	return records, nil
}

// Load
// Reads the manifest at path and all of the labels it references.
func Load(path string) ([]Record, error) {
	entries, err := Read(path)
	if err != nil {
		return nil, err
	}
	records, err := LoadEntries(entries)
	if err != nil {
		return nil, err
	}
	klog.Infof("Loaded %s records from %s",
		humanize.Comma(int64(len(records))), path)
	return records, nil
}

// Glob
// Recursively finds manifests under dir matching pattern, which may contain
// `**`. Results are sorted by path.
func Glob(dir string, pattern string) ([]string, error) {
	matches, err := filepathx.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("%s does not contain any %s files",
			dir, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// CorpusPath
// Joins the corpus directory and manifest file name, relative to the user's
// home directory when fromHome is set, otherwise relative to the working
// directory. Absolute components are used as they are.
func CorpusPath(corpusDir string, manifestFile string,
	fromHome bool) (string, error) {
	joined := filepath.Join(corpusDir, manifestFile)
	if filepath.IsAbs(manifestFile) {
		joined = manifestFile
	}
	if filepath.IsAbs(joined) {
		return joined, nil
	}
	base := "."
	if fromHome {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = home
	}
	return filepath.Join(base, joined), nil
}
