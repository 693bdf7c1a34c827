package resources

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMmap(t *testing.T) {
	dir := t.TempDir()
	filePath := path.Join(dir, "manifest.csv")
	require.NoError(t, os.WriteFile(filePath, []byte("a,b\nc,d\n"), 0644))

	mapped, err := ReadMmap(filePath)
	require.NoError(t, err)
	assert.Equal(t, "a,b\nc,d\n", string(mapped.Data))
	assert.NoError(t, mapped.Close())
	assert.Nil(t, mapped.Data)
}

func TestReadMmapEmptyFile(t *testing.T) {
	filePath := path.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(filePath, nil, 0644))

	mapped, err := ReadMmap(filePath)
	require.NoError(t, err)
	assert.Len(t, mapped.Data, 0)
	assert.NoError(t, mapped.Close())
}

func TestReadMmapMissing(t *testing.T) {
	_, err := ReadMmap(path.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
	_, err = ReadMmap(t.TempDir())
	assert.Error(t, err)
}

func TestResolveLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(path.Join(dir, "vocab.txt"),
		[]byte("a\nb\n"), 0644))

	resolved, err := Resolve(dir, "vocab.txt", "")
	require.NoError(t, err)
	assert.Equal(t, path.Join(dir, "vocab.txt"), resolved)

	_, err = Resolve(dir, "missing.txt", "")
	assert.Error(t, err)
}

func TestResolveRemote(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/models/vocab.txt" {
				http.NotFound(w, r)
				return
			}
			if r.Method == http.MethodGet {
				hits++
			}
			w.Header().Set("Content-Length", "6")
			w.Write([]byte("a\nb\nc\n"))
		}))
	defer server.Close()

	cacheDir := t.TempDir()
	resolved, err := Resolve(server.URL+"/models", "vocab.txt", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, path.Join(cacheDir, "vocab.txt"), resolved)
	contents, err := os.ReadFile(resolved)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(contents))
	assert.Equal(t, 1, hits)

	// A same-sized cached copy is not downloaded again.
	_, err = Resolve(server.URL+"/models", "vocab.txt", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	_, err = Resolve(server.URL+"/models", "missing.txt", cacheDir)
	assert.Error(t, err)
}

func TestWriteCounter(t *testing.T) {
	counter := &WriteCounter{Path: "x", Size: 10}
	n, err := counter.Write([]byte("12345"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, uint64(5), counter.Total)
	assert.True(t, counter.Reported)
}
