package resources

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// WriteCounter counts the number of bytes written to it, and every 10 seconds,
// it logs a message reporting the number of bytes written so far.
type WriteCounter struct {
	Total    uint64
	Last     time.Time
	Reported bool
	Path     string
	Size     uint64
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.Total += uint64(n)
	if time.Since(wc.Last).Seconds() > 10 {
		wc.Reported = true
		wc.Last = time.Now()
		klog.Infof("Downloading %s... %s / %s completed.",
			wc.Path, humanize.Bytes(wc.Total), humanize.Bytes(wc.Size))
	}
	return n, nil
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// Fetch
// Given a base URI and a resource name, determines if the resource is local
// or remote, and returns a ReadCloser over its contents.
func Fetch(uri string, rsrc string) (io.ReadCloser, error) {
	if isValidUrl(uri) {
		return FetchHTTP(uri, rsrc)
	}
	handle, fileErr := os.Open(path.Join(uri, rsrc))
	if fileErr != nil {
		return nil, errors.Wrapf(fileErr, "error opening %s/%s", uri, rsrc)
	}
	return handle, nil
}

// Size
// Given a base URI and a resource name, determine the size of the resource.
func Size(uri string, rsrc string) (uint64, error) {
	if isValidUrl(uri) {
		return SizeHTTP(uri, rsrc)
	}
	fsz, err := os.Stat(path.Join(uri, rsrc))
	if err != nil {
		return 0, err
	}
	return uint64(fsz.Size()), nil
}

// Resolve
// Returns a local path for the resource `rsrc` at `uri`. Local resources are
// returned in place. Remote resources are downloaded into `dir`, unless a
// copy of the same size is already there.
func Resolve(uri string, rsrc string, dir string) (string, error) {
	if !isValidUrl(uri) {
		localPath := path.Join(uri, rsrc)
		if _, err := os.Stat(localPath); err != nil {
			return "", errors.Wrapf(err, "cannot resolve %s", localPath)
		}
		return localPath, nil
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	remote := fmt.Sprintf("%s/%s", uri, rsrc)
	targetPath := path.Join(dir, path.Base(rsrc))
	rsrcSize, sizeErr := Size(uri, rsrc)
	if sizeErr != nil {
		return "", errors.Wrapf(sizeErr, "cannot retrieve `%s`", remote)
	}
	if targetStat, statErr := os.Stat(targetPath); statErr == nil &&
		uint64(targetStat.Size()) == rsrcSize {
		klog.V(1).Infof("Skipping %s... already exists, "+
			"and of the correct size.", remote)
		return targetPath, nil
	}
	rsrcReader, fetchErr := Fetch(uri, rsrc)
	if fetchErr != nil {
		return "", errors.Wrapf(fetchErr, "cannot retrieve `%s`", remote)
	}
	defer rsrcReader.Close()
	rsrcFile, openErr := os.OpenFile(targetPath,
		os.O_TRUNC|os.O_RDWR|os.O_CREATE, 0644)
	if openErr != nil {
		return "", errors.Wrapf(openErr, "error opening '%s' for write",
			targetPath)
	}
	defer rsrcFile.Close()
	counter := &WriteCounter{
		Last: time.Now(),
		Path: remote,
		Size: rsrcSize,
	}
	bytesDownloaded, ioErr := io.Copy(rsrcFile,
		io.TeeReader(rsrcReader, counter))
	if ioErr != nil {
		return "", errors.Wrapf(ioErr, "error downloading '%s'", remote)
	}
	klog.Infof("Downloaded %s... %s completed.", remote,
		humanize.Bytes(uint64(bytesDownloaded)))
	return targetPath, nil
}
