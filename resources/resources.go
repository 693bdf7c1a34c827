package resources

import (
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// FetchHTTP
// Fetch a resource from a remote HTTP server.
func FetchHTTP(uri string, rsrc string) (io.ReadCloser, error) {
	resp, remoteErr := http.Get(uri + "/" + rsrc)
	if remoteErr != nil {
		return nil, remoteErr
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("HTTP status code %d fetching %s/%s",
			resp.StatusCode, uri, rsrc)
	}
	return resp.Body, nil
}

// SizeHTTP
// Get the size of a resource from a remote HTTP server.
func SizeHTTP(uri string, rsrc string) (uint64, error) {
	resp, remoteErr := http.Head(uri + "/" + rsrc)
	if remoteErr != nil {
		return 0, remoteErr
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("HTTP status code %d sizing %s/%s",
			resp.StatusCode, uri, rsrc)
	}
	size, _ := strconv.ParseUint(resp.Header.Get("Content-Length"), 10, 64)
	return size, nil
}
