package audio

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// Cached
// Wraps t with an adaptive replacement cache of `size` utterances keyed by
// path. The cache is safe for concurrent use. Errors are not cached.
func Cached(t Transform, size int) (Transform, error) {
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create feature cache of size %d",
			size)
	}
	return func(path string) (Features, error) {
		if hit, ok := cache.Get(path); ok {
			return hit.(Features), nil
		}
		feats, err := t(path)
		if err != nil {
			return nil, err
		}
		cache.Add(path, feats)
		return feats, nil
	}, nil
}
