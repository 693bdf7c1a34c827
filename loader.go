package speech_data

import (
	"io"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/wbrown/speech_data/types"
	"k8s.io/klog/v2"
)

// CollateFunc turns a raw batch into a padded one.
type CollateFunc[T any, B Batch] func(batch RawBatch[T]) (B, error)

// LoaderConfig
// BatchSize counts dataset accesses per batch, so it must be 1 for a
// bucketed dataset. With Workers above 1, batches are collated concurrently
// and come out in completion order.
type LoaderConfig struct {
	Name      string
	BatchSize int
	Shuffle   bool
	DropLast  bool
	Workers   int
	Seed      int64
}

type loaderResult[B any] struct {
	batch B
	err   error
}

// loaderRun is one epoch of concurrent collation.
type loaderRun[B any] struct {
	results chan loaderResult[B]
	stop    chan struct{}
}

// Loader
// Draws batches of indices from a Dataset, one epoch at a time, and
// collates them. Loader implements gomlx's train.Dataset. A Loader is not
// safe for concurrent use; its workers only read the dataset.
type Loader[T any, B Batch] struct {
	cfg     LoaderConfig
	dataset *Dataset[T]
	collate CollateFunc[T, B]

	epoch  int
	groups [][]int
	cursor int
	run    *loaderRun[B]
	closed bool
}

var (
	_ train.Dataset = (*Loader[types.Sample, *AudioBatch])(nil)
	_ train.Dataset = (*Loader[types.Tokens, *TextBatch])(nil)
)

func NewLoader[T any, B Batch](dataset *Dataset[T], collate CollateFunc[T, B],
	cfg LoaderConfig) (*Loader[T, B], error) {
	if cfg.BatchSize < 1 {
		return nil, configErrorf("loader batch size must be at least 1, "+
			"got %d", cfg.BatchSize)
	}
	if dataset.BucketSize() > 1 && cfg.BatchSize != 1 {
		return nil, configErrorf("%s is bucketed by %d, the loader batch "+
			"size must be 1, got %d", dataset.Name(), dataset.BucketSize(),
			cfg.BatchSize)
	}
	if cfg.Workers < 0 {
		return nil, configErrorf("worker count must not be negative, got %d",
			cfg.Workers)
	}
	if cfg.Name == "" {
		cfg.Name = dataset.Name()
	}
	loader := &Loader[T, B]{cfg: cfg, dataset: dataset, collate: collate}
	loader.startEpoch()
	return loader, nil
}

// Name implements train.Dataset.
func (l *Loader[T, B]) Name() string { return l.cfg.Name }

// Epoch is the zero based number of the current epoch.
func (l *Loader[T, B]) Epoch() int { return l.epoch }

// NumBatches is the number of batches in each epoch.
func (l *Loader[T, B]) NumBatches() int { return len(l.groups) }

func (l *Loader[T, B]) startEpoch() {
	order := make([]int, l.dataset.Len())
	for idx := range order {
		order[idx] = idx
	}
	if l.cfg.Shuffle {
		rng := rand.New(rand.NewSource(l.cfg.Seed + int64(l.epoch)))
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	l.groups = make([][]int, 0, len(order)/l.cfg.BatchSize+1)
	for start := 0; start < len(order); start += l.cfg.BatchSize {
		end := min(start+l.cfg.BatchSize, len(order))
		if end-start < l.cfg.BatchSize && l.cfg.DropLast {
			break
		}
		l.groups = append(l.groups, order[start:end])
	}
	l.cursor = 0
	klog.V(1).Infof("%s: epoch %d, %s batches", l.cfg.Name, l.epoch,
		humanize.Comma(int64(len(l.groups))))
	if l.cfg.Workers > 1 {
		l.run = l.startWorkers(l.groups)
	}
}

func (l *Loader[T, B]) collateGroup(group []int) (B, error) {
	if len(group) == 1 {
		raw, err := l.dataset.Get(group[0])
		if err != nil {
			var zero B
			return zero, err
		}
		return l.collate(raw)
	}
	items := make([]T, len(group))
	for idx, index := range group {
		item, err := l.dataset.Item(index)
		if err != nil {
			var zero B
			return zero, err
		}
		items[idx] = item
	}
	return l.collate(Flat(items...))
}

func (l *Loader[T, B]) startWorkers(groups [][]int) *loaderRun[B] {
	run := &loaderRun[B]{
		results: make(chan loaderResult[B], l.cfg.Workers),
		stop:    make(chan struct{}),
	}
	jobs := make(chan []int)
	go func() {
		defer close(jobs)
		for _, group := range groups {
			select {
			case jobs <- group:
			case <-run.stop:
				return
			}
		}
	}()
	var wg sync.WaitGroup
	for worker := 0; worker < l.cfg.Workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				batch, err := l.collateGroup(group)
				select {
				case run.results <- loaderResult[B]{batch: batch, err: err}:
				case <-run.stop:
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(run.results)
	}()
	return run
}

func (l *Loader[T, B]) stopWorkers() {
	if l.run == nil {
		return
	}
	close(l.run.stop)
	for range l.run.results {
		// Discard batches collated after the stop.
	}
	l.run = nil
}

// Next returns the next batch of the epoch, or io.EOF once it is exhausted.
func (l *Loader[T, B]) Next() (B, error) {
	var zero B
	if l.closed {
		klog.Warningf("%s: Next called on a closed loader", l.cfg.Name)
		return zero, io.EOF
	}
	if l.run != nil {
		result, ok := <-l.run.results
		if !ok {
			return zero, io.EOF
		}
		return result.batch, result.err
	}
	if l.cursor >= len(l.groups) {
		return zero, io.EOF
	}
	group := l.groups[l.cursor]
	l.cursor++
	return l.collateGroup(group)
}

// Reset implements train.Dataset: it starts the next epoch, reshuffled
// when shuffling is enabled.
func (l *Loader[T, B]) Reset() {
	l.stopWorkers()
	l.closed = false
	l.epoch++
	l.startEpoch()
}

// Yield implements train.Dataset.
func (l *Loader[T, B]) Yield() (spec any, inputs []*tensors.Tensor,
	labels []*tensors.Tensor, err error) {
	batch, err := l.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	spec, inputs, labels = batch.Tensors()
	return spec, inputs, labels, nil
}

// Close stops any collation still in flight. The loader cannot be used
// afterwards unless it is Reset.
func (l *Loader[T, B]) Close() {
	l.stopWorkers()
	l.groups = nil
	l.cursor = 0
	l.closed = true
}
