package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wbrown/speech_data"
	"github.com/wbrown/speech_data/manifest"
	"k8s.io/klog/v2"
)

// Loads the data section of an experiment configuration and walks its
// training batches, reporting shapes and throughput.

type epochStats struct {
	batches int
	samples int
	frames  int
	tokens  int
}

func (s epochStats) report(name string, epoch int, elapsed time.Duration) {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	klog.Infof("%s epoch %d: %s batches, %s samples, %s frames, "+
		"%s tokens in %0.2fs (%0.2f samples/s)", name, epoch,
		humanize.Comma(int64(s.batches)), humanize.Comma(int64(s.samples)),
		humanize.Comma(int64(s.frames)), humanize.Comma(int64(s.tokens)),
		seconds, float64(s.samples)/seconds)
}

func inspectAudio(cfg speech_data.Config, epochs, maxBatches int) error {
	data, err := speech_data.LoadDataset(cfg)
	if err != nil {
		return err
	}
	defer data.Close()
	for _, msg := range data.Messages {
		fmt.Println(msg)
	}
	for epoch := 0; epoch < epochs; epoch++ {
		var stats epochStats
		start := time.Now()
		for maxBatches <= 0 || stats.batches < maxBatches {
			batch, nextErr := data.Train.Next()
			if nextErr == io.EOF {
				break
			} else if nextErr != nil {
				return nextErr
			}
			_, inputs, labels := batch.Tensors()
			klog.V(1).Infof("batch %d: features %v, tokens %v, first %s",
				stats.batches, inputs[0].Shape(), labels[0].Shape(),
				batch.IDs[0])
			stats.batches++
			stats.samples += batch.Size()
			for _, length := range batch.Lengths {
				stats.frames += length
			}
			for _, tokens := range batch.Tokens {
				stats.tokens += len(tokens)
			}
		}
		stats.report(data.Train.Name(), epoch, time.Since(start))
		data.Train.Reset()
	}
	return nil
}

func inspectText(cfg speech_data.Config, epochs, maxBatches int) error {
	data, err := speech_data.LoadTextset(cfg)
	if err != nil {
		return err
	}
	defer data.Close()
	for _, msg := range data.Messages {
		fmt.Println(msg)
	}
	for epoch := 0; epoch < epochs; epoch++ {
		var stats epochStats
		start := time.Now()
		for maxBatches <= 0 || stats.batches < maxBatches {
			batch, nextErr := data.Train.Next()
			if nextErr == io.EOF {
				break
			} else if nextErr != nil {
				return nextErr
			}
			_, inputs, _ := batch.Tensors()
			klog.V(1).Infof("batch %d: tokens %v", stats.batches,
				inputs[0].Shape())
			stats.batches++
			stats.samples += batch.Size()
			for _, tokens := range batch.Tokens {
				stats.tokens += len(tokens)
			}
		}
		stats.report(data.Train.Name(), epoch, time.Since(start))
		data.Train.Reset()
	}
	return nil
}

// scanManifests lists every manifest under dir with its entry count.
func scanManifests(dir string) error {
	paths, err := manifest.Glob(dir, "**/*.csv")
	if err != nil {
		return err
	}
	total := 0
	for _, path := range paths {
		entries, readErr := manifest.Read(path)
		if readErr != nil {
			return readErr
		}
		total += len(entries)
		fmt.Printf("%s\t%s\n", path, humanize.Comma(int64(len(entries))))
	}
	fmt.Printf("%d manifests, %s entries\n", len(paths),
		humanize.Comma(int64(total)))
	return nil
}

func main() {
	klog.InitFlags(nil)
	configPath := flag.String("config", "",
		"path to the YAML experiment configuration")
	textOnly := flag.Bool("text", false,
		"load the corpus as text only language model data")
	epochs := flag.Int("epochs", 1, "number of training epochs to walk")
	maxBatches := flag.Int("max_batches", 0,
		"stop each epoch after this many batches, 0 for no limit")
	nJobs := flag.Int("n_jobs", -1,
		"override the number of collation workers")
	scanDir := flag.String("scan", "",
		"list the manifests found under this directory and exit")
	flag.Parse()
	defer klog.Flush()

	if *scanDir != "" {
		if err := scanManifests(*scanDir); err != nil {
			klog.Fatal(err)
		}
		return
	}
	if *configPath == "" {
		flag.Usage()
		klog.Fatal("Must provide -config")
	}
	cfg, err := speech_data.LoadConfig(*configPath)
	if err != nil {
		klog.Fatal(err)
	}
	if *nJobs >= 0 {
		cfg.NJobs = *nJobs
	}
	klog.Infof("Inspecting %s from %s", cfg.Data.Corpus.Name, *configPath)
	if *textOnly {
		err = inspectText(cfg, *epochs, *maxBatches)
	} else {
		err = inspectAudio(cfg, *epochs, *maxBatches)
	}
	if err != nil {
		klog.Fatalf("%+v", err)
	}
}
