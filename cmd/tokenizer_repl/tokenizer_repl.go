package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wbrown/speech_data/text"
	"k8s.io/klog/v2"
)

// A REPL for interacting with the transcript tokenizers.

func main() {
	klog.InitFlags(nil)
	mode := flag.String("mode", "character",
		"tokenizer mode: character, word or subword")
	vocab := flag.String("vocab", "",
		"vocab file, or sentencepiece model for subword mode")
	split := flag.String("split", "",
		"word splitter for word mode: whitespace or prose")
	normalize := flag.Bool("normalize", true,
		"apply the Swahili transcript normalization before encoding")
	flag.Parse()
	defer klog.Flush()

	tokenizer, err := text.LoadTokenizer(text.TokenizerConfig{
		Mode:      *mode,
		VocabFile: *vocab,
		Split:     *split,
	})
	if err != nil {
		klog.Fatal(err)
	}
	var transform text.TextTransform = text.Identity
	if *normalize {
		transform = text.NewSwahiliTransform()
	}
	klog.Infof("%s tokenizer, vocab size %d", tokenizer.TokenType(),
		tokenizer.VocabSize())

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(">>> ")
		input, readErr := reader.ReadString('\n')
		if readErr == io.EOF && input == "" {
			fmt.Println()
			return
		} else if readErr != nil && readErr != io.EOF {
			klog.Fatal(readErr)
		}
		// Remove trailing newline and replace \n with newline.
		input = strings.Replace(strings.TrimSuffix(input, "\n"), "\\n",
			"\n", -1)
		normalized := transform.Transform(input)
		tokens := tokenizer.Encode(normalized)
		fmt.Printf("%q\n%v\n%q\n", normalized, tokens,
			tokenizer.Decode(tokens))
	}
}
