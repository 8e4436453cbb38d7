// Command ambc compresses and decompresses files in the adaptive .ambc
// container format.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/archivelab/ambc"
)

var (
	inputFile  = flag.String("i", "", "input file path (required)")
	outputFile = flag.String("o", "", "output file path (required)")
	decompress = flag.Bool("d", false, "decompress instead of compress")
	chunkSize  = flag.Int("chunk-size", 4096, "initial chunk size in bytes (compress only)")
	workers    = flag.Int("workers", 0, "encode worker count (0 = hardware threads - 1)")
	jsonOutput = flag.Bool("json", false, "print statistics as JSON")
	version    = flag.Bool("version", false, "print version and exit")
)

const appVersion = "0.1.0"

var fs = afero.NewOsFs()

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file> -o <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Compresses or decompresses a file in the adaptive .ambc container format.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i input.bin -o archive.ambc\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -d -i archive.ambc -o restored.bin\n", os.Args[0])
	}
	flag.Parse()

	if *version {
		fmt.Printf("ambc version %s\n", appVersion)
		os.Exit(0)
	}

	if *inputFile == "" || *outputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: both -i and -o are required\n")
		flag.Usage()
		os.Exit(1)
	}

	input, err := afero.ReadFile(fs, *inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *inputFile, err)
		os.Exit(1)
	}

	if *decompress {
		runDecompress(input)
		return
	}
	runCompress(input)
}

func runCompress(input []byte) {
	opts := ambc.Options{ChunkSize: *chunkSize, Workers: *workers}
	archive, stats, err := ambc.Compress(input, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compressing: %v\n", err)
		os.Exit(1)
	}

	if err := afero.WriteFile(fs, *outputFile, archive, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outputFile, err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(stats)
		return
	}

	fmt.Printf("original:   %d bytes\n", stats.OriginalSize)
	fmt.Printf("archive:    %d bytes\n", len(archive))
	fmt.Printf("chunks:     %d (%d compressed, %d raw)\n", stats.TotalChunks, stats.CompressedChunks, stats.RawChunks)
	fmt.Printf("bytes saved: %d\n", stats.BytesSaved)
}

func runDecompress(archive []byte) {
	opts := ambc.Options{
		Warn: func(msg string) { fmt.Fprintf(os.Stderr, "warning: %s\n", msg) },
	}
	result, err := ambc.Decompress(archive, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decompressing: %v\n", err)
		os.Exit(1)
	}

	if err := afero.WriteFile(fs, *outputFile, result.Data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outputFile, err)
		os.Exit(1)
	}

	if result.RecoveredWarnings > 0 {
		fmt.Fprintf(os.Stderr, "Warning: recovered from %d chunk error(s) during decode\n", result.RecoveredWarnings)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	fmt.Printf("compressed:   %d bytes\n", result.CompressedSize)
	fmt.Printf("decompressed: %d bytes\n", result.DecompressedSize)
	fmt.Printf("elapsed:      %s\n", result.ElapsedTime)
}
