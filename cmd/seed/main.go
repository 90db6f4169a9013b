// Command seed generates a synthetic applicant dataset and writes it to a
// CSV file with ground-truth product labels.
//
// Usage:
//
//	go run ./cmd/seed [flags]
//
// Flags:
//
//	-n     number of applicants to generate (default: 500)
//	-out   output CSV path (default: data/applicants.csv)
//	-seed  RNG seed for reproducibility (default: 42)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"agriflow/bnpl-api/internal/generator"
)

func main() {
	n := flag.Int("n", 500, "number of applicants to generate")
	out := flag.String("out", "data/applicants.csv", "output CSV path")
	seed := flag.Int64("seed", generator.DefaultSeed, "RNG seed")
	flag.Parse()

	if *n < 1 {
		fmt.Fprintln(os.Stderr, "n must be at least 1")
		os.Exit(1)
	}

	profiles := generator.Generate(*n, *seed)

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
			os.Exit(1)
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := generator.WriteCSV(f, profiles); err != nil {
		fmt.Fprintf(os.Stderr, "write error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d applicants (seed %d) → %s\n", len(profiles), *seed, *out)
}
