//go:build ignore

// generate_testdata.go creates standard outline datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	tests/testdata/benchmark/small.jsonl   (100 items)
//	tests/testdata/benchmark/medium.jsonl  (1000 items)
//	tests/testdata/benchmark/large.jsonl   (5000 items)
//	tests/testdata/benchmark/huge.jsonl    (20000 items)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/treework/pkg/outline"
	"github.com/vanderheijden86/treework/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
	desc string
}

var datasets = []datasetSpec{
	{"small", 100, "100 items - shallow nesting"},
	{"medium", 1000, "1000 items - mixed nesting"},
	{"large", 5000, "5000 items - mixed nesting"},
	{"huge", 20000, "20000 items - deep and wide"},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d items)...\n", ds.name, ds.size)

		cfg := testutil.GeneratorConfig{
			Seed:           int64(ds.size), // Reproducible per-size
			IDPrefix:       "BENCH",
			IncludeTags:    true,
			IncludeDue:     true,
			HeadingParents: true,
			StatusMix:      []outline.Status{outline.StatusOpen, outline.StatusDone},
			KindMix:        []outline.Kind{outline.KindNote, outline.KindTask, outline.KindHeading},
		}

		gen := testutil.New(cfg)
		tf := gen.Random(ds.size, calculateNesting(ds.size))
		items := gen.ToItems(tf)
		jsonl := testutil.ToJSONL(items)

		outputPath := filepath.Join(outputDir, ds.name+".jsonl")
		if err := os.WriteFile(outputPath, []byte(jsonl), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes) - %s\n", outputPath, len(jsonl), ds.desc)
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}

func calculateNesting(size int) float64 {
	// Deeper nesting for small sets, flatter for huge ones so row counts
	// stay realistic for a visible outline.
	switch {
	case size <= 100:
		return 0.7
	case size <= 1000:
		return 0.5
	case size <= 5000:
		return 0.4
	default:
		return 0.3
	}
}
