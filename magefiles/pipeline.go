//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// corpusSeed is the default corpus seed file imported by Seed.
const corpusSeed = "corpus/seed.yaml"

// Seed imports corpus/seed.yaml into the local corpus.
func Seed() error {
	mg.Deps(Build)
	if _, err := os.Stat(corpusSeed); err != nil {
		return fmt.Errorf("no corpus seed at %s: %w", corpusSeed, err)
	}
	return polymax("corpus", "import", corpusSeed)
}

// Analyze creates a synthesis run for the repository.
func Analyze(repo string) error {
	mg.Deps(Build)
	return polymax("analyze", repo)
}

// Manuscript runs the remaining stages for a research run (ingest through
// manuscript) and writes the result to output/manuscripts.
func Manuscript(runID string) error {
	mg.Deps(Build)
	steps := [][]string{
		{"ingest", runID},
		{"discover", runID, "--mode", "broad"},
		{"extract", runID},
		{"synthesize", runID},
		{"manuscript", runID, "--output", "output/manuscripts"},
	}
	for _, args := range steps {
		if err := polymax(args...); err != nil {
			return err
		}
	}
	return nil
}

func polymax(args ...string) error {
	if err := sh.RunV(filepath.Join(binDir, binName), args...); err != nil {
		return fmt.Errorf("polymax %s: %w", args[0], err)
	}
	return nil
}
