//go:build mage

// Package main contains Mage build targets for polymax developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects: corpus
// seed files, section template overrides, and assembled manuscripts.
var projectDirs = []string{
	"corpus",
	"templates/research",
	"templates/review",
	"output/manuscripts",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "polymax"
	cmdPkg  = "./cmd/polymax"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + buildVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	if err := sh.RunV("go", "test", "-race", "./..."); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

// buildVersion returns POLYMAX_VERSION, or the short git commit, or "dev".
func buildVersion() string {
	if v := os.Getenv("POLYMAX_VERSION"); v != "" {
		return v
	}
	if rev, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && rev != "" {
		return rev
	}
	return "dev"
}

// statRoots are the source trees Stats reports on.
var statRoots = []string{"cmd", "internal", "pkg"}

// pkgStats holds non-blank line counts for one Go package directory.
type pkgStats struct {
	dir        string
	prod, test int
	templates  int
}

// Stats prints non-blank Go lines per package (production and test), the
// built-in section template count, and the word count of the design docs.
func Stats() error {
	var all []*pkgStats
	for _, root := range statRoots {
		pkgs, err := packageLines(root)
		if err != nil {
			return err
		}
		all = append(all, pkgs...)
	}

	var prod, test int
	fmt.Printf("%-28s %8s %8s\n", "Package", "Prod", "Test")
	for _, p := range all {
		fmt.Printf("%-28s %8d %8d\n", p.dir, p.prod, p.test)
		prod += p.prod
		test += p.test
	}
	fmt.Printf("%-28s %8d %8d\n", "total", prod, test)

	tmpls, err := templateCount(filepath.Join("internal", "section", "templates.go"))
	if err != nil {
		return err
	}
	fmt.Printf("\nBuilt-in section templates: %d\n", tmpls)

	for _, doc := range []string{"DESIGN.md", "SPEC_FULL.md"} {
		data, err := os.ReadFile(doc)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", doc, err)
		}
		fmt.Printf("Words (%s): %d\n", doc, len(strings.Fields(string(data))))
	}
	return nil
}

// packageLines walks root and returns one entry per directory holding Go
// files, in walk order.
func packageLines(root string) ([]*pkgStats, error) {
	byDir := make(map[string]*pkgStats)
	var out []*pkgStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		ps := byDir[dir]
		if ps == nil {
			ps = &pkgStats{dir: dir}
			byDir[dir] = ps
			out = append(out, ps)
		}
		if strings.HasSuffix(path, "_test.go") {
			ps.test += n
		} else {
			ps.prod += n
		}
		return nil
	})
	return out, err
}

func nonBlankLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}

// templateCount counts the built-in templates by their section keys.
func templateCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		for _, key := range []string{"Abstract:", "Introduction:", "Methods:", "Results:", "Discussion:"} {
			if strings.HasPrefix(line, key) {
				n++
			}
		}
	}
	return n, nil
}
