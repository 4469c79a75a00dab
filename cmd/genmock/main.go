// Command genmock writes synthetic FARS accident files for demos and manual
// testing of the fars command. The files follow the real naming scheme and
// column layout, including sentinel coordinates on about one row in ten.
//
// Usage:
//
//	go run ./cmd/genmock -out data -years 2013,2014,2015 -rows 2000 -states 1,6,48
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/fixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "directory to write accident_<year> files into")
	yearsFlag := flag.String("years", "2013,2014,2015", "comma-separated years")
	rows := flag.Int("rows", 1000, "accidents per year")
	statesFlag := flag.String("states", "1,6,12,36,48", "comma-separated FARS state numbers")
	seed := flag.Uint64("seed", 42, "random seed")
	ext := flag.String("ext", ".csv.bz2", "file suffix: .csv.bz2, .csv.gz, .csv.zst or .csv")
	flag.Parse()

	if *rows <= 0 {
		return fmt.Errorf("-rows must be positive")
	}

	years := domain.ParseYears(strings.Split(*yearsFlag, ","))
	states, err := parseInts(*statesFlag)
	if err != nil {
		return fmt.Errorf("-states: %w", err)
	}
	if len(states) == 0 {
		return fmt.Errorf("-states is empty")
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	for _, y := range years {
		if !y.Valid() {
			return fmt.Errorf("-years: invalid year in %q", *yearsFlag)
		}
		name := strings.TrimSuffix(domain.MakeFilename(y), ".csv.bz2") + *ext
		path := filepath.Join(*out, name)
		if err := fixture.WriteFile(path, fixture.Generate(y, *rows, states, *seed)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("%s: %d records", path, *rows)
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
