package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/chrissnell/glacierpost/internal/synth"
)

func main() {
	root := flag.String("root", "", "Model working directory to write per_glacier/ into (required)")
	rgiID := flag.String("rgi", "RGI60-11.00897", "RGI identifier of the synthetic glacier")
	suffixes := flag.String("suffixes", "_historical", "Comma-separated run suffixes to write model diagnostics for")
	startYear := flag.Int("climate-start", 1979, "First year of the climate record")
	endYear := flag.Int("climate-end", 2019, "Last year of the climate record")
	noStats := flag.Bool("no-statistics", false, "Do not write diagnostics.json")
	flag.Parse()

	if *root == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -root <dir> [-rgi RGI60-11.00897]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	g := synth.Default(*rgiID)
	g.Suffixes = strings.Split(*suffixes, ",")
	g.ClimateStartYear = *startYear
	g.ClimateEndYear = *endYear
	if *noStats {
		g.FlowlineMinElev = math.NaN()
	}

	d, err := synth.Write(*root, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing synthetic glacier: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote synthetic glacier %s to %s\n", d.RGIID, d.Path)
	fmt.Printf("  runs: %s\n", strings.Join(g.Suffixes, ", "))
	fmt.Printf("  climate: %d-%d\n", g.ClimateStartYear, g.ClimateEndYear)
}
