package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/glacierpost/pkg/units"
)

func main() {
	km3 := flag.Float64("km3", 0, "Ice volume in km³ (required)")
	rhoIce := flag.Float64("rho-ice", units.DefaultIceDensity, "Ice density in kg/m³")
	rhoWater := flag.Float64("rho-water", units.DefaultWaterDensity, "Freshwater density in kg/m³")
	flag.Parse()

	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "km3" {
			set = true
		}
	})
	if !set {
		fmt.Fprintf(os.Stderr, "Usage: %s -km3 <volume> [-rho-ice 900] [-rho-water 1000]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	liters := units.IceToFreshwater(*km3, units.WithIceDensity(*rhoIce), units.WithWaterDensity(*rhoWater))
	fmt.Printf("%g km³ of ice = %g liters of freshwater\n", *km3, liters)
}
