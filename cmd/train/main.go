// feednet-train: trains a feedforward network one gradient step per sample.
//
// Usage:
//
//	feednet-train --arch "2 2 1" --lr 0.5 --seed 42 --passes 100
//	feednet-train --arch "4 8 3" --data iris.csv
//
// Without --data the trainer runs on the built-in XOR dataset.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"feednet/network"
	"feednet/utils"
)

var (
	archStr      = flag.String("arch", "2 2 1", "Layer sizes, input first, space separated")
	learningRate = flag.Float64("lr", 0.5, "Learning rate")
	seed         = flag.Uint64("seed", 42, "Random seed for weight/bias initialization")
	dataPath     = flag.String("data", "", "CSV dataset (inputs then targets per record); empty uses built-in XOR")
	passes       = flag.Int("passes", 1, "Number of passes over the sample sequence")
	verbose      = flag.Bool("verbose", false, "Print per-pass layer states and error vectors")
)

var xorSamples = []network.Sample{
	{Inputs: []float64{0, 0}, Targets: []float64{0}},
	{Inputs: []float64{0, 1}, Targets: []float64{1}},
	{Inputs: []float64{1, 0}, Targets: []float64{1}},
	{Inputs: []float64{1, 1}, Targets: []float64{0}},
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "feednet-train: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	arch, err := utils.ParseArchitecture(*archStr)
	if err != nil {
		return fmt.Errorf("parsing architecture: %w", err)
	}
	cfg := utils.Config{
		Architecture: arch,
		LearningRate: *learningRate,
		Seed:         *seed,
		DataPath:     *dataPath,
		Passes:       *passes,
	}
	if err := utils.ValidateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	samples := xorSamples
	if cfg.DataPath != "" {
		inputNum := arch[0]
		targetNum := arch[len(arch)-1]
		samples, err = utils.LoadSamplesFile(cfg.DataPath, inputNum, targetNum)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Architecture:  %v\n", cfg.Architecture)
	fmt.Printf("  Learning Rate: %.4f\n", cfg.LearningRate)
	fmt.Printf("  Seed:          %d\n", cfg.Seed)
	fmt.Printf("  Samples:       %d\n", len(samples))
	fmt.Printf("  Passes:        %d\n", cfg.Passes)
	fmt.Println()

	diagnostics := io.Writer(io.Discard)
	if *verbose {
		diagnostics = os.Stdout
	}
	net, err := network.New(network.Config{
		LayerSizes:   cfg.Architecture,
		LearningRate: cfg.LearningRate,
		Rand:         rand.New(rand.NewSource(cfg.Seed)),
		Diagnostics:  diagnostics,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	for pass := 0; pass < cfg.Passes; pass++ {
		if err := net.Train(samples); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}
	}
	fmt.Printf("Training took %.3fs\n\n", time.Since(start).Seconds())

	for _, s := range samples {
		if err := net.SetInput(s.Inputs); err != nil {
			return err
		}
		if err := net.FeedForward(); err != nil {
			return err
		}
		fmt.Printf("input %v -> output %v (target %v)\n", s.Inputs, net.Output(), s.Targets)
	}
	return nil
}
