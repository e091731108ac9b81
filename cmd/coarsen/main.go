package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/coarsening"
	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/community"
	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/hypergraph"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	hgrFile := os.Args[1]

	config := coarsening.NewConfig()
	if len(os.Args) >= 3 {
		if err := config.LoadFromFile(os.Args[2]); err != nil {
			fmt.Printf("Error loading config %s: %v\n", os.Args[2], err)
			os.Exit(1)
		}
	}
	logger := config.CreateLogger()

	hg, err := hypergraph.ReadHMetis(hgrFile)
	if err != nil {
		logger.Error().Err(err).Str("file", hgrFile).Msg("Failed to load hypergraph")
		os.Exit(1)
	}
	logger.Info().
		Int("nodes", hg.InitialNumNodes()).
		Int("edges", hg.InitialNumEdges()).
		Int("total_weight", hg.TotalNodeWeight()).
		Msg("Hypergraph loaded")

	assignment := community.Uniform(hg.InitialNumNodes())
	if config.EnableCommunityDetection() {
		if config.Verbose() {
			logger.Info().Msg("Performing community detection")
		}
		assignment, err = community.Detect(hg, config.Resolution(), config.RandomSeed(), logger)
		if err != nil {
			logger.Error().Err(err).Msg("Community detection failed")
			os.Exit(1)
		}
	}
	hg.SetCommunities(assignment.Communities)

	rng := rand.New(rand.NewSource(config.RandomSeed()))
	rater := coarsening.NewRater(hg, config, assignment.Communities, coarsening.DefaultPolicies(rng))
	coarsener := coarsening.NewCoarsener(hg, config, rater, rng, coarsening.Hooks{}, logger)

	limit := config.ContractionLimit()
	nodesBefore := hg.CurrentNumNodes()
	start := time.Now()
	coarsener.Coarsen(limit)
	logger.Info().
		Int("limit", limit).
		Int("nodes_before", nodesBefore).
		Int("nodes_after", hg.CurrentNumNodes()).
		Int("edges_after", hg.CurrentNumEdges()).
		Int("contractions", len(coarsener.History())).
		Int64("runtime_ms", time.Since(start).Milliseconds()).
		Msg("Coarsening completed")

	start = time.Now()
	coarsener.Uncoarsen(coarsening.NoOpRefiner{})
	logger.Info().
		Int("nodes", hg.CurrentNumNodes()).
		Int("edges", hg.CurrentNumEdges()).
		Int64("runtime_ms", time.Since(start).Milliseconds()).
		Msg("Uncoarsening completed")

	if hg.CurrentNumNodes() != nodesBefore {
		logger.Error().
			Int("expected", nodesBefore).
			Int("actual", hg.CurrentNumNodes()).
			Msg("Uncoarsening did not restore the original node count")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: coarsen <hypergraph.hgr> [config.yaml]")
	fmt.Println("")
	fmt.Println("Coarsens an hMetis hypergraph down to the configured contraction")
	fmt.Println("limit and verifies that uncoarsening restores it exactly.")
	fmt.Println("")
	fmt.Println("Example:")
	fmt.Println("  coarsen ibm01.hgr config.yaml")
}
