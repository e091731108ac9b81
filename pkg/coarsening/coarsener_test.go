package coarsening

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/hypergraph"
)

// gridHypergraph builds a small connected hypergraph: one spanning edge
// plus overlapping triples, enough structure for multi-pass coarsening.
func gridHypergraph(t *testing.T, numNodes int) *hypergraph.Hypergraph {
	t.Helper()
	h := hypergraph.New(numNodes)
	all := make([]int, numNodes)
	for i := range all {
		all[i] = i
	}
	_, err := h.AddEdge(all, 1)
	require.NoError(t, err)
	for i := 0; i+2 < numNodes; i += 2 {
		_, err := h.AddEdge([]int{i, i + 1, i + 2}, 2)
		require.NoError(t, err)
	}
	return h
}

func newTestCoarsener(h *hypergraph.Hypergraph, cfg *Config, seed int64, hooks Hooks) *Coarsener {
	rng := rand.New(rand.NewSource(seed))
	rater := NewRater(h, cfg, nil, DefaultPolicies(rng))
	return NewCoarsener(h, cfg, rater, rng, hooks, zerolog.Nop())
}

func TestCoarsenReachesLimit(t *testing.T) {
	h := gridHypergraph(t, 16)
	c := newTestCoarsener(h, testConfig(100), 42, Hooks{})

	c.Coarsen(4)

	assert.LessOrEqual(t, h.CurrentNumNodes(), 4)
	assert.Equal(t, 16-h.CurrentNumNodes(), len(c.History()))
	assert.Equal(t, 16, h.TotalNodeWeight())
}

func TestCoarsenStopsExactlyAtLimit(t *testing.T) {
	h := gridHypergraph(t, 16)
	c := newTestCoarsener(h, testConfig(100), 7, Hooks{})

	c.Coarsen(10)

	// The inner scan breaks the moment the limit is reached; it never
	// overshoots.
	assert.Equal(t, 10, h.CurrentNumNodes())
}

func TestCoarsenStallTerminates(t *testing.T) {
	// Threshold 1 forbids every contraction (any merge weighs 2): the
	// first pass performs nothing and the loop must stop.
	h := gridHypergraph(t, 8)
	c := newTestCoarsener(h, testConfig(1), 3, Hooks{})

	c.Coarsen(2)

	assert.Equal(t, 8, h.CurrentNumNodes())
	assert.Empty(t, c.History())
}

func TestCoarsenSkipsNodesAbsorbedEarlierInPass(t *testing.T) {
	// With a permissive threshold every node gets visited; absorbed nodes
	// must be skipped, which shows up as a consistent history: each V
	// appears exactly once and never again as a U.
	h := gridHypergraph(t, 12)
	c := newTestCoarsener(h, testConfig(100), 99, Hooks{})

	c.Coarsen(2)

	absorbed := make(map[int]bool)
	for _, rec := range c.History() {
		assert.False(t, absorbed[rec.U], "disabled node used as representative")
		assert.False(t, absorbed[rec.V], "node absorbed twice")
		absorbed[rec.V] = true
	}
}

func TestCoarsenHooks(t *testing.T) {
	h := gridHypergraph(t, 8)

	var contractions [][2]int
	passes := 0
	c := newTestCoarsener(h, testConfig(100), 5, Hooks{
		OnContraction: func(u, v int) { contractions = append(contractions, [2]int{u, v}) },
		OnEndOfPass:   func() { passes++ },
	})

	c.Coarsen(2)

	require.Equal(t, len(c.History()), len(contractions))
	for i, rec := range c.History() {
		assert.Equal(t, [2]int{rec.U, rec.V}, contractions[i])
	}
	assert.GreaterOrEqual(t, passes, 1)
}

func TestCoarsenDeterministicForFixedSeed(t *testing.T) {
	run := func() []ContractionRecord {
		h := gridHypergraph(t, 16)
		c := newTestCoarsener(h, testConfig(100), 1234, Hooks{})
		c.Coarsen(3)
		return c.History()
	}

	assert.Equal(t, run(), run())
}

func TestCoarsenSeedChangesOrder(t *testing.T) {
	run := func(seed int64) []ContractionRecord {
		h := gridHypergraph(t, 16)
		c := newTestCoarsener(h, testConfig(100), seed, Hooks{})
		c.Coarsen(3)
		return c.History()
	}

	// Not guaranteed in principle, but these seeds diverge; a regression
	// to shared global randomness would also break determinism above.
	assert.NotEqual(t, run(1), run(2))
}

func TestSimulateContractionsReplaysToSameState(t *testing.T) {
	h1 := gridHypergraph(t, 12)
	c1 := newTestCoarsener(h1, testConfig(100), 77, Hooks{})
	c1.Coarsen(3)

	h2 := gridHypergraph(t, 12)
	replayed := 0
	c2 := newTestCoarsener(h2, testConfig(100), 0, Hooks{
		OnContraction: func(u, v int) { replayed++ },
	})
	c2.SimulateContractions(c1.History())

	assert.Equal(t, len(c1.History()), replayed)
	assert.Equal(t, h1.CurrentNumNodes(), h2.CurrentNumNodes())
	assert.Equal(t, h1.CurrentNumEdges(), h2.CurrentNumEdges())
	assert.Equal(t, h1.Nodes(), h2.Nodes())
	for _, u := range h1.Nodes() {
		assert.Equal(t, h1.NodeWeight(u), h2.NodeWeight(u))
	}
	assert.Equal(t, c1.History(), c2.History())
}

func TestSimulateContractionsDisabledNodePanics(t *testing.T) {
	h := gridHypergraph(t, 4)
	c := newTestCoarsener(h, testConfig(100), 1, Hooks{})

	assert.Panics(t, func() {
		c.SimulateContractions([]ContractionRecord{{U: 0, V: 1}, {U: 2, V: 1}})
	})
}

type recordingRefiner struct {
	improveAt map[int]bool
	calls     int
}

func (r *recordingRefiner) Refine(u, v int) bool {
	r.calls++
	return r.improveAt[r.calls]
}

func TestUncoarsenReversesInLIFOOrder(t *testing.T) {
	h := gridHypergraph(t, 10)

	var contracted, uncontracted [][2]int
	c := newTestCoarsener(h, testConfig(100), 11, Hooks{
		OnContraction:   func(u, v int) { contracted = append(contracted, [2]int{u, v}) },
		OnUncontraction: func(u, v int) { uncontracted = append(uncontracted, [2]int{u, v}) },
	})

	c.Coarsen(2)
	c.Uncoarsen(NoOpRefiner{})

	require.Equal(t, len(contracted), len(uncontracted))
	for i := range contracted {
		assert.Equal(t, contracted[len(contracted)-1-i], uncontracted[i])
	}
	assert.Equal(t, 10, h.CurrentNumNodes())
	assert.Empty(t, c.History())
}

func TestUncoarsenRestoresOriginalHypergraph(t *testing.T) {
	h := gridHypergraph(t, 10)
	weightsBefore := make([]int, 10)
	for u := 0; u < 10; u++ {
		weightsBefore[u] = h.NodeWeight(u)
	}
	edgesBefore := h.CurrentNumEdges()

	c := newTestCoarsener(h, testConfig(100), 13, Hooks{})
	c.Coarsen(2)
	c.Uncoarsen(NoOpRefiner{})

	assert.Equal(t, 10, h.CurrentNumNodes())
	assert.Equal(t, edgesBefore, h.CurrentNumEdges())
	for u := 0; u < 10; u++ {
		assert.True(t, h.NodeIsEnabled(u))
		assert.Equal(t, weightsBefore[u], h.NodeWeight(u))
	}
}

func TestUncoarsenReportsRefinementImprovement(t *testing.T) {
	coarsen := func() *Coarsener {
		h := gridHypergraph(t, 8)
		c := newTestCoarsener(h, testConfig(100), 21, Hooks{})
		c.Coarsen(2)
		return c
	}

	c := coarsen()
	levels := len(c.History())
	require.Greater(t, levels, 2)

	// One improving level is enough, and a failing level must not stop
	// the remaining replays.
	refiner := &recordingRefiner{improveAt: map[int]bool{2: true}}
	assert.True(t, c.Uncoarsen(refiner))
	assert.Equal(t, levels, refiner.calls)

	c = coarsen()
	refiner = &recordingRefiner{improveAt: map[int]bool{}}
	assert.False(t, c.Uncoarsen(refiner))
}

func TestCoarsenCollectsPassStatistics(t *testing.T) {
	h := gridHypergraph(t, 12)
	c := newTestCoarsener(h, testConfig(100), 8, Hooks{})

	c.Coarsen(3)

	stats := c.Stats()
	require.NotEmpty(t, stats.Passes)
	assert.Equal(t, len(c.History()), stats.TotalContractions)

	total := 0
	for i, pass := range stats.Passes {
		assert.Equal(t, i, pass.Pass)
		total += pass.Contractions
	}
	assert.Equal(t, stats.TotalContractions, total)
	assert.Equal(t, h.CurrentNumNodes(), stats.Passes[len(stats.Passes)-1].NodesAfter)
}

func TestCoarsenPreferHeavierSideOrientation(t *testing.T) {
	// Star around node 0: with the alternate orientation enabled the
	// high-degree hub absorbs its chosen leaf even when the leaf was the
	// visited node.
	h := hypergraph.New(6)
	for v := 1; v < 6; v++ {
		_, err := h.AddEdge([]int{0, v}, 1)
		require.NoError(t, err)
	}

	cfg := testConfig(100)
	cfg.Set("coarsening.prefer_heavier_side", true)
	c := newTestCoarsener(h, cfg, 2, Hooks{})

	// Stopping at two nodes keeps the hub's degree strictly above every
	// leaf's for the whole run.
	c.Coarsen(2)

	require.Len(t, c.History(), 4)
	for _, rec := range c.History() {
		assert.Equal(t, 0, rec.U, "hub must always be the representative")
	}
}
