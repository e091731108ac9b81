package coarsening

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/hypergraph"
)

// ContractionRecord identifies one performed contraction: V was absorbed
// into U. Records form a strictly ordered, append-only sequence.
type ContractionRecord struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Hooks lets callers keep auxiliary structures (priority queues,
// fixed-vertex bookkeeping) consistent with the hypergraph. Nil hooks are
// skipped.
type Hooks struct {
	// OnContraction fires after each performed contraction with the
	// representative and the absorbed node.
	OnContraction func(u, v int)
	// OnEndOfPass fires once after every coarsening pass, for batch-style
	// auxiliary-structure refresh.
	OnEndOfPass func()
	// OnUncontraction fires after each reversed contraction.
	OnUncontraction func(u, v int)
}

// Refiner improves the partition around a freshly uncontracted node pair
// during uncoarsening. Refine reports whether it found an improvement.
type Refiner interface {
	Refine(u, v int) bool
}

// NoOpRefiner satisfies Refiner for pipelines that uncoarsen without
// local search.
type NoOpRefiner struct{}

func (NoOpRefiner) Refine(u, v int) bool { return false }

// Coarsener drives repeated contraction passes over a hypergraph until the
// node count reaches a limit or no admissible contraction remains, and
// replays the recorded history in reverse during uncoarsening. It composes
// the container, a Rater and the contraction history; randomness comes
// from an explicit caller-owned source so concurrent instances never share
// state.
type Coarsener struct {
	hg     *hypergraph.Hypergraph
	cfg    *Config
	rater  *Rater
	rng    *rand.Rand
	hooks  Hooks
	logger zerolog.Logger

	history []hypergraph.Memento
	stats   Statistics
}

// NewCoarsener wires a coarsener from its collaborators. rater must rate
// the same hypergraph hg.
func NewCoarsener(hg *hypergraph.Hypergraph, cfg *Config, rater *Rater, rng *rand.Rand, hooks Hooks, logger zerolog.Logger) *Coarsener {
	return &Coarsener{
		hg:     hg,
		cfg:    cfg,
		rater:  rater,
		rng:    rng,
		hooks:  hooks,
		logger: logger,
	}
}

// Coarsen contracts node pairs until at most limit nodes remain or a full
// pass performs no contraction. Both outcomes are normal termination.
func (c *Coarsener) Coarsen(limit int) {
	start := time.Now()
	passNr := 0
	currentNodes := make([]int, 0, c.hg.CurrentNumNodes())

	for c.hg.CurrentNumNodes() > limit {
		passStart := time.Now()
		c.rater.ResetMatches()
		currentNodes = currentNodes[:0]
		numNodesBeforePass := c.hg.CurrentNumNodes()
		currentNodes = append(currentNodes, c.hg.Nodes()...)
		c.rng.Shuffle(len(currentNodes), func(i, j int) {
			currentNodes[i], currentNodes[j] = currentNodes[j], currentNodes[i]
		})

		for _, hn := range currentNodes {
			// hn may have been absorbed as someone else's target earlier
			// in this pass.
			if !c.hg.NodeIsEnabled(hn) {
				continue
			}
			rating := c.rater.Rate(hn)
			if rating.Valid {
				c.rater.MarkAsMatched(hn)
				c.rater.MarkAsMatched(rating.Target)
				c.contract(hn, rating.Target)
			}
			if c.hg.CurrentNumNodes() <= limit {
				break
			}
		}

		if c.hooks.OnEndOfPass != nil {
			c.hooks.OnEndOfPass()
		}

		contractions := numNodesBeforePass - c.hg.CurrentNumNodes()
		info := PassInfo{
			Pass:         passNr,
			Contractions: contractions,
			NodesAfter:   c.hg.CurrentNumNodes(),
			EdgesAfter:   c.hg.CurrentNumEdges(),
			RuntimeMS:    time.Since(passStart).Milliseconds(),
		}
		c.stats.Passes = append(c.stats.Passes, info)
		c.stats.TotalContractions += contractions
		c.logger.Debug().
			Int("pass", info.Pass).
			Int("nodes", info.NodesAfter).
			Int("edges", info.EdgesAfter).
			Int("contractions", info.Contractions).
			Msg("Coarsening pass completed")

		if contractions == 0 {
			c.logger.Debug().Int("pass", passNr).Msg("Pass performed no contraction, stopping")
			break
		}
		passNr++
	}
	c.stats.RuntimeMS += time.Since(start).Milliseconds()
}

// Stats returns reporting data accumulated by Coarsen.
func (c *Coarsener) Stats() Statistics { return c.stats }

// contract performs one contraction of v into u and records it. With
// prefer_heavier_side enabled the higher-degree endpoint becomes the
// representative instead of the visited node.
func (c *Coarsener) contract(u, v int) {
	if c.cfg.PreferHeavierSide() && c.hg.NodeDegree(v) > c.hg.NodeDegree(u) {
		u, v = v, u
	}
	c.perform(u, v)
}

func (c *Coarsener) perform(u, v int) {
	m := c.hg.Contract(u, v)
	c.history = append(c.history, m)
	if c.hooks.OnContraction != nil {
		c.hooks.OnContraction(u, v)
	}
}

// SimulateContractions replays a previously recorded contraction sequence
// verbatim and in order, without rating. It fast-forwards this instance to
// the state the recording instance reached. Every u and v must be enabled
// at the moment of its own step; violation panics.
func (c *Coarsener) SimulateContractions(records []ContractionRecord) {
	for _, rec := range records {
		if !c.hg.NodeIsEnabled(rec.U) {
			panic(fmt.Sprintf("coarsening: replay representative %d is disabled", rec.U))
		}
		if !c.hg.NodeIsEnabled(rec.V) {
			panic(fmt.Sprintf("coarsening: replay target %d is disabled", rec.V))
		}
		c.perform(rec.U, rec.V)
	}
}

// History returns the performed contractions in performed order.
func (c *Coarsener) History() []ContractionRecord {
	records := make([]ContractionRecord, len(c.history))
	for i, m := range c.history {
		records[i] = ContractionRecord{U: m.U, V: m.V}
	}
	return records
}

// Uncoarsen reverses every recorded contraction in strict LIFO order. For
// each restored node pair it invokes the uncontraction hook and then the
// refiner over the fresh neighborhood. It reports whether refinement found
// an improvement at any level; a failed level never aborts the remaining
// ones. The replay is iterative, so history length does not grow the call
// stack.
func (c *Coarsener) Uncoarsen(refiner Refiner) bool {
	improvement := false
	for len(c.history) > 0 {
		m := c.history[len(c.history)-1]
		c.history = c.history[:len(c.history)-1]

		c.hg.Uncontract(m)
		if c.hooks.OnUncontraction != nil {
			c.hooks.OnUncontraction(m.U, m.V)
		}
		if refiner.Refine(m.U, m.V) {
			improvement = true
		}
	}
	return improvement
}
