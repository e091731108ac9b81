package coarsening

import (
	"fmt"
	"math"
	"sort"

	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/hypergraph"
)

const invalidTarget = -1

// minRating is the sentinel score of an invalid rating.
var minRating = math.Inf(-1)

// Rating is the scored outcome of evaluating one node's best contraction
// candidate. An invalid rating has Target == -1 and the minimum score.
type Rating struct {
	Target int
	Value  float64
	Valid  bool
}

// MatchSet tracks which nodes were already matched during the current
// coarsening pass. Acceptance policies read it as a soft signal.
type MatchSet struct {
	bits []bool
}

func newMatchSet(size int) *MatchSet {
	return &MatchSet{bits: make([]bool, size)}
}

// IsSet reports whether node u was matched this pass.
func (m *MatchSet) IsSet(u int) bool { return m.bits[u] }

func (m *MatchSet) set(u int) { m.bits[u] = true }

func (m *MatchSet) reset() { clear(m.bits) }

// sparseScores accumulates per-candidate scores for a single Rate call.
// Values live in a dense slice indexed by node id; the touched list makes
// clearing proportional to the number of candidates, not the graph size.
type sparseScores struct {
	value   []float64
	touched []int
}

func newSparseScores(size int) *sparseScores {
	return &sparseScores{value: make([]float64, size)}
}

func (s *sparseScores) add(u int, score float64) {
	if s.value[u] == 0 {
		s.touched = append(s.touched, u)
	}
	s.value[u] += score
}

func (s *sparseScores) clear() {
	for _, u := range s.touched {
		s.value[u] = 0
	}
	s.touched = s.touched[:0]
}

// Rater computes, for one node, the best contraction partner under the
// injected policies. It owns a per-call score accumulator and the per-pass
// already-matched set; it never mutates the hypergraph.
type Rater struct {
	hg          *hypergraph.Hypergraph
	policies    Policies
	communities []int

	maxAllowedNodeWeight int

	tmpRatings *sparseScores
	matched    *MatchSet
}

// NewRater builds a rater over hg. communities holds one community id per
// initial node; pass nil to treat the whole hypergraph as one community.
func NewRater(hg *hypergraph.Hypergraph, cfg *Config, communities []int, policies Policies) *Rater {
	if communities == nil {
		communities = make([]int, hg.InitialNumNodes())
	}
	if len(communities) != hg.InitialNumNodes() {
		panic(fmt.Sprintf("coarsening: community assignment covers %d nodes, need %d",
			len(communities), hg.InitialNumNodes()))
	}
	return &Rater{
		hg:                   hg,
		policies:             policies,
		communities:          communities,
		maxAllowedNodeWeight: cfg.MaxAllowedNodeWeight(),
		tmpRatings:           newSparseScores(hg.InitialNumNodes()),
		matched:              newMatchSet(hg.InitialNumNodes()),
	}
}

// Rate returns the best contraction partner for u, or an invalid Rating if
// no admissible candidate exists. Ratings are computed fresh on every call:
// earlier contractions may have changed weights, so nothing is cached.
//
// Calling Rate on a disabled node, or on a node with a single-pin incident
// edge, is a programming error and panics.
func (r *Rater) Rate(u int) Rating {
	if !r.hg.NodeIsEnabled(u) {
		panic(fmt.Sprintf("coarsening: cannot rate disabled node %d", u))
	}

	weightU := r.hg.NodeWeight(u)
	for _, he := range r.hg.IncidentEdges(u) {
		size := r.hg.EdgeSize(he)
		if size <= 1 {
			panic(fmt.Sprintf("coarsening: node %d has single-pin incident edge %d", u, he))
		}
		score := r.policies.Score.Score(r.hg.EdgeWeight(he), size)
		for _, v := range r.hg.Pins(he) {
			if v == u {
				continue
			}
			if weightU+r.hg.NodeWeight(v) > r.maxAllowedNodeWeight {
				continue
			}
			if !r.policies.Partition.Accept(r.hg, u, v) {
				continue
			}
			r.tmpRatings.add(v, score)
		}
	}

	// Scan candidates highest-id-first. The order is a documented
	// reproducibility contract: with LastRatingWins ties resolve toward
	// the lowest candidate id.
	sort.Sort(sort.Reverse(sort.IntSlice(r.tmpRatings.touched)))

	best := minRating
	target := invalidTarget
	for _, v := range r.tmpRatings.touched {
		rating := r.tmpRatings.value[v] / r.policies.Penalty.Penalty(weightU, r.hg.NodeWeight(v))
		if !r.policies.Community.SameCommunity(r.communities, u, v) {
			continue
		}
		if !r.policies.FixedVertex.Accept(r.hg, u, v) {
			continue
		}
		if r.policies.Acceptance.AcceptRating(rating, best, target, v, r.matched) {
			best = rating
			target = v
		}
	}
	r.tmpRatings.clear()

	if target == invalidTarget {
		return Rating{Target: invalidTarget, Value: minRating, Valid: false}
	}
	if r.communities[u] != r.communities[target] {
		panic(fmt.Sprintf("coarsening: rating crosses communities: %d (community %d) -> %d (community %d)",
			u, r.communities[u], target, r.communities[target]))
	}
	if r.hg.PartID(u) != r.hg.PartID(target) {
		panic(fmt.Sprintf("coarsening: rating crosses partition blocks: %d (block %d) -> %d (block %d)",
			u, r.hg.PartID(u), target, r.hg.PartID(target)))
	}
	return Rating{Target: target, Value: best, Valid: true}
}

// MarkAsMatched records that u was matched during the current pass.
func (r *Rater) MarkAsMatched(u int) { r.matched.set(u) }

// ResetMatches clears the already-matched set at the start of a pass.
func (r *Rater) ResetMatches() { r.matched.reset() }

// ThresholdNodeWeight returns the maximum combined weight a contraction
// may produce.
func (r *Rater) ThresholdNodeWeight() int { return r.maxAllowedNodeWeight }

// Communities exposes the assignment the rater constrains against.
func (r *Rater) Communities() []int { return r.communities }
