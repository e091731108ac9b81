package coarsening

import (
	"math/rand"

	"github.com/gilchrisn/hypergraph-coarsening-service/pkg/hypergraph"
)

// ScorePolicy turns one hyperedge into a per-candidate score contribution.
type ScorePolicy interface {
	Score(edgeWeight, edgeSize int) float64
}

// HeavyEdgeScore distributes an edge's weight over its pin pairs:
// weight / (size - 1). This is the fair per-pin-pair share of the edge.
type HeavyEdgeScore struct{}

func (HeavyEdgeScore) Score(edgeWeight, edgeSize int) float64 {
	return float64(edgeWeight) / float64(edgeSize-1)
}

// HeavyNodePenaltyPolicy divides an accumulated score to steer the matching
// away from piling weight onto already heavy nodes.
type HeavyNodePenaltyPolicy interface {
	Penalty(weightU, weightV int) float64
}

// NoWeightPenalty leaves the accumulated score untouched.
type NoWeightPenalty struct{}

func (NoWeightPenalty) Penalty(weightU, weightV int) float64 { return 1 }

// MultiplicativePenalty divides by the product of both node weights.
type MultiplicativePenalty struct{}

func (MultiplicativePenalty) Penalty(weightU, weightV int) float64 {
	return float64(weightU) * float64(weightV)
}

// TieBreakingPolicy decides whether a candidate with a score equal to the
// current best replaces it.
type TieBreakingPolicy interface {
	AcceptEqual() bool
}

// RandomRatingWins breaks ties by coin toss on the injected random source.
type RandomRatingWins struct {
	Rand *rand.Rand
}

func (p RandomRatingWins) AcceptEqual() bool { return p.Rand.Intn(2) == 1 }

// LastRatingWins always replaces the current best on a tie. Combined with
// the rater's highest-id-first candidate scan this makes the lowest-id
// candidate win deterministically.
type LastRatingWins struct{}

func (LastRatingWins) AcceptEqual() bool { return true }

// AcceptancePolicy makes the final call on whether a candidate rating
// replaces the current best. A strictly greater score always wins; the
// already-matched set is a soft deprioritization signal, not a hard filter.
type AcceptancePolicy interface {
	AcceptRating(score, bestScore float64, bestTarget, candidate int, matched *MatchSet) bool
}

// BestRatingWithTieBreaking accepts strictly better scores and delegates
// equal scores to the tie-breaking policy.
type BestRatingWithTieBreaking struct {
	TieBreaker TieBreakingPolicy
}

func (p BestRatingWithTieBreaking) AcceptRating(score, bestScore float64, bestTarget, candidate int, matched *MatchSet) bool {
	if score > bestScore {
		return true
	}
	return score == bestScore && bestTarget != invalidTarget && p.TieBreaker.AcceptEqual()
}

// BestRatingPreferringUnmatched accepts strictly better scores; on equal
// scores an unmatched candidate displaces a matched best, and equal match
// states fall through to the tie-breaking policy.
type BestRatingPreferringUnmatched struct {
	TieBreaker TieBreakingPolicy
}

func (p BestRatingPreferringUnmatched) AcceptRating(score, bestScore float64, bestTarget, candidate int, matched *MatchSet) bool {
	if score > bestScore {
		return true
	}
	if score < bestScore || bestTarget == invalidTarget {
		return false
	}
	bestMatched := matched.IsSet(bestTarget)
	candidateMatched := matched.IsSet(candidate)
	if bestMatched && !candidateMatched {
		return true
	}
	if bestMatched == candidateMatched {
		return p.TieBreaker.AcceptEqual()
	}
	return false
}

// CommunityPolicy restricts contractions to the precomputed community
// structure.
type CommunityPolicy interface {
	SameCommunity(communities []int, u, v int) bool
}

// UseCommunityStructure only admits candidates from u's own community.
type UseCommunityStructure struct{}

func (UseCommunityStructure) SameCommunity(communities []int, u, v int) bool {
	return communities[u] == communities[v]
}

// IgnoreCommunityStructure admits every candidate.
type IgnoreCommunityStructure struct{}

func (IgnoreCommunityStructure) SameCommunity(communities []int, u, v int) bool { return true }

// PartitionPolicy restricts contractions across partition blocks.
type PartitionPolicy interface {
	Accept(h *hypergraph.Hypergraph, u, v int) bool
}

// NormalPartitionPolicy only admits candidates in u's block.
type NormalPartitionPolicy struct{}

func (NormalPartitionPolicy) Accept(h *hypergraph.Hypergraph, u, v int) bool {
	return h.PartID(u) == h.PartID(v)
}

// FixedVertexPolicy decides which fixed-vertex combinations may contract.
// u is the representative, v the candidate being absorbed.
type FixedVertexPolicy interface {
	Accept(h *hypergraph.Hypergraph, u, v int) bool
}

// AllowFreeOnFixedFreeOnFreeFixedOnFixed admits absorbing a free vertex
// into anything, and a fixed vertex only into a vertex fixed to the same
// block. A fixed vertex never disappears into a free representative.
type AllowFreeOnFixedFreeOnFreeFixedOnFixed struct{}

func (AllowFreeOnFixedFreeOnFreeFixedOnFixed) Accept(h *hypergraph.Hypergraph, u, v int) bool {
	if !h.IsFixed(v) {
		return true
	}
	return h.IsFixed(u) && h.FixedPart(u) == h.FixedPart(v)
}

// OnlyFreeVertices admits a contraction only when neither side is fixed.
type OnlyFreeVertices struct{}

func (OnlyFreeVertices) Accept(h *hypergraph.Hypergraph, u, v int) bool {
	return !h.IsFixed(u) && !h.IsFixed(v)
}

// Policies bundles the strategies injected into a Rater. The zero value is
// unusable; construct with DefaultPolicies or fill every field.
type Policies struct {
	Score       ScorePolicy
	Penalty     HeavyNodePenaltyPolicy
	Acceptance  AcceptancePolicy
	Community   CommunityPolicy
	Partition   PartitionPolicy
	FixedVertex FixedVertexPolicy
}

// DefaultPolicies mirrors the multilevel coarsening defaults: heavy-edge
// scoring, no weight penalty, prefer-unmatched acceptance with random tie
// breaking on the caller-owned random source.
func DefaultPolicies(rng *rand.Rand) Policies {
	return Policies{
		Score:       HeavyEdgeScore{},
		Penalty:     NoWeightPenalty{},
		Acceptance:  BestRatingPreferringUnmatched{TieBreaker: RandomRatingWins{Rand: rng}},
		Community:   UseCommunityStructure{},
		Partition:   NormalPartitionPolicy{},
		FixedVertex: AllowFreeOnFixedFreeOnFreeFixedOnFixed{},
	}
}
