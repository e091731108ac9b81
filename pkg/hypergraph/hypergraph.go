package hypergraph

import (
	"fmt"
)

// FreeVertex marks a node that is not pinned to any block.
const FreeVertex = -1

// Hypergraph is an in-memory weighted hypergraph with support for exact,
// reversible node contractions. Nodes and edges are identified by dense
// integer ids starting at 0. Contracted (absorbed) nodes and hyperedges
// that shrink to a single pin are disabled rather than removed, so a later
// Uncontract can restore them in place.
type Hypergraph struct {
	numNodes int
	numEdges int

	currentNumNodes int
	currentNumEdges int

	nodeWeight  []int
	partID      []int
	community   []int
	fixedPart   []int
	nodeEnabled []bool

	edgeWeight  []int
	edgeEnabled []bool

	// incidence[u] holds the enabled hyperedges of node u.
	// pins[e] holds the pin nodes of hyperedge e.
	incidence [][]int
	pins      [][]int

	totalNodeWeight int
}

// Memento records one contraction of V into U together with the incidence
// bookkeeping needed to reverse it exactly. Mementos must be replayed in
// strict LIFO order.
type Memento struct {
	U int
	V int

	// replaced: edges where v's pin slot was rewritten to u.
	// merged: edges where v was dropped because u was already a pin.
	// removed: edges disabled because their pin count dropped to 1.
	replaced []int
	merged   []int
	removed  []int
}

// New creates a hypergraph with numNodes nodes of weight 1 and no edges.
func New(numNodes int) *Hypergraph {
	h := &Hypergraph{
		numNodes:        numNodes,
		currentNumNodes: numNodes,
		nodeWeight:      make([]int, numNodes),
		partID:          make([]int, numNodes),
		community:       make([]int, numNodes),
		fixedPart:       make([]int, numNodes),
		nodeEnabled:     make([]bool, numNodes),
		incidence:       make([][]int, numNodes),
		totalNodeWeight: numNodes,
	}
	for u := 0; u < numNodes; u++ {
		h.nodeWeight[u] = 1
		h.fixedPart[u] = FreeVertex
		h.nodeEnabled[u] = true
	}
	return h
}

// AddEdge adds a hyperedge over the given pins and returns its id.
// Duplicate pins are collapsed. Edges need at least two distinct pins;
// a single-pin edge carries no connectivity information.
func (h *Hypergraph) AddEdge(pins []int, weight int) (int, error) {
	if weight <= 0 {
		return 0, fmt.Errorf("edge weight must be positive: %d", weight)
	}
	seen := make(map[int]bool, len(pins))
	unique := make([]int, 0, len(pins))
	for _, u := range pins {
		if u < 0 || u >= h.numNodes {
			return 0, fmt.Errorf("pin out of range: %d (numNodes=%d)", u, h.numNodes)
		}
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	if len(unique) < 2 {
		return 0, fmt.Errorf("hyperedge needs at least 2 distinct pins, got %d", len(unique))
	}

	he := h.numEdges
	h.numEdges++
	h.currentNumEdges++
	h.edgeWeight = append(h.edgeWeight, weight)
	h.edgeEnabled = append(h.edgeEnabled, true)
	h.pins = append(h.pins, unique)
	for _, u := range unique {
		h.incidence[u] = append(h.incidence[u], he)
	}
	return he, nil
}

// InitialNumNodes returns the node count before any contraction.
func (h *Hypergraph) InitialNumNodes() int { return h.numNodes }

// InitialNumEdges returns the edge count before any contraction.
func (h *Hypergraph) InitialNumEdges() int { return h.numEdges }

// CurrentNumNodes returns the number of enabled nodes.
func (h *Hypergraph) CurrentNumNodes() int { return h.currentNumNodes }

// CurrentNumEdges returns the number of enabled edges.
func (h *Hypergraph) CurrentNumEdges() int { return h.currentNumEdges }

// TotalNodeWeight returns the summed weight of all nodes. Contractions
// preserve this quantity.
func (h *Hypergraph) TotalNodeWeight() int { return h.totalNodeWeight }

// Nodes returns the ids of all enabled nodes in ascending order.
func (h *Hypergraph) Nodes() []int {
	nodes := make([]int, 0, h.currentNumNodes)
	for u := 0; u < h.numNodes; u++ {
		if h.nodeEnabled[u] {
			nodes = append(nodes, u)
		}
	}
	return nodes
}

// NodeIsEnabled reports whether u has not been absorbed by a contraction.
func (h *Hypergraph) NodeIsEnabled(u int) bool {
	h.checkNode(u)
	return h.nodeEnabled[u]
}

// EdgeIsEnabled reports whether hyperedge he still has more than one pin.
func (h *Hypergraph) EdgeIsEnabled(he int) bool {
	h.checkEdge(he)
	return h.edgeEnabled[he]
}

// NodeWeight returns the weight of node u.
func (h *Hypergraph) NodeWeight(u int) int {
	h.checkNode(u)
	return h.nodeWeight[u]
}

// SetNodeWeight overrides the weight of node u.
func (h *Hypergraph) SetNodeWeight(u, weight int) {
	h.checkNode(u)
	if weight <= 0 {
		panic(fmt.Sprintf("hypergraph: node weight must be positive: node=%d weight=%d", u, weight))
	}
	h.totalNodeWeight += weight - h.nodeWeight[u]
	h.nodeWeight[u] = weight
}

// PartID returns the partition block of node u.
func (h *Hypergraph) PartID(u int) int {
	h.checkNode(u)
	return h.partID[u]
}

// SetPartID assigns node u to a partition block.
func (h *Hypergraph) SetPartID(u, part int) {
	h.checkNode(u)
	h.partID[u] = part
}

// Community returns the community id of node u.
func (h *Hypergraph) Community(u int) int {
	h.checkNode(u)
	return h.community[u]
}

// SetCommunities installs one community id per node. The slice must cover
// every initial node.
func (h *Hypergraph) SetCommunities(communities []int) {
	if len(communities) != h.numNodes {
		panic(fmt.Sprintf("hypergraph: community assignment covers %d nodes, need %d",
			len(communities), h.numNodes))
	}
	copy(h.community, communities)
}

// FixedPart returns the block node u is fixed to, or FreeVertex.
func (h *Hypergraph) FixedPart(u int) int {
	h.checkNode(u)
	return h.fixedPart[u]
}

// IsFixed reports whether node u is a fixed vertex.
func (h *Hypergraph) IsFixed(u int) bool {
	h.checkNode(u)
	return h.fixedPart[u] != FreeVertex
}

// SetFixed pins node u to a partition block.
func (h *Hypergraph) SetFixed(u, part int) {
	h.checkNode(u)
	h.fixedPart[u] = part
}

// EdgeWeight returns the weight of hyperedge he.
func (h *Hypergraph) EdgeWeight(he int) int {
	h.checkEdge(he)
	return h.edgeWeight[he]
}

// EdgeSize returns the current pin count of hyperedge he.
func (h *Hypergraph) EdgeSize(he int) int {
	h.checkEdge(he)
	return len(h.pins[he])
}

// Pins returns the pin nodes of hyperedge he. The returned slice is owned
// by the hypergraph and must not be mutated.
func (h *Hypergraph) Pins(he int) []int {
	h.checkEdge(he)
	return h.pins[he]
}

// IncidentEdges returns the enabled hyperedges of node u. The returned
// slice is owned by the hypergraph and must not be mutated.
func (h *Hypergraph) IncidentEdges(u int) []int {
	h.checkNode(u)
	return h.incidence[u]
}

// NodeDegree returns the number of enabled hyperedges incident to u.
func (h *Hypergraph) NodeDegree(u int) int {
	h.checkNode(u)
	return len(h.incidence[u])
}

func (h *Hypergraph) checkNode(u int) {
	if u < 0 || u >= h.numNodes {
		panic(fmt.Sprintf("hypergraph: node id out of range: %d (numNodes=%d)", u, h.numNodes))
	}
}

func (h *Hypergraph) checkEdge(he int) {
	if he < 0 || he >= h.numEdges {
		panic(fmt.Sprintf("hypergraph: edge id out of range: %d (numEdges=%d)", he, h.numEdges))
	}
}
