package hypergraph

import (
	"fmt"
)

// Contract absorbs node v into node u: u gains v's weight, every hyperedge
// incident to v either rewrites v's pin slot to u or, if u is already a
// pin, drops v. Edges shrinking to a single pin are disabled. v itself is
// disabled until Uncontract restores it. The returned Memento carries the
// exact reversal data.
//
// Both nodes must be enabled and distinct; violating this is a programming
// error and panics.
func (h *Hypergraph) Contract(u, v int) Memento {
	h.checkNode(u)
	h.checkNode(v)
	if u == v {
		panic(fmt.Sprintf("hypergraph: cannot contract node %d with itself", u))
	}
	if !h.nodeEnabled[u] {
		panic(fmt.Sprintf("hypergraph: contraction representative %d is disabled", u))
	}
	if !h.nodeEnabled[v] {
		panic(fmt.Sprintf("hypergraph: contraction target %d is disabled", v))
	}

	m := Memento{U: u, V: v}
	for _, he := range h.incidence[v] {
		if h.containsPin(he, u) {
			// u and v share the edge: the edge shrinks.
			h.removePin(he, v)
			m.merged = append(m.merged, he)
			if len(h.pins[he]) == 1 {
				// Sole remaining pin is u. Single-pin edges carry no
				// connectivity and would break the rater's precondition.
				h.disableEdge(he, u)
				m.removed = append(m.removed, he)
			}
		} else {
			h.replacePin(he, v, u)
			h.incidence[u] = append(h.incidence[u], he)
			m.replaced = append(m.replaced, he)
		}
	}

	h.nodeWeight[u] += h.nodeWeight[v]
	h.nodeEnabled[v] = false
	h.currentNumNodes--
	return m
}

// Uncontract reverses one contraction. Mementos must be applied in strict
// reverse order of their Contract calls; v being already enabled indicates
// an out-of-order replay and panics.
func (h *Hypergraph) Uncontract(m Memento) {
	u, v := m.U, m.V
	h.checkNode(u)
	h.checkNode(v)
	if h.nodeEnabled[v] {
		panic(fmt.Sprintf("hypergraph: uncontract out of order: node %d is already enabled", v))
	}
	if !h.nodeEnabled[u] {
		panic(fmt.Sprintf("hypergraph: uncontract representative %d is disabled", u))
	}

	for _, he := range m.removed {
		h.edgeEnabled[he] = true
		h.currentNumEdges++
		h.incidence[u] = append(h.incidence[u], he)
	}
	for _, he := range m.replaced {
		h.replacePin(he, u, v)
		h.removeIncidence(u, he)
	}
	for _, he := range m.merged {
		h.pins[he] = append(h.pins[he], v)
	}

	h.nodeWeight[u] -= h.nodeWeight[v]
	h.partID[v] = h.partID[u]
	h.nodeEnabled[v] = true
	h.currentNumNodes++
}

func (h *Hypergraph) containsPin(he, u int) bool {
	for _, p := range h.pins[he] {
		if p == u {
			return true
		}
	}
	return false
}

func (h *Hypergraph) removePin(he, u int) {
	pins := h.pins[he]
	for i, p := range pins {
		if p == u {
			pins[i] = pins[len(pins)-1]
			h.pins[he] = pins[:len(pins)-1]
			return
		}
	}
	panic(fmt.Sprintf("hypergraph: node %d is not a pin of edge %d", u, he))
}

func (h *Hypergraph) replacePin(he, old, new int) {
	for i, p := range h.pins[he] {
		if p == old {
			h.pins[he][i] = new
			return
		}
	}
	panic(fmt.Sprintf("hypergraph: node %d is not a pin of edge %d", old, he))
}

// disableEdge removes he from the incidence list of its sole remaining pin.
func (h *Hypergraph) disableEdge(he, lastPin int) {
	h.edgeEnabled[he] = false
	h.currentNumEdges--
	h.removeIncidence(lastPin, he)
}

func (h *Hypergraph) removeIncidence(u, he int) {
	inc := h.incidence[u]
	for i := len(inc) - 1; i >= 0; i-- {
		if inc[i] == he {
			inc[i] = inc[len(inc)-1]
			h.incidence[u] = inc[:len(inc)-1]
			return
		}
	}
	panic(fmt.Sprintf("hypergraph: edge %d is not incident to node %d", he, u))
}
