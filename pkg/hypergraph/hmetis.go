package hypergraph

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// hMetis format codes for the optional third header field.
const (
	fmtUnweighted  = 0
	fmtEdgeWeights = 1
	fmtNodeWeights = 10
	fmtBothWeights = 11
)

// ReadHMetis loads a hypergraph from an hMetis .hgr file. The header line
// is "<numEdges> <numNodes> [fmt]" where fmt 1 adds a leading weight to
// every edge line, fmt 10 appends one node-weight line per node, and fmt
// 11 does both. Pin ids in the file are 1-based; they are shifted to
// 0-based ids. Comment lines start with '%'. Single-pin edges are skipped:
// they carry no connectivity information.
func ReadHMetis(path string) (*Hypergraph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hypergraph file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	header, err := nextLine(scanner)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) < 2 || len(fields) > 3 {
		return nil, fmt.Errorf("malformed header %q: want '<numEdges> <numNodes> [fmt]'", header)
	}
	numEdges, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid edge count %q: %w", fields[0], err)
	}
	numNodes, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid node count %q: %w", fields[1], err)
	}
	if numNodes <= 0 || numEdges < 0 {
		return nil, fmt.Errorf("invalid hypergraph dimensions: %d nodes, %d edges", numNodes, numEdges)
	}
	format := fmtUnweighted
	if len(fields) == 3 {
		format, err = strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("invalid fmt code %q: %w", fields[2], err)
		}
		switch format {
		case fmtUnweighted, fmtEdgeWeights, fmtNodeWeights, fmtBothWeights:
		default:
			return nil, fmt.Errorf("unsupported fmt code %d", format)
		}
	}
	hasEdgeWeights := format == fmtEdgeWeights || format == fmtBothWeights
	hasNodeWeights := format == fmtNodeWeights || format == fmtBothWeights

	h := New(numNodes)

	for i := 0; i < numEdges; i++ {
		line, err := nextLine(scanner)
		if err != nil {
			return nil, fmt.Errorf("failed to read edge %d: %w", i+1, err)
		}
		values, err := parseInts(line)
		if err != nil {
			return nil, fmt.Errorf("malformed edge line %d: %w", i+1, err)
		}
		weight := 1
		if hasEdgeWeights {
			if len(values) < 1 {
				return nil, fmt.Errorf("edge line %d is missing its weight", i+1)
			}
			weight = values[0]
			values = values[1:]
		}
		pins := make([]int, len(values))
		for j, pin := range values {
			if pin < 1 || pin > numNodes {
				return nil, fmt.Errorf("edge line %d: pin %d out of range [1,%d]", i+1, pin, numNodes)
			}
			pins[j] = pin - 1
		}
		if len(pins) < 2 {
			continue
		}
		if _, err := h.AddEdge(pins, weight); err != nil {
			return nil, fmt.Errorf("edge line %d: %w", i+1, err)
		}
	}

	if hasNodeWeights {
		for u := 0; u < numNodes; u++ {
			line, err := nextLine(scanner)
			if err != nil {
				return nil, fmt.Errorf("failed to read weight of node %d: %w", u+1, err)
			}
			values, err := parseInts(line)
			if err != nil || len(values) != 1 {
				return nil, fmt.Errorf("malformed node weight line for node %d: %q", u+1, line)
			}
			if values[0] <= 0 {
				return nil, fmt.Errorf("node %d has non-positive weight %d", u+1, values[0])
			}
			h.SetNodeWeight(u, values[0])
		}
	}

	return h, nil
}

// nextLine returns the next non-empty, non-comment line.
func nextLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("unexpected end of file")
}

func parseInts(line string) ([]int, error) {
	fields := strings.Fields(line)
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", f, err)
		}
		values[i] = v
	}
	return values, nil
}
