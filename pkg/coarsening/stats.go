package coarsening

// PassInfo records what one coarsening pass achieved.
type PassInfo struct {
	Pass         int   `json:"pass"`
	Contractions int   `json:"contractions"`
	NodesAfter   int   `json:"nodes_after"`
	EdgesAfter   int   `json:"edges_after"`
	RuntimeMS    int64 `json:"runtime_ms"`
}

// Statistics accumulates reporting data across Coarsen invocations.
type Statistics struct {
	Passes            []PassInfo `json:"passes"`
	TotalContractions int        `json:"total_contractions"`
	RuntimeMS         int64      `json:"runtime_ms"`
}
