package model

// Wire shapes for the visualization frontend. Field names follow the
// frontend contract, not the storage layout.

type VizNode struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Type       string                 `json:"type"`
	GroupID    string                 `json:"group_id"`
	Summary    string                 `json:"summary"`
	Labels     []string               `json:"labels"`
	CreatedAt  string                 `json:"created_at"`
	Attributes map[string]interface{} `json:"attributes"`
}

type VizEdge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Type      string   `json:"type"`
	Fact      string   `json:"fact"`
	UUID      string   `json:"uuid"`
	CreatedAt string   `json:"created_at"`
	ValidAt   *string  `json:"valid_at"`
	ExpiredAt *string  `json:"expired_at"`
	Episodes  []string `json:"episodes"`
}

// Triplet bundles an edge with both resolved endpoints for clients that
// render relationship cards instead of a force graph.
type Triplet struct {
	SourceNode VizNode `json:"sourceNode"`
	Edge       VizEdge `json:"edge"`
	TargetNode VizNode `json:"targetNode"`
}

type GraphStats struct {
	NodeCount  int `json:"node_count"`
	EdgeCount  int `json:"edge_count"`
	LabelCount int `json:"label_count"`
}

// GraphData is one aggregation snapshot: already deduplicated, dangling
// edges removed, embedding attributes stripped.
type GraphData struct {
	Nodes    []VizNode  `json:"nodes"`
	Edges    []VizEdge  `json:"edges"`
	Triplets []Triplet  `json:"triplets"`
	Labels   []string   `json:"labels"`
	Stats    GraphStats `json:"stats"`
}

// GroupStats counts the contents of a single group.
type GroupStats struct {
	GroupID      string `json:"group_id"`
	NodeCount    int64  `json:"node_count"`
	EdgeCount    int64  `json:"edge_count"`
	EpisodeCount int64  `json:"episode_count"`
}
