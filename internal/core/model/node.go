package model

// BaseLabel is the structural marker every entity node carries. It is never
// shown as a node's display type.
const BaseLabel = "Entity"

// Timestamps are kept as the RFC3339 strings stored in the graph; this layer
// passes them through rather than reinterpreting them.
type EntityNode struct {
	UUID       string                 `json:"uuid"`
	Name       string                 `json:"name"`
	GroupID    string                 `json:"group_id"`
	CreatedAt  string                 `json:"created_at"`
	Summary    string                 `json:"summary,omitempty"`
	Labels     []string               `json:"labels"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// PrimaryLabel returns the first non-structural label, or BaseLabel when the
// node carries no type tag of its own.
func (n EntityNode) PrimaryLabel() string {
	for _, l := range n.Labels {
		if l != BaseLabel {
			return l
		}
	}
	return BaseLabel
}

type EpisodicNode struct {
	UUID              string `json:"uuid"`
	Name              string `json:"name"`
	GroupID           string `json:"group_id"`
	CreatedAt         string `json:"created_at"`
	ValidAt           string `json:"valid_at"`
	Content           string `json:"content"`
	Source            string `json:"source"`
	SourceDescription string `json:"source_description"`
}
