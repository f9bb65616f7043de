package model

// ExtractedEntity is one entity the LLM pulled out of a message.
type ExtractedEntity struct {
	Name       string                 `json:"name"`
	EntityType string                 `json:"entity_type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type ExtractedEntities struct {
	ExtractedEntities []ExtractedEntity `json:"extracted_entities"`
}

// ExtractedEdge references entities by the UUIDs they were assigned when
// persisted, so edge extraction runs after node extraction.
type ExtractedEdge struct {
	SourceNodeUUID string `json:"source_node_uuid"`
	TargetNodeUUID string `json:"target_node_uuid"`
	RelationType   string `json:"relation_type"`
	Fact           string `json:"fact"`
}

type ExtractedEdges struct {
	ExtractedEdges []ExtractedEdge `json:"extracted_edges"`
}
