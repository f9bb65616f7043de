package aggregate

import (
	"strings"

	"github.com/agenthands/boron/internal/core/model"
)

// EmbeddingSuffix marks attribute keys holding vector payloads. They are
// stripped from visualization output, which otherwise ships every attribute.
const EmbeddingSuffix = "_embedding"

// NodeToViz maps a canonical node onto the frontend wire shape.
func NodeToViz(n model.EntityNode) model.VizNode {
	attributes := make(map[string]interface{})
	for k, v := range n.Attributes {
		if strings.HasSuffix(k, EmbeddingSuffix) {
			continue
		}
		attributes[k] = v
	}

	return model.VizNode{
		ID:         n.UUID,
		Name:       n.Name,
		Type:       n.PrimaryLabel(),
		GroupID:    n.GroupID,
		Summary:    n.Summary,
		Labels:     n.Labels,
		CreatedAt:  n.CreatedAt,
		Attributes: attributes,
	}
}

// EdgeToViz maps a canonical edge onto the frontend wire shape. The storage
// relationship tag is a generic marker, so the display type comes from the
// name property when one is set.
func EdgeToViz(e model.EntityEdge) model.VizEdge {
	edgeType := e.Name
	if edgeType == "" {
		edgeType = model.RelatesToType
	}

	episodes := e.Episodes
	if episodes == nil {
		episodes = []string{}
	}

	return model.VizEdge{
		Source:    e.SourceUUID,
		Target:    e.TargetUUID,
		Type:      edgeType,
		Fact:      e.Fact,
		UUID:      e.UUID,
		CreatedAt: e.CreatedAt,
		ValidAt:   e.ValidAt,
		ExpiredAt: e.ExpiredAt,
		Episodes:  episodes,
	}
}

// BuildTriplets resolves every edge against the node set. Edges whose
// endpoints are not both present are excluded.
func BuildTriplets(nodes []model.VizNode, edges []model.VizEdge) []model.Triplet {
	byID := make(map[string]model.VizNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	triplets := make([]model.Triplet, 0, len(edges))
	for _, e := range edges {
		source, okS := byID[e.Source]
		target, okT := byID[e.Target]
		if !okS || !okT {
			continue
		}
		triplets = append(triplets, model.Triplet{
			SourceNode: source,
			Edge:       e,
			TargetNode: target,
		})
	}
	return triplets
}
