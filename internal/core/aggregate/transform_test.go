package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/boron/internal/core/model"
)

func TestNodeToVizStripsEmbeddings(t *testing.T) {
	node := model.EntityNode{
		UUID:    "n1",
		Name:    "Alice",
		GroupID: "alpha",
		Labels:  []string{"Entity", "Person"},
		Attributes: map[string]interface{}{
			"occupation":     "engineer",
			"name_embedding": []float64{0.1, 0.2},
			"fact_embedding": []float64{0.3},
		},
	}

	viz := NodeToViz(node)

	assert.Equal(t, "n1", viz.ID)
	assert.Equal(t, "Person", viz.Type)
	assert.Equal(t, map[string]interface{}{"occupation": "engineer"}, viz.Attributes)
}

func TestNodeToVizFallbackType(t *testing.T) {
	// A node carrying only the structural marker keeps it as display type.
	viz := NodeToViz(model.EntityNode{UUID: "n1", Labels: []string{"Entity"}})
	assert.Equal(t, "Entity", viz.Type)
}

func TestEdgeToVizTypeFallback(t *testing.T) {
	named := EdgeToViz(model.EntityEdge{UUID: "e1", Name: "WORKS_AT"})
	assert.Equal(t, "WORKS_AT", named.Type)

	unnamed := EdgeToViz(model.EntityEdge{UUID: "e2"})
	assert.Equal(t, "RELATES_TO", unnamed.Type)
	assert.NotNil(t, unnamed.Episodes)
}

func TestBuildTripletsExcludesUnresolvable(t *testing.T) {
	nodes := []model.VizNode{{ID: "n1"}, {ID: "n2"}}
	edges := []model.VizEdge{
		{UUID: "e1", Source: "n1", Target: "n2"},
		{UUID: "e2", Source: "n1", Target: "missing"},
	}

	triplets := BuildTriplets(nodes, edges)

	assert.Len(t, triplets, 1)
	assert.Equal(t, "e1", triplets[0].Edge.UUID)
}

func TestLabelsPresentExcludesBaseAsPrimary(t *testing.T) {
	nodes := []model.EntityNode{
		{Labels: []string{"Entity", "Person"}},
		{Labels: []string{"Entity", "Person"}},
		{Labels: []string{"Entity"}},
	}

	labels := LabelsPresent(nodes)
	assert.Equal(t, []string{"Entity", "Person"}, labels)
}
