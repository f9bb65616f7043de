package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/driver"
)

func newGraphiti(d *MockDriver) *Graphiti {
	prompts := config.ExtractionPrompts{Nodes: "%s %s", Edges: "%s %s"}
	return NewGraphiti(d, &MockLLM{Response: "{}"}, nil, prompts, "main")
}

func TestCreateNodeAppliesTypeLabel(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(uuidRecord(params["uuid"].(string)))
	}}
	g := newGraphiti(mock)

	node, err := g.CreateNode(context.Background(), NodeInput{
		Name:    "Alice",
		Type:    "Person",
		Summary: "a person",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", node.Name)
	assert.Equal(t, "Person", node.Type)
	assert.Equal(t, "main", node.GroupID)
	assert.NotEmpty(t, node.ID)

	require.Len(t, mock.Queries, 1)
	assert.Contains(t, mock.Queries[0], "MERGE (n:Entity:Person")
}

func TestCreateNodeSanitizesTypeLabel(t *testing.T) {
	mock := &MockDriver{}
	g := newGraphiti(mock)

	_, err := g.CreateNode(context.Background(), NodeInput{
		Name: "Acme",
		Type: "Evil; MATCH (x) DETACH DELETE x //",
	})
	require.NoError(t, err)

	require.Len(t, mock.Queries, 1)
	assert.NotContains(t, mock.Queries[0], "DETACH DELETE x")
	assert.Contains(t, mock.Queries[0], "MERGE (n:Entity:EvilMATCHxDETACHDELETEx")
}

func TestCreateNodeRequiresName(t *testing.T) {
	g := newGraphiti(&MockDriver{})
	_, err := g.CreateNode(context.Background(), NodeInput{Name: "   "})
	assert.Error(t, err)
}

func TestGetNode(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(nodeRecord("n-1", "Alice", []string{"Person", "Entity"}, map[string]interface{}{
			"group_id": "team-a",
			"summary":  "a person",
		}))
	}}
	g := newGraphiti(mock)

	node, err := g.GetNode(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, "n-1", node.ID)
	assert.Equal(t, "Person", node.Type)
	assert.Equal(t, "team-a", node.GroupID)
}

func TestGetNodeNotFound(t *testing.T) {
	g := newGraphiti(&MockDriver{})
	_, err := g.GetNode(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNodePartial(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(nodeRecord("n-1", "Renamed", []string{"Entity"}, nil))
	}}
	g := newGraphiti(mock)

	name := "Renamed"
	node, err := g.UpdateNode(context.Background(), "n-1", NodeUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", node.Name)

	require.Len(t, mock.Queries, 1)
	assert.Contains(t, mock.Queries[0], "n.name = $name")
	assert.NotContains(t, mock.Queries[0], "n.summary")
	assert.NotContains(t, mock.Queries[0], "$attributes")
}

func TestUpdateNodeWithoutFieldsReadsBack(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(nodeRecord("n-1", "Alice", []string{"Entity"}, nil))
	}}
	g := newGraphiti(mock)

	node, err := g.UpdateNode(context.Background(), "n-1", NodeUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", node.Name)

	require.Len(t, mock.Queries, 1)
	assert.Equal(t, driver.GetNodeQuery, mock.Queries[0])
}

func TestUpdateNodeNotFound(t *testing.T) {
	g := newGraphiti(&MockDriver{})
	name := "x"
	_, err := g.UpdateNode(context.Background(), "missing", NodeUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNode(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(uuidRecord("n-1"))
	}}
	g := newGraphiti(mock)

	require.NoError(t, g.DeleteNode(context.Background(), "n-1"))

	err := newGraphiti(&MockDriver{}).DeleteNode(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEdgeDefaultsType(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(uuidRecord(params["uuid"].(string)))
	}}
	g := newGraphiti(mock)

	edge, err := g.CreateEdge(context.Background(), EdgeInput{
		SourceUUID: "n-1",
		TargetUUID: "n-2",
		Fact:       "Alice knows Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "RELATES_TO", edge.Type)
	assert.Equal(t, "main", edge.GroupID)
	assert.Equal(t, "Alice knows Bob", edge.Fact)
}

func TestCreateEdgeMissingEndpoints(t *testing.T) {
	// MERGE produced no rows because an endpoint MATCH failed
	g := newGraphiti(&MockDriver{})
	_, err := g.CreateEdge(context.Background(), EdgeInput{SourceUUID: "n-1", TargetUUID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.CreateEdge(context.Background(), EdgeInput{SourceUUID: "", TargetUUID: "n-2"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetEdge(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(edgeRecord("e-1", "n-1", "n-2", "team-a", "KNOWS", "Alice knows Bob"))
	}}
	g := newGraphiti(mock)

	edge, err := g.GetEdge(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, "e-1", edge.UUID)
	assert.Equal(t, "KNOWS", edge.Type)
	assert.Equal(t, "team-a", edge.GroupID)
}

func TestUpdateEdgePartial(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(edgeRecord("e-1", "n-1", "n-2", "main", "KNOWS", "updated fact"))
	}}
	g := newGraphiti(mock)

	fact := "updated fact"
	edge, err := g.UpdateEdge(context.Background(), "e-1", EdgeUpdate{Fact: &fact})
	require.NoError(t, err)
	assert.Equal(t, "updated fact", edge.Fact)

	require.Len(t, mock.Queries, 1)
	assert.Contains(t, mock.Queries[0], "r.fact = $fact")
	assert.NotContains(t, mock.Queries[0], "r.name")
}

func TestDeleteEdgeNotFound(t *testing.T) {
	g := newGraphiti(&MockDriver{})
	err := g.DeleteEdge(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetEpisode(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(&neo4j.Record{
			Keys: []string{"uuid", "name", "group_id", "created_at", "valid_at",
				"content", "source", "source_description"},
			Values: []interface{}{"ep-1", "note", "main", "2025-01-01T00:00:00Z",
				"2025-01-01T00:00:00Z", "Alice met Bob", "message", "submitted knowledge"},
		})
	}}
	g := newGraphiti(mock)

	ep, err := g.GetEpisode(context.Background(), "ep-1")
	require.NoError(t, err)
	assert.Equal(t, "ep-1", ep.UUID)
	assert.Equal(t, "Alice met Bob", ep.Content)
	assert.Equal(t, "message", ep.Source)
}

func TestListEpisodes(t *testing.T) {
	episodeKeys := []string{"uuid", "name", "group_id", "created_at", "valid_at",
		"content", "source", "source_description"}
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		return resultOf(
			&neo4j.Record{Keys: episodeKeys, Values: []interface{}{
				"ep-2", "later", "team-a", "2025-01-02T00:00:00Z", nil, "second note", "message", ""}},
			&neo4j.Record{Keys: episodeKeys, Values: []interface{}{
				"ep-1", "earlier", "team-a", "2025-01-01T00:00:00Z", nil, "first note", "message", ""}},
		)
	}}
	g := newGraphiti(mock)

	episodes, err := g.ListEpisodes(context.Background(), "team-a", 20)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "ep-2", episodes[0].UUID)
	assert.Equal(t, "second note", episodes[0].Content)

	assert.Equal(t, driver.ListEpisodesQuery, mock.Queries[0])
	assert.Equal(t, "team-a", mock.Params[0]["group_id"])
	assert.Equal(t, 20, mock.Params[0]["limit"])
}

func TestListEpisodesUsesDefaultGroup(t *testing.T) {
	mock := &MockDriver{}
	g := newGraphiti(mock)

	episodes, err := g.ListEpisodes(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, episodes)
	assert.Equal(t, "main", mock.Params[0]["group_id"])
}

func TestDeleteEpisodeNotFound(t *testing.T) {
	g := newGraphiti(&MockDriver{})
	err := g.DeleteEpisode(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGroupProtectsDefault(t *testing.T) {
	mock := &MockDriver{}
	g := newGraphiti(mock)

	assert.ErrorIs(t, g.DeleteGroup(context.Background(), "main"), ErrProtectedGroup)
	assert.ErrorIs(t, g.DeleteGroup(context.Background(), ""), ErrProtectedGroup)
	assert.Empty(t, mock.Queries)

	require.NoError(t, g.DeleteGroup(context.Background(), "team-a"))
	require.Len(t, mock.Queries, 1)
	assert.Equal(t, driver.DeleteGroupQuery, mock.Queries[0])
}

func TestRenameGroupValidation(t *testing.T) {
	g := newGraphiti(&MockDriver{})
	ctx := context.Background()

	assert.ErrorIs(t, g.RenameGroup(ctx, "team-a", "  "), ErrInvalidGroupID)
	assert.ErrorIs(t, g.RenameGroup(ctx, "", "team-b"), ErrInvalidGroupID)
	assert.ErrorIs(t, g.RenameGroup(ctx, "team-a", "team-a"), ErrInvalidGroupID)
}

func TestRenameGroupRunsBothSteps(t *testing.T) {
	mock := &MockDriver{}
	g := newGraphiti(mock)

	require.NoError(t, g.RenameGroup(context.Background(), "team-a", "team-b"))
	require.Len(t, mock.Queries, 2)
	assert.Equal(t, driver.RetagGroupNodesQuery, mock.Queries[0])
	assert.Equal(t, driver.RetagGroupEdgesQuery, mock.Queries[1])
	assert.Equal(t, "team-b", mock.Params[0]["new"])
}

func TestRenameGroupPartialFailure(t *testing.T) {
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		if query == driver.RetagGroupEdgesQuery {
			return neo4j.EagerResult{}, errors.New("connection lost")
		}
		return neo4j.EagerResult{}, nil
	}}
	g := newGraphiti(mock)

	err := g.RenameGroup(context.Background(), "team-a", "team-b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partially renamed")
	// the node step already ran
	require.Len(t, mock.Queries, 2)
}

func TestSendKnowledgeRunsInBackground(t *testing.T) {
	done := make(chan string, 8)
	mock := &MockDriver{Handle: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		done <- query
		return resultOf(uuidRecord("x"))
	}}

	prompts := config.ExtractionPrompts{Nodes: "%s %s", Edges: "%s %s"}
	g := NewGraphiti(mock, &MockLLM{Response: `{"extracted_entities": []}`}, nil, prompts, "main")

	g.SendKnowledge("", "note", "Alice met Bob", "")

	select {
	case query := <-done:
		assert.True(t, strings.Contains(query, "Episodic"))
	case <-time.After(2 * time.Second):
		t.Fatal("ingestion never reached the driver")
	}
}
