package aggregate

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/agenthands/boron/internal/core/model"
)

// MockDriver routes each query through Handle so tests can answer per query
// and per group. Calls are recorded in order.
type MockDriver struct {
	Handle  func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
	Queries []string
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	if m.Handle != nil {
		return m.Handle(query, params)
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }

func (m *MockDriver) Close(ctx context.Context) error { return nil }

func nodeRecord(uuid, name string, labels []string, props map[string]interface{}) *neo4j.Record {
	merged := map[string]interface{}{
		"uuid": uuid,
		"name": name,
	}
	for k, v := range props {
		merged[k] = v
	}
	return &neo4j.Record{
		Keys:   []string{"n"},
		Values: []interface{}{dbtype.Node{Labels: labels, Props: merged}},
	}
}

func edgeRecord(uuid, source, target, name, fact string) *neo4j.Record {
	return &neo4j.Record{
		Keys: []string{"uuid", "source_uuid", "target_uuid", "name", "fact",
			"created_at", "valid_at", "expired_at", "episodes"},
		Values: []interface{}{uuid, source, target, name, fact,
			"2025-01-01T00:00:00Z", nil, nil, []interface{}{"ep-1"}},
	}
}

func groupRecords(groups ...string) []*neo4j.Record {
	recs := make([]*neo4j.Record, 0, len(groups))
	for _, g := range groups {
		recs = append(recs, &neo4j.Record{Keys: []string{"group_id"}, Values: []interface{}{g}})
	}
	return recs
}

func resultOf(records ...*neo4j.Record) (neo4j.EagerResult, error) {
	return neo4j.EagerResult{Records: records}, nil
}

func nodeUUIDs(nodes []model.VizNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
