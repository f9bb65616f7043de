package core

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

type MockDriver struct {
	Handle  func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
	Queries []string
	Params  []map[string]interface{}
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Handle != nil {
		return m.Handle(query, params)
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }

func (m *MockDriver) Close(ctx context.Context) error { return nil }

type MockLLM struct {
	Response string
	Err      error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

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

func edgeRecord(uuid, source, target, groupID, name, fact string) *neo4j.Record {
	return &neo4j.Record{
		Keys: []string{"uuid", "source_uuid", "target_uuid", "group_id", "name",
			"fact", "created_at", "valid_at", "expired_at", "episodes"},
		Values: []interface{}{uuid, source, target, groupID, name, fact,
			"2025-01-01T00:00:00Z", nil, nil, []interface{}{}},
	}
}

func uuidRecord(uuid string) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"uuid"}, Values: []interface{}{uuid}}
}

func resultOf(records ...*neo4j.Record) (neo4j.EagerResult, error) {
	return neo4j.EagerResult{Records: records}, nil
}
