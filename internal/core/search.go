package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/agenthands/boron/internal/core/aggregate"
	"github.com/agenthands/boron/internal/core/model"
	"github.com/agenthands/boron/internal/driver"
)

// ErrWriteQuery rejects ad-hoc Cypher containing mutation clauses. The admin
// query console is strictly read-only; writes go through the typed endpoints.
var ErrWriteQuery = errors.New("only read-only queries are allowed")

var writeClausePattern = regexp.MustCompile(`(?i)\b(create|merge|delete|detach|set|remove|drop)\b`)

// SearchNodes runs a case-insensitive substring search over entity names and
// summaries in one group. An optional type filter narrows by primary label.
func (g *Graphiti) SearchNodes(ctx context.Context, term, groupID string, entityTypes []string, limit int) ([]model.VizNode, error) {
	params := map[string]interface{}{
		"group_id": g.groupOrDefault(groupID),
		"term":     term,
		"limit":    limit,
	}
	result, err := g.Driver.ExecuteQuery(ctx, driver.SearchNodesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search nodes: %w", err)
	}

	wanted := make(map[string]bool, len(entityTypes))
	for _, t := range entityTypes {
		wanted[t] = true
	}

	nodes := make([]model.VizNode, 0, len(result.Records))
	for _, rec := range result.Records {
		node, ok := aggregate.NodeFromRecord(rec, "")
		if !ok {
			continue
		}
		viz := aggregate.NodeToViz(node)
		if len(wanted) > 0 && !wanted[viz.Type] {
			continue
		}
		nodes = append(nodes, viz)
	}
	return nodes, nil
}

// SearchFacts runs the same substring search over relationship facts.
func (g *Graphiti) SearchFacts(ctx context.Context, term, groupID string, limit int) ([]model.VizEdge, error) {
	params := map[string]interface{}{
		"group_id": g.groupOrDefault(groupID),
		"term":     term,
		"limit":    limit,
	}
	result, err := g.Driver.ExecuteQuery(ctx, driver.SearchFactsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}

	edges := make([]model.VizEdge, 0, len(result.Records))
	for _, rec := range result.Records {
		edges = append(edges, aggregate.EdgeToViz(aggregate.EdgeFromRecord(rec, "")))
	}
	return edges, nil
}

// GroupQueryResult holds one group's rows for an ad-hoc query. A per-group
// failure is recorded here instead of aborting the other groups.
type GroupQueryResult struct {
	Graph string                   `json:"graph"`
	Rows  []map[string]interface{} `json:"rows"`
	Count int                      `json:"count"`
	Error string                   `json:"error,omitempty"`
}

// ExecuteQuery runs a read-only Cypher query. With a group id it runs once
// with $group_id bound to it; without one it runs against every known group.
func (g *Graphiti) ExecuteQuery(ctx context.Context, query, groupID string) ([]GroupQueryResult, error) {
	if writeClausePattern.MatchString(query) {
		return nil, ErrWriteQuery
	}

	if groupID != "" {
		return []GroupQueryResult{g.queryGroup(ctx, query, groupID)}, nil
	}

	groups, err := g.Aggregator.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	results := make([]GroupQueryResult, 0, len(groups))
	for _, gid := range groups {
		results = append(results, g.queryGroup(ctx, query, gid))
	}
	return results, nil
}

func (g *Graphiti) queryGroup(ctx context.Context, query, groupID string) GroupQueryResult {
	out := GroupQueryResult{Graph: groupID, Rows: []map[string]interface{}{}}

	result, err := g.Driver.ExecuteQuery(ctx, query, map[string]interface{}{"group_id": groupID})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	for _, rec := range result.Records {
		row := make(map[string]interface{}, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = queryValue(rec.Values[i])
		}
		out.Rows = append(out.Rows, row)
	}
	out.Count = len(out.Rows)
	return out
}

// queryValue flattens graph values into something JSON-friendly; everything
// else passes through as the driver returned it.
func queryValue(v interface{}) interface{} {
	switch t := v.(type) {
	case dbtype.Node:
		return map[string]interface{}{"labels": t.Labels, "properties": t.Props}
	case dbtype.Relationship:
		return map[string]interface{}{"type": t.Type, "properties": t.Props}
	default:
		return v
	}
}
