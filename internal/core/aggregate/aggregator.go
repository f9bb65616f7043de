package aggregate

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/agenthands/boron/internal/core/model"
	"github.com/agenthands/boron/internal/driver"
)

// ErrInvalidLimit is returned when a fetch is requested with a non-positive
// limit. A zero limit is rejected rather than treated as unlimited.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// Aggregator produces graph-visualization snapshots, either for one group or
// merged across every known group.
type Aggregator struct {
	Driver       driver.GraphDriver
	DefaultGroup string
}

func NewAggregator(d driver.GraphDriver, defaultGroup string) *Aggregator {
	return &Aggregator{
		Driver:       d,
		DefaultGroup: defaultGroup,
	}
}

// Fetch builds one snapshot. When groupID is empty it fans out over all known
// groups, applying the same limit to each group rather than dividing it.
// A failing group is logged and skipped; the call only fails outright when
// group enumeration itself fails.
func (a *Aggregator) Fetch(ctx context.Context, groupID string, limit int) (*model.GraphData, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	groups := []string{groupID}
	if groupID == "" {
		var err error
		groups, err = a.ListGroups(ctx)
		if err != nil {
			return nil, err
		}
	}

	var nodes []model.EntityNode
	var edges []model.EntityEdge
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	for _, gid := range groups {
		groupNodes, groupEdges, err := a.fetchGroup(ctx, gid, limit)
		if err != nil {
			log.Printf("Skipping group %q in aggregation: %v", gid, err)
			continue
		}
		// Dedup by uuid, first occurrence wins.
		for _, n := range groupNodes {
			if seenNodes[n.UUID] {
				continue
			}
			seenNodes[n.UUID] = true
			nodes = append(nodes, n)
		}
		for _, e := range groupEdges {
			if seenEdges[e.UUID] {
				continue
			}
			seenEdges[e.UUID] = true
			edges = append(edges, e)
		}
	}

	// Edges are only materialized when both endpoints made it into this
	// snapshot; dangling edges are dropped silently.
	connected := make([]model.EntityEdge, 0, len(edges))
	for _, e := range edges {
		if seenNodes[e.SourceUUID] && seenNodes[e.TargetUUID] {
			connected = append(connected, e)
		}
	}

	labels := LabelsPresent(nodes)

	// The base label is structural: every entity carries it, so it stays in
	// the label list for color mapping but never counts as a distinct type.
	typed := 0
	for _, l := range labels {
		if l != model.BaseLabel {
			typed++
		}
	}

	vizNodes := make([]model.VizNode, 0, len(nodes))
	for _, n := range nodes {
		vizNodes = append(vizNodes, NodeToViz(n))
	}
	vizEdges := make([]model.VizEdge, 0, len(connected))
	for _, e := range connected {
		vizEdges = append(vizEdges, EdgeToViz(e))
	}

	return &model.GraphData{
		Nodes:    vizNodes,
		Edges:    vizEdges,
		Triplets: BuildTriplets(vizNodes, vizEdges),
		Labels:   labels,
		Stats: model.GraphStats{
			NodeCount:  len(vizNodes),
			EdgeCount:  len(vizEdges),
			LabelCount: typed,
		},
	}, nil
}

// fetchGroup reads up to limit nodes and up to 2*limit edges for one group.
// The edge cap is doubled so densely connected groups still resolve most of
// their relationships within the node window.
func (a *Aggregator) fetchGroup(ctx context.Context, groupID string, limit int) ([]model.EntityNode, []model.EntityEdge, error) {
	nodeRes, err := a.Driver.ExecuteQuery(ctx, driver.GetGroupNodesQuery, map[string]interface{}{
		"group_id": groupID,
		"limit":    limit,
	})
	if err != nil {
		return nil, nil, err
	}

	nodes := make([]model.EntityNode, 0, len(nodeRes.Records))
	for _, rec := range nodeRes.Records {
		n, ok := NodeFromRecord(rec, groupID)
		if !ok {
			continue
		}
		nodes = append(nodes, n)
	}

	edgeRes, err := a.Driver.ExecuteQuery(ctx, driver.GetGroupEdgesQuery, map[string]interface{}{
		"group_id": groupID,
		"limit":    limit * 2,
	})
	if err != nil {
		return nil, nil, err
	}

	edges := make([]model.EntityEdge, 0, len(edgeRes.Records))
	for _, rec := range edgeRes.Records {
		edges = append(edges, EdgeFromRecord(rec, groupID))
	}

	return nodes, edges, nil
}

// ListGroups enumerates the known group ids, sorted.
func (a *Aggregator) ListGroups(ctx context.Context) ([]string, error) {
	res, err := a.Driver.ExecuteQuery(ctx, driver.ListGroupsQuery, nil)
	if err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		v, _ := rec.Get("group_id")
		if s, ok := v.(string); ok && s != "" {
			groups = append(groups, s)
		}
	}
	sort.Strings(groups)
	return groups, nil
}

// Stats counts nodes, edges and episodes for one group (the default group
// when none is given).
func (a *Aggregator) Stats(ctx context.Context, groupID string) (*model.GroupStats, error) {
	if groupID == "" {
		groupID = a.DefaultGroup
	}

	stats := &model.GroupStats{GroupID: groupID}
	counts := []struct {
		query string
		dest  *int64
	}{
		{driver.CountGroupNodesQuery, &stats.NodeCount},
		{driver.CountGroupEdgesQuery, &stats.EdgeCount},
		{driver.CountGroupEpisodesQuery, &stats.EpisodeCount},
	}

	for _, c := range counts {
		res, err := a.Driver.ExecuteQuery(ctx, c.query, map[string]interface{}{"group_id": groupID})
		if err != nil {
			return nil, err
		}
		if len(res.Records) > 0 {
			v, _ := res.Records[0].Get("count")
			if n, ok := v.(int64); ok {
				*c.dest = n
			}
		}
	}

	return stats, nil
}

// LabelsPresent derives the deduplicated set of primary labels in use,
// always including the structural base label, for client color mapping.
func LabelsPresent(nodes []model.EntityNode) []string {
	seen := map[string]bool{model.BaseLabel: true}
	for _, n := range nodes {
		seen[n.PrimaryLabel()] = true
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
