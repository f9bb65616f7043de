package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/core/aggregate"
	"github.com/agenthands/boron/internal/core/ingest"
	"github.com/agenthands/boron/internal/core/model"
	"github.com/agenthands/boron/internal/driver"
	"github.com/agenthands/boron/internal/llm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrProtectedGroup = errors.New("the default group cannot be deleted")
	ErrInvalidGroupID = errors.New("invalid group id")
)

// Graphiti is the graph-side facade: CRUD on nodes, edges and episodes,
// group management, and background knowledge ingestion, all through one
// shared driver.
type Graphiti struct {
	Driver       driver.GraphDriver
	Aggregator   *aggregate.Aggregator
	Ingestor     *ingest.Ingestor
	DefaultGroup string
}

func NewGraphiti(d driver.GraphDriver, llmClient llm.LLMClient, embedderClient llm.EmbedderClient, prompts config.ExtractionPrompts, defaultGroup string) *Graphiti {
	return &Graphiti{
		Driver:       d,
		Aggregator:   aggregate.NewAggregator(d, defaultGroup),
		Ingestor:     ingest.NewIngestor(d, llmClient, embedderClient, prompts),
		DefaultGroup: defaultGroup,
	}
}

func (g *Graphiti) BuildIndices(ctx context.Context) error {
	return g.Driver.BuildIndices(ctx)
}

func (g *Graphiti) groupOrDefault(groupID string) string {
	if groupID == "" {
		return g.DefaultGroup
	}
	return groupID
}

type NodeInput struct {
	Name       string                 `json:"name"`
	GroupID    string                 `json:"group_id"`
	Type       string                 `json:"type"`
	Summary    string                 `json:"summary"`
	Attributes map[string]interface{} `json:"attributes"`
}

func (g *Graphiti) CreateNode(ctx context.Context, in NodeInput) (*model.VizNode, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("node name is required")
	}

	node := model.EntityNode{
		UUID:       uuid.New().String(),
		Name:       in.Name,
		GroupID:    g.groupOrDefault(in.GroupID),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Summary:    in.Summary,
		Attributes: in.Attributes,
	}
	if label := driver.SanitizeLabel(in.Type); label != "" && label != model.BaseLabel {
		node.Labels = []string{label, model.BaseLabel}
	} else {
		node.Labels = []string{model.BaseLabel}
	}

	attributes := in.Attributes
	if attributes == nil {
		attributes = map[string]interface{}{}
	}

	params := map[string]interface{}{
		"uuid":       node.UUID,
		"name":       node.Name,
		"group_id":   node.GroupID,
		"created_at": node.CreatedAt,
		"summary":    node.Summary,
		"attributes": attributes,
	}
	query := fmt.Sprintf(driver.SaveEntityNodeQuery, driver.LabelFragment(in.Type))
	if _, err := g.Driver.ExecuteQuery(ctx, query, params); err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	viz := aggregate.NodeToViz(node)
	return &viz, nil
}

func (g *Graphiti) GetNode(ctx context.Context, nodeUUID string) (*model.VizNode, error) {
	result, err := g.Driver.ExecuteQuery(ctx, driver.GetNodeQuery, map[string]interface{}{"uuid": nodeUUID})
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	node, ok := aggregate.NodeFromRecord(result.Records[0], "")
	if !ok {
		return nil, ErrNotFound
	}

	viz := aggregate.NodeToViz(node)
	return &viz, nil
}

type NodeUpdate struct {
	Name       *string                `json:"name"`
	Summary    *string                `json:"summary"`
	Attributes map[string]interface{} `json:"attributes"`
}

// UpdateNode applies a partial update. Only the provided fields change;
// attributes merge key by key rather than replacing the whole map.
func (g *Graphiti) UpdateNode(ctx context.Context, nodeUUID string, upd NodeUpdate) (*model.VizNode, error) {
	setClauses := []string{}
	params := map[string]interface{}{"uuid": nodeUUID}

	if upd.Name != nil {
		setClauses = append(setClauses, "n.name = $name")
		params["name"] = *upd.Name
	}
	if upd.Summary != nil {
		setClauses = append(setClauses, "n.summary = $summary")
		params["summary"] = *upd.Summary
	}
	if len(upd.Attributes) > 0 {
		setClauses = append(setClauses, "n += $attributes")
		params["attributes"] = upd.Attributes
	}
	if len(setClauses) == 0 {
		return g.GetNode(ctx, nodeUUID)
	}

	query := fmt.Sprintf(`
		MATCH (n:Entity {uuid: $uuid})
		SET %s
		RETURN n
	`, strings.Join(setClauses, ", "))

	result, err := g.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	node, ok := aggregate.NodeFromRecord(result.Records[0], "")
	if !ok {
		return nil, ErrNotFound
	}

	viz := aggregate.NodeToViz(node)
	return &viz, nil
}

// DeleteNode removes the node and every relationship attached to it.
func (g *Graphiti) DeleteNode(ctx context.Context, nodeUUID string) error {
	result, err := g.Driver.ExecuteQuery(ctx, driver.DeleteNodeQuery, map[string]interface{}{"uuid": nodeUUID})
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	if len(result.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

type EdgeInput struct {
	SourceUUID string `json:"source_uuid"`
	TargetUUID string `json:"target_uuid"`
	GroupID    string `json:"group_id"`
	Name       string `json:"name"`
	Fact       string `json:"fact"`
}

func (g *Graphiti) CreateEdge(ctx context.Context, in EdgeInput) (*model.VizEdge, error) {
	if in.SourceUUID == "" || in.TargetUUID == "" {
		return nil, errors.New("source and target uuids are required")
	}

	name := in.Name
	if name == "" {
		name = model.RelatesToType
	}

	edge := model.EntityEdge{
		UUID:       uuid.New().String(),
		SourceUUID: in.SourceUUID,
		TargetUUID: in.TargetUUID,
		GroupID:    g.groupOrDefault(in.GroupID),
		Name:       name,
		Fact:       in.Fact,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Episodes:   []string{},
	}

	params := map[string]interface{}{
		"uuid":        edge.UUID,
		"source_uuid": edge.SourceUUID,
		"target_uuid": edge.TargetUUID,
		"group_id":    edge.GroupID,
		"name":        edge.Name,
		"fact":        edge.Fact,
		"created_at":  edge.CreatedAt,
		"valid_at":    nil,
		"expired_at":  nil,
		"episodes":    edge.Episodes,
	}
	result, err := g.Driver.ExecuteQuery(ctx, driver.SaveEntityEdgeQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge: %w", err)
	}
	// MERGE matched no endpoint pair
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	viz := aggregate.EdgeToViz(edge)
	return &viz, nil
}

func (g *Graphiti) GetEdge(ctx context.Context, edgeUUID string) (*model.VizEdge, error) {
	result, err := g.Driver.ExecuteQuery(ctx, driver.GetEdgeQuery, map[string]interface{}{"uuid": edgeUUID})
	if err != nil {
		return nil, fmt.Errorf("failed to get edge: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	edge := aggregate.EdgeFromRecord(result.Records[0], "")
	viz := aggregate.EdgeToViz(edge)
	return &viz, nil
}

type EdgeUpdate struct {
	Name *string `json:"name"`
	Fact *string `json:"fact"`
}

func (g *Graphiti) UpdateEdge(ctx context.Context, edgeUUID string, upd EdgeUpdate) (*model.VizEdge, error) {
	setClauses := []string{}
	params := map[string]interface{}{"uuid": edgeUUID}

	if upd.Name != nil {
		setClauses = append(setClauses, "r.name = $name")
		params["name"] = *upd.Name
	}
	if upd.Fact != nil {
		setClauses = append(setClauses, "r.fact = $fact")
		params["fact"] = *upd.Fact
	}
	if len(setClauses) == 0 {
		return g.GetEdge(ctx, edgeUUID)
	}

	query := fmt.Sprintf(`
		MATCH (s:Entity)-[r:RELATES_TO {uuid: $uuid}]->(t:Entity)
		SET %s
		RETURN r.uuid AS uuid, s.uuid AS source_uuid, t.uuid AS target_uuid,
			r.group_id AS group_id, r.name AS name, r.fact AS fact,
			r.created_at AS created_at,
			r.valid_at AS valid_at, r.expired_at AS expired_at,
			r.episodes AS episodes
	`, strings.Join(setClauses, ", "))

	result, err := g.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update edge: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	edge := aggregate.EdgeFromRecord(result.Records[0], "")
	viz := aggregate.EdgeToViz(edge)
	return &viz, nil
}

func (g *Graphiti) DeleteEdge(ctx context.Context, edgeUUID string) error {
	result, err := g.Driver.ExecuteQuery(ctx, driver.DeleteEdgeQuery, map[string]interface{}{"uuid": edgeUUID})
	if err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}
	if len(result.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Graphiti) GetEpisode(ctx context.Context, episodeUUID string) (*model.EpisodicNode, error) {
	result, err := g.Driver.ExecuteQuery(ctx, driver.GetEpisodeQuery, map[string]interface{}{"uuid": episodeUUID})
	if err != nil {
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	rec := result.Records[0]
	episode := &model.EpisodicNode{
		UUID:              recordString(rec, "uuid"),
		Name:              recordString(rec, "name"),
		GroupID:           recordString(rec, "group_id"),
		CreatedAt:         recordString(rec, "created_at"),
		ValidAt:           recordString(rec, "valid_at"),
		Content:           recordString(rec, "content"),
		Source:            recordString(rec, "source"),
		SourceDescription: recordString(rec, "source_description"),
	}
	return episode, nil
}

// ListEpisodes returns the most recent episodes of a group, newest first.
func (g *Graphiti) ListEpisodes(ctx context.Context, groupID string, limit int) ([]model.EpisodicNode, error) {
	params := map[string]interface{}{
		"group_id": g.groupOrDefault(groupID),
		"limit":    limit,
	}
	result, err := g.Driver.ExecuteQuery(ctx, driver.ListEpisodesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	episodes := make([]model.EpisodicNode, 0, len(result.Records))
	for _, rec := range result.Records {
		episodes = append(episodes, model.EpisodicNode{
			UUID:              recordString(rec, "uuid"),
			Name:              recordString(rec, "name"),
			GroupID:           recordString(rec, "group_id"),
			CreatedAt:         recordString(rec, "created_at"),
			ValidAt:           recordString(rec, "valid_at"),
			Content:           recordString(rec, "content"),
			Source:            recordString(rec, "source"),
			SourceDescription: recordString(rec, "source_description"),
		})
	}
	return episodes, nil
}

func (g *Graphiti) DeleteEpisode(ctx context.Context, episodeUUID string) error {
	result, err := g.Driver.ExecuteQuery(ctx, driver.DeleteEpisodeQuery, map[string]interface{}{"uuid": episodeUUID})
	if err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	if len(result.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup removes every node and relationship tagged with the group.
// The default group is protected.
func (g *Graphiti) DeleteGroup(ctx context.Context, groupID string) error {
	if groupID == "" || groupID == g.DefaultGroup {
		return ErrProtectedGroup
	}
	_, err := g.Driver.ExecuteQuery(ctx, driver.DeleteGroupQuery, map[string]interface{}{"group_id": groupID})
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// RenameGroup re-tags nodes, then relationships. The two steps are separate
// queries with no shared transaction; if the second fails the group is left
// split between the two names and the error reports that.
func (g *Graphiti) RenameGroup(ctx context.Context, oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	if oldID == "" || newID == "" {
		return ErrInvalidGroupID
	}
	if newID == oldID {
		return fmt.Errorf("%w: new name matches the current one", ErrInvalidGroupID)
	}

	params := map[string]interface{}{"old": oldID, "new": newID}
	if _, err := g.Driver.ExecuteQuery(ctx, driver.RetagGroupNodesQuery, params); err != nil {
		return fmt.Errorf("failed to rename group: %w", err)
	}
	if _, err := g.Driver.ExecuteQuery(ctx, driver.RetagGroupEdgesQuery, params); err != nil {
		return fmt.Errorf("group partially renamed, node tags moved to %q but relationship tags were not: %w", newID, err)
	}
	return nil
}

// SendKnowledge hands a message to the ingestion pipeline without waiting
// for it. Failures are logged; the caller already got its accepted response.
func (g *Graphiti) SendKnowledge(groupID, name, content, schema string) {
	groupID = g.groupOrDefault(groupID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := g.Ingestor.Ingest(ctx, groupID, name, content, schema); err != nil {
			log.Printf("Knowledge ingestion failed for group %s: %v", groupID, err)
		}
	}()
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	return aggregate.AsString(v)
}
