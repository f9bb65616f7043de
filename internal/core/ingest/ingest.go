// Package ingest turns free-form messages into graph structure: an episodic
// node recording the raw content, entity nodes extracted by the LLM, and
// RELATES_TO edges between them.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/core/common"
	"github.com/agenthands/boron/internal/core/model"
	"github.com/agenthands/boron/internal/driver"
	"github.com/agenthands/boron/internal/llm"
)

type Ingestor struct {
	Driver   driver.GraphDriver
	LLM      llm.LLMClient
	Embedder llm.EmbedderClient
	Prompts  config.ExtractionPrompts
}

func NewIngestor(d driver.GraphDriver, llmClient llm.LLMClient, embedderClient llm.EmbedderClient, prompts config.ExtractionPrompts) *Ingestor {
	return &Ingestor{
		Driver:   d,
		LLM:      llmClient,
		Embedder: embedderClient,
		Prompts:  prompts,
	}
}

// Ingest persists the message as an episode and enriches the graph with
// whatever the LLM extracts from it. The episode is saved before any LLM
// call, so raw content survives even when extraction fails.
func (in *Ingestor) Ingest(ctx context.Context, groupID, name, content, schema string) error {
	epUUID := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339)

	epParams := map[string]interface{}{
		"uuid":               epUUID,
		"name":               name,
		"group_id":           groupID,
		"created_at":         now,
		"valid_at":           now,
		"content":            content,
		"source":             "message",
		"source_description": "submitted knowledge",
	}
	if _, err := in.Driver.ExecuteQuery(ctx, driver.SaveEpisodicNodeQuery, epParams); err != nil {
		return fmt.Errorf("failed to save episode: %w", err)
	}

	entities, err := in.extractEntities(ctx, content, schema)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		return nil
	}

	nodes := make([]model.EntityNode, 0, len(entities))
	for _, ent := range entities {
		name := strings.TrimSpace(ent.Name)
		if name == "" {
			continue
		}

		node := model.EntityNode{
			UUID:      uuid.New().String(),
			Name:      name,
			GroupID:   groupID,
			CreatedAt: now,
			Labels:    entityLabels(ent.EntityType),
		}

		attrs := make(map[string]interface{}, len(ent.Attributes)+1)
		for k, v := range ent.Attributes {
			attrs[k] = v
		}
		if in.Embedder != nil {
			if vec, err := in.Embedder.Embed(ctx, node.Name); err == nil {
				attrs["name_embedding"] = vec
			} else {
				log.Printf("Failed to embed entity name %s: %v", node.Name, err)
			}
		}

		params := map[string]interface{}{
			"uuid":       node.UUID,
			"name":       node.Name,
			"group_id":   node.GroupID,
			"created_at": node.CreatedAt,
			"summary":    "",
			"attributes": attrs,
		}
		query := fmt.Sprintf(driver.SaveEntityNodeQuery, driver.LabelFragment(ent.EntityType))
		if _, err := in.Driver.ExecuteQuery(ctx, query, params); err != nil {
			log.Printf("Failed to save extracted entity %s: %v", node.Name, err)
			continue
		}
		nodes = append(nodes, node)

		edgeParams := map[string]interface{}{
			"uuid":        uuid.New().String(),
			"source_uuid": epUUID,
			"target_uuid": node.UUID,
			"group_id":    groupID,
			"created_at":  now,
		}
		if _, err := in.Driver.ExecuteQuery(ctx, driver.SaveEpisodicEdgeQuery, edgeParams); err != nil {
			log.Printf("Failed to link episode to entity %s: %v", node.Name, err)
		}
	}

	if len(nodes) < 2 {
		return nil
	}

	edges, err := in.extractEdges(ctx, nodes, content)
	if err != nil {
		log.Printf("Edge extraction failed for episode %s: %v", epUUID, err)
		return nil
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.UUID] = true
	}

	for _, e := range edges {
		if !known[e.SourceNodeUUID] || !known[e.TargetNodeUUID] {
			continue
		}

		params := map[string]interface{}{
			"uuid":        uuid.New().String(),
			"source_uuid": e.SourceNodeUUID,
			"target_uuid": e.TargetNodeUUID,
			"group_id":    groupID,
			"name":        e.RelationType,
			"fact":        e.Fact,
			"created_at":  now,
			"valid_at":    nil,
			"expired_at":  nil,
			"episodes":    []string{epUUID},
		}
		if _, err := in.Driver.ExecuteQuery(ctx, driver.SaveEntityEdgeQuery, params); err != nil {
			log.Printf("Failed to save extracted edge %s: %v", e.RelationType, err)
		}
	}

	return nil
}

func (in *Ingestor) extractEntities(ctx context.Context, content, schema string) ([]model.ExtractedEntity, error) {
	if schema == "" {
		schema = "Entity: a generic entity"
	}
	prompt := fmt.Sprintf(in.Prompts.Nodes, schema, content)

	response, err := in.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entities: %w", err)
	}

	result, err := common.ExtractObject[model.ExtractedEntities](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract entities: %w", err)
	}
	return result.ExtractedEntities, nil
}

func (in *Ingestor) extractEdges(ctx context.Context, nodes []model.EntityNode, content string) ([]model.ExtractedEdge, error) {
	var sb strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&sb, "- UUID: %s, Name: %s, Type: %s\n", n.UUID, n.Name, n.PrimaryLabel())
	}

	prompt := fmt.Sprintf(in.Prompts.Edges, sb.String(), content)

	response, err := in.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate edges: %w", err)
	}

	result, err := common.ExtractObject[model.ExtractedEdges](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract edges: %w", err)
	}
	return result.ExtractedEdges, nil
}

func entityLabels(entityType string) []string {
	if label := driver.SanitizeLabel(entityType); label != "" && label != model.BaseLabel {
		return []string{label, model.BaseLabel}
	}
	return []string{model.BaseLabel}
}
