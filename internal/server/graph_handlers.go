package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/boron/internal/core"
	"github.com/agenthands/boron/internal/core/model"
)

const (
	defaultDataLimit = 500
	maxDataLimit     = 10000
)

func emptyStats() gin.H {
	return gin.H{"node_count": 0, "edge_count": 0, "label_count": 0}
}

func (s *Server) GraphData(c *gin.Context) {
	limit := defaultDataLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDataLimit {
			fail(c, http.StatusBadRequest, "limit must be between 1 and 10000")
			return
		}
		limit = parsed
	}

	data, err := s.Graphiti.Aggregator.Fetch(c.Request.Context(), c.Query("group_id"), limit)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":  false,
			"nodes":    []model.VizNode{},
			"edges":    []model.VizEdge{},
			"triplets": []model.Triplet{},
			"labels":   []string{},
			"stats":    emptyStats(),
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"nodes":    data.Nodes,
		"edges":    data.Edges,
		"triplets": data.Triplets,
		"labels":   data.Labels,
		"stats":    data.Stats,
	})
}

func (s *Server) Groups(c *gin.Context) {
	groups, err := s.Graphiti.Aggregator.ListGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "group_ids": []string{}, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "group_ids": groups})
}

func (s *Server) GraphStats(c *gin.Context) {
	stats, err := s.Graphiti.Aggregator.Stats(c.Request.Context(), c.Query("group_id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error(), "stats": emptyStats()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (s *Server) CreateNode(c *gin.Context) {
	var req core.NodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	node, err := s.Graphiti.CreateNode(c.Request.Context(), req)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uuid": node.ID, "node": node})
}

func (s *Server) GetNode(c *gin.Context) {
	node, err := s.Graphiti.GetNode(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "node not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "node": node})
}

func (s *Server) UpdateNode(c *gin.Context) {
	var req core.NodeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	node, err := s.Graphiti.UpdateNode(c.Request.Context(), c.Param("uuid"), req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "node not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "node": node})
}

func (s *Server) DeleteNode(c *gin.Context) {
	if err := s.Graphiti.DeleteNode(c.Request.Context(), c.Param("uuid")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "node not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "node deleted"})
}

type createEdgeRequest struct {
	SourceUUID       string `json:"source_uuid"`
	TargetUUID       string `json:"target_uuid"`
	RelationshipType string `json:"relationship_type"`
	Fact             string `json:"fact"`
	GroupID          string `json:"group_id"`
}

func (s *Server) CreateEdge(c *gin.Context) {
	var req createEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	edge, err := s.Graphiti.CreateEdge(c.Request.Context(), core.EdgeInput{
		SourceUUID: req.SourceUUID,
		TargetUUID: req.TargetUUID,
		GroupID:    req.GroupID,
		Name:       req.RelationshipType,
		Fact:       req.Fact,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "source or target node not found")
			return
		}
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uuid": edge.UUID, "edge": edge})
}

func (s *Server) GetEdge(c *gin.Context) {
	edge, err := s.Graphiti.GetEdge(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "edge not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "edge": edge})
}

func (s *Server) UpdateEdge(c *gin.Context) {
	var req core.EdgeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	edge, err := s.Graphiti.UpdateEdge(c.Request.Context(), c.Param("uuid"), req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "edge not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "edge": edge})
}

func (s *Server) DeleteEdge(c *gin.Context) {
	if err := s.Graphiti.DeleteEdge(c.Request.Context(), c.Param("uuid")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "edge not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "edge deleted"})
}

const defaultEpisodeLimit = 20

func (s *Server) ListEpisodes(c *gin.Context) {
	limit := defaultEpisodeLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDataLimit {
			fail(c, http.StatusBadRequest, "limit must be between 1 and 10000")
			return
		}
		limit = parsed
	}

	episodes, err := s.Graphiti.ListEpisodes(c.Request.Context(), c.Query("group_id"), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"episodes": episodes,
		"total":    len(episodes),
		"limit":    limit,
	})
}

func (s *Server) GetEpisode(c *gin.Context) {
	episode, err := s.Graphiti.GetEpisode(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "episode not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "episode": episode})
}

func (s *Server) DeleteEpisode(c *gin.Context) {
	if err := s.Graphiti.DeleteEpisode(c.Request.Context(), c.Param("uuid")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fail(c, http.StatusNotFound, "episode not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "episode deleted"})
}

func (s *Server) DeleteGroup(c *gin.Context) {
	groupID := c.Param("id")
	if err := s.Graphiti.DeleteGroup(c.Request.Context(), groupID); err != nil {
		if errors.Is(err, core.ErrProtectedGroup) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "group '" + groupID + "' deleted"})
}

type renameGroupRequest struct {
	NewName string `json:"new_name"`
}

func (s *Server) RenameGroup(c *gin.Context) {
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	oldID := c.Param("id")
	if err := s.Graphiti.RenameGroup(c.Request.Context(), oldID, req.NewName); err != nil {
		if errors.Is(err, core.ErrInvalidGroupID) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "group renamed from '" + oldID + "' to '" + req.NewName + "'",
	})
}

type sendKnowledgeRequest struct {
	Content string `json:"content"`
	GroupID string `json:"group_id"`
}

// SendKnowledge accepts text for background extraction. The response only
// acknowledges the submission; results show up in the graph later.
func (s *Server) SendKnowledge(c *gin.Context) {
	var req sendKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		fail(c, http.StatusBadRequest, "content is required")
		return
	}

	schema := s.entityTypeSchema(c)
	s.Graphiti.SendKnowledge(req.GroupID, "knowledge", req.Content, schema)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "knowledge submitted for processing"})
}

// entityTypeSchema renders the registry as prompt context for extraction.
func (s *Server) entityTypeSchema(c *gin.Context) string {
	types, err := s.EntityTypes.GetAll(c.Request.Context())
	if err != nil || len(types) == 0 {
		return ""
	}

	schema := ""
	for _, t := range types {
		schema += t.Name + ": " + t.Description + "\n"
	}
	return schema
}
