package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/boron/internal/core"
)

const defaultSearchLimit = 10

type executeQueryRequest struct {
	Query   string `json:"query"`
	GraphID string `json:"graph_id"`
}

// ExecuteQuery runs ad-hoc read-only Cypher, per group. The response stays
// 200 with success:false on failure so the query console can render errors
// inline.
func (s *Server) ExecuteQuery(c *gin.Context) {
	var req executeQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		fail(c, http.StatusBadRequest, "query is required")
		return
	}

	results, err := s.Graphiti.ExecuteQuery(c.Request.Context(), req.Query, req.GraphID)
	if err != nil {
		if errors.Is(err, core.ErrWriteQuery) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"query":   req.Query,
			"results": []core.GroupQueryResult{},
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"success": true,
	})
}

type searchNodesRequest struct {
	Query       string   `json:"query"`
	EntityTypes []string `json:"entity_types"`
	GroupID     string   `json:"group_id"`
	Limit       int      `json:"limit"`
}

func (s *Server) SearchNodes(c *gin.Context) {
	var req searchNodesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		fail(c, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	nodes, err := s.Graphiti.SearchNodes(c.Request.Context(), req.Query, req.GroupID, req.EntityTypes, req.Limit)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"query":   req.Query,
			"results": []interface{}{},
			"total":   0,
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": nodes,
		"total":   len(nodes),
		"success": true,
	})
}

type searchFactsRequest struct {
	Query   string `json:"query"`
	GroupID string `json:"group_id"`
	Limit   int    `json:"limit"`
}

func (s *Server) SearchFacts(c *gin.Context) {
	var req searchFactsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		fail(c, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	facts, err := s.Graphiti.SearchFacts(c.Request.Context(), req.Query, req.GroupID, req.Limit)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"query":   req.Query,
			"results": []interface{}{},
			"total":   0,
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": facts,
		"total":   len(facts),
		"success": true,
	})
}

func (s *Server) QueryableGraphs(c *gin.Context) {
	groups, err := s.Graphiti.Aggregator.ListGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"graphs": []string{}, "success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"graphs": groups, "success": true})
}
