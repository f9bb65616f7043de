package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListAPIKeys(c *gin.Context) {
	keys, err := s.APIKeys.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

type createAPIKeyRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		fail(c, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.APIKeys.Create(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) DeleteAPIKey(c *gin.Context) {
	removed, err := s.APIKeys.Delete(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, "API key not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API key deleted"})
}
