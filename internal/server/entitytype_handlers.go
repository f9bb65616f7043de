package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/entitytype"
)

func (s *Server) ListEntityTypes(c *gin.Context) {
	types, err := s.EntityTypes.GetAll(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, types)
}

func (s *Server) GetEntityType(c *gin.Context) {
	et, err := s.EntityTypes.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, entitytype.ErrNotFound) {
			fail(c, http.StatusNotFound, "entity type not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, et)
}

type createEntityTypeRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Fields      []config.EntityTypeField `json:"fields"`
}

func (s *Server) CreateEntityType(c *gin.Context) {
	var req createEntityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		fail(c, http.StatusBadRequest, "name is required")
		return
	}

	et, err := s.EntityTypes.Create(c.Request.Context(), req.Name, req.Description, req.Fields)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, et)
}

type updateEntityTypeRequest struct {
	Description *string                  `json:"description"`
	Fields      []config.EntityTypeField `json:"fields"`
}

func (s *Server) UpdateEntityType(c *gin.Context) {
	var req updateEntityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	et, err := s.EntityTypes.Update(c.Request.Context(), c.Param("name"), req.Description, req.Fields)
	if err != nil {
		if errors.Is(err, entitytype.ErrNotFound) {
			fail(c, http.StatusNotFound, "entity type not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, et)
}

func (s *Server) DeleteEntityType(c *gin.Context) {
	if err := s.EntityTypes.Delete(c.Request.Context(), c.Param("name")); err != nil {
		if errors.Is(err, entitytype.ErrNotFound) {
			fail(c, http.StatusNotFound, "entity type not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "entity type deleted"})
}

func (s *Server) ResetEntityTypes(c *gin.Context) {
	types, err := s.EntityTypes.ResetToDefaults(c.Request.Context(), s.Defaults)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "entity types reset to defaults",
		"entity_types": types,
	})
}
