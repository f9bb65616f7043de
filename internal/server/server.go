// Package server wires the HTTP surface: admin auth, graph CRUD and
// visualization data, the entity type registry, API key management, and the
// authenticated reverse proxy to the upstream extraction service.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/boron/internal/apikey"
	"github.com/agenthands/boron/internal/auth"
	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/core"
	"github.com/agenthands/boron/internal/entitytype"
)

type Server struct {
	Graphiti    *core.Graphiti
	Auth        *auth.Service
	EntityTypes *entitytype.Service
	APIKeys     *apikey.Service

	Defaults     []config.EntityTypeDefault
	UpstreamURL  string
	CookieMaxAge int

	client *http.Client
}

func NewServer(g *core.Graphiti, authSvc *auth.Service, et *entitytype.Service, keys *apikey.Service, defaults []config.EntityTypeDefault, upstreamURL string, cookieMaxAge int) *Server {
	return &Server{
		Graphiti:     g,
		Auth:         authSvc,
		EntityTypes:  et,
		APIKeys:      keys,
		Defaults:     defaults,
		UpstreamURL:  upstreamURL,
		CookieMaxAge: cookieMaxAge,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.GET("/setup-status", s.SetupStatus)
		authRoutes.POST("/setup", s.Setup)
		authRoutes.POST("/login", s.Login)
		authRoutes.POST("/logout", s.Logout)
		authRoutes.GET("/logout", s.Logout)
		authRoutes.GET("/me", s.Auth.Middleware(), s.Me)
	}

	api := r.Group("/api", s.Auth.Middleware())
	{
		graph := api.Group("/graph")
		{
			graph.GET("/data", s.GraphData)
			graph.GET("/groups", s.Groups)
			graph.GET("/stats", s.GraphStats)

			graph.POST("/node", s.CreateNode)
			graph.GET("/node/:uuid", s.GetNode)
			graph.PUT("/node/:uuid", s.UpdateNode)
			graph.DELETE("/node/:uuid", s.DeleteNode)

			graph.POST("/edge", s.CreateEdge)
			graph.GET("/edge/:uuid", s.GetEdge)
			graph.PUT("/edge/:uuid", s.UpdateEdge)
			graph.DELETE("/edge/:uuid", s.DeleteEdge)

			graph.GET("/episodes", s.ListEpisodes)
			graph.GET("/episode/:uuid", s.GetEpisode)
			graph.DELETE("/episode/:uuid", s.DeleteEpisode)

			graph.GET("/queue/status", s.QueueStatus)

			graph.DELETE("/group/:id", s.DeleteGroup)
			graph.PUT("/group/:id/rename", s.RenameGroup)

			graph.POST("/knowledge", s.SendKnowledge)
		}

		query := api.Group("/query")
		{
			query.POST("", s.ExecuteQuery)
			query.POST("/cypher", s.ExecuteQuery)
			query.POST("/nodes", s.SearchNodes)
			query.POST("/facts", s.SearchFacts)
			query.GET("/graphs", s.QueryableGraphs)
		}

		types := api.Group("/entity-types")
		{
			types.GET("", s.ListEntityTypes)
			types.POST("", s.CreateEntityType)
			types.POST("/reset", s.ResetEntityTypes)
			types.GET("/:name", s.GetEntityType)
			types.PUT("/:name", s.UpdateEntityType)
			types.DELETE("/:name", s.DeleteEntityType)
		}

		keys := api.Group("/keys")
		{
			keys.GET("", s.ListAPIKeys)
			keys.POST("", s.CreateAPIKey)
			keys.DELETE("/:prefix", s.DeleteAPIKey)
		}
	}

	// the proxy authenticates with bearer API keys, not the session cookie
	r.Any("/mcp/*path", s.ProxyMCP)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"healthy": true})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}
