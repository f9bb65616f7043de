package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type DatabaseConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type GraphConfig struct {
	DefaultGroupID string `toml:"default_group_id"`
}

type AuthConfig struct {
	Username             string `toml:"username"`
	SessionSecret        string `toml:"session_secret"`
	SessionExpiryMinutes int    `toml:"session_expiry_minutes"`
}

type ExtractionPrompts struct {
	Nodes string `toml:"nodes"`
	Edges string `toml:"edges"`
}

type UpstreamConfig struct {
	MCPURL string `toml:"mcp_url"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type Config struct {
	Server     ServerConfig      `toml:"server"`
	LLM        LLMConfig         `toml:"llm"`
	Database   DatabaseConfig    `toml:"database"`
	Graph      GraphConfig       `toml:"graph"`
	Auth       AuthConfig        `toml:"auth"`
	Extraction ExtractionPrompts `toml:"extraction"`
	Upstream   UpstreamConfig    `toml:"upstream"`
	Store      StoreConfig       `toml:"store"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return &cfg, nil
}

// Default returns a config usable without a file on disk, still honoring
// environment overrides.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.URI == "" {
		c.Database.URI = "bolt://localhost:7687"
	}
	if c.Graph.DefaultGroupID == "" {
		c.Graph.DefaultGroupID = "main"
	}
	if c.Auth.Username == "" {
		c.Auth.Username = "admin"
	}
	if c.Auth.SessionExpiryMinutes == 0 {
		c.Auth.SessionExpiryMinutes = 43200 // 30 days
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/boron"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
		c.LLM.Model = "gpt-oss:latest"
		c.LLM.BaseURL = "http://localhost:11434"
	}
	if c.Extraction.Nodes == "" {
		c.Extraction.Nodes = defaultNodesPrompt
	}
	if c.Extraction.Edges == "" {
		c.Extraction.Edges = defaultEdgesPrompt
	}
}

const defaultNodesPrompt = `You are extracting entities from a message for a knowledge graph.

Entity types:
%s

Message:
%s

Respond with JSON only: {"extracted_entities": [{"name": "...", "entity_type": "...", "attributes": {}}]}`

const defaultEdgesPrompt = `You are extracting relationships between entities for a knowledge graph.

Entities:
%s

Message:
%s

Respond with JSON only: {"extracted_edges": [{"source_node_uuid": "...", "target_node_uuid": "...", "relation_type": "...", "fact": "..."}]}`

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("DEFAULT_GROUP_ID"); v != "" {
		c.Graph.DefaultGroupID = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Auth.SessionSecret = v
	}
	if v := os.Getenv("SESSION_EXPIRY_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil {
			c.Auth.SessionExpiryMinutes = mins
		}
	}
	if v := os.Getenv("MCP_URL"); v != "" {
		c.Upstream.MCPURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Store.Path = v
	}
}
