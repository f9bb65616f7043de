package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/boron/internal/apikey"
	"github.com/agenthands/boron/internal/auth"
	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/core"
	"github.com/agenthands/boron/internal/driver"
	"github.com/agenthands/boron/internal/entitytype"
	"github.com/agenthands/boron/internal/llm"
	"github.com/agenthands/boron/internal/server"
	"github.com/agenthands/boron/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}

	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(cfg.Database.URI, cfg.Database.User, cfg.Database.Password)
	if err != nil {
		log.Fatalf("Failed to connect to graph database: %v", err)
	}
	defer d.Close(ctx)

	if err := d.BuildIndices(ctx); err != nil {
		log.Printf("Failed to build indices: %v", err)
	}

	kv, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", cfg.Store.Path, err)
	}
	defer kv.Close()

	llmClient, embedderClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	expiry := time.Duration(cfg.Auth.SessionExpiryMinutes) * time.Minute
	authSvc, err := auth.NewService(ctx, kv, cfg.Auth.Username, cfg.Auth.SessionSecret, expiry)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	defaultsPath := os.Getenv("ENTITY_TYPES_PATH")
	if defaultsPath == "" {
		defaultsPath = "config/entity_types.yaml"
	}
	defaults, err := config.LoadEntityTypeDefaults(defaultsPath)
	if err != nil {
		log.Printf("Could not load entity type defaults from %s: %v", defaultsPath, err)
	}

	etSvc := entitytype.NewService(kv)
	if existing, err := etSvc.GetAll(ctx); err == nil && len(existing) == 0 && len(defaults) > 0 {
		if _, err := etSvc.ResetToDefaults(ctx, defaults); err != nil {
			log.Printf("Failed to seed entity types: %v", err)
		}
	}

	g := core.NewGraphiti(d, llmClient, embedderClient, cfg.Extraction, cfg.Graph.DefaultGroupID)

	srv := server.NewServer(g, authSvc, etSvc, apikey.NewService(kv), defaults,
		cfg.Upstream.MCPURL, cfg.Auth.SessionExpiryMinutes*60)
	r := srv.SetupRouter()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
