// Package entitytype manages the user-defined schemas the extraction
// pipeline looks for. The whole collection lives as one JSON blob under a
// single store key; every mutation is read-modify-write with last writer
// wins (see internal/store).
package entitytype

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/store"
)

// Provenance values for an entity type.
const (
	SourceConfig = "config"
	SourceAPI    = "api"
)

var ErrNotFound = errors.New("entity type not found")

type EntityType struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Fields      []config.EntityTypeField `json:"fields"`
	Source      string                   `json:"source"`
	CreatedAt   string                   `json:"created_at"`
	ModifiedAt  string                   `json:"modified_at,omitempty"`
}

type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

func (s *Service) load(ctx context.Context) ([]EntityType, error) {
	data, err := s.Store.Get(ctx, store.EntityTypesKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []EntityType{}, nil
		}
		return nil, err
	}

	var types []EntityType
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("failed to decode entity types: %w", err)
	}
	return types, nil
}

func (s *Service) save(ctx context.Context, types []EntityType) error {
	data, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, store.EntityTypesKey, data)
}

func (s *Service) GetAll(ctx context.Context) ([]EntityType, error) {
	return s.load(ctx)
}

func (s *Service) GetByName(ctx context.Context, name string) (*EntityType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].Name == name {
			return &types[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a new type. Names are matched case-sensitively; a duplicate is
// rejected before anything is written.
func (s *Service) Create(ctx context.Context, name, description string, fields []config.EntityTypeField) (*EntityType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range types {
		if t.Name == name {
			return nil, fmt.Errorf("entity type '%s' already exists", name)
		}
	}

	if fields == nil {
		fields = []config.EntityTypeField{}
	}
	et := EntityType{
		Name:        name,
		Description: description,
		Fields:      fields,
		Source:      SourceAPI,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	types = append(types, et)

	if err := s.save(ctx, types); err != nil {
		return nil, err
	}
	log.Printf("Created entity type: %s", name)
	return &et, nil
}

// Update changes only the supplied fields and stamps the modification.
func (s *Service) Update(ctx context.Context, name string, description *string, fields []config.EntityTypeField) (*EntityType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range types {
		if types[i].Name != name {
			continue
		}
		if description != nil {
			types[i].Description = *description
		}
		if fields != nil {
			types[i].Fields = fields
		}
		types[i].ModifiedAt = time.Now().UTC().Format(time.RFC3339)
		types[i].Source = SourceAPI

		if err := s.save(ctx, types); err != nil {
			return nil, err
		}
		log.Printf("Updated entity type: %s", name)
		return &types[i], nil
	}

	return nil, ErrNotFound
}

func (s *Service) Delete(ctx context.Context, name string) error {
	types, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]EntityType, 0, len(types))
	for _, t := range types {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(types) {
		return ErrNotFound
	}

	if err := s.save(ctx, kept); err != nil {
		return err
	}
	log.Printf("Deleted entity type: %s", name)
	return nil
}

// ResetToDefaults unconditionally replaces the whole collection with the
// config-provided definitions.
func (s *Service) ResetToDefaults(ctx context.Context, defaults []config.EntityTypeDefault) ([]EntityType, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	types := make([]EntityType, 0, len(defaults))
	for _, d := range defaults {
		fields := d.Fields
		if fields == nil {
			fields = []config.EntityTypeField{}
		}
		types = append(types, EntityType{
			Name:        d.Name,
			Description: d.Description,
			Fields:      fields,
			Source:      SourceConfig,
			CreatedAt:   now,
		})
	}

	if err := s.save(ctx, types); err != nil {
		return nil, err
	}
	log.Printf("Reset %d entity types to defaults", len(types))
	return types, nil
}
