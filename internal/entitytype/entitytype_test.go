package entitytype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/boron/internal/config"
	"github.com/agenthands/boron/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s)
}

func TestCreateAndList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Person", "A human being mentioned in the text", nil)
	assert.NoError(t, err)
	assert.Equal(t, SourceAPI, created.Source)
	assert.NotEmpty(t, created.CreatedAt)

	types, err := svc.GetAll(ctx)
	assert.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Person", types[0].Name)
}

func TestCreateDuplicateRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Person", "A human being mentioned in the text", nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Person", "Another definition", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdatePartial(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Organization", "A company or institution", []config.EntityTypeField{
		{Name: "industry", Type: "string"},
	})
	require.NoError(t, err)

	desc := "An organization, company, or institution"
	updated, err := svc.Update(ctx, "Organization", &desc, nil)
	assert.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	// Fields untouched when not supplied.
	require.Len(t, updated.Fields, 1)
	assert.Equal(t, "industry", updated.Fields[0].Name)
	assert.NotEmpty(t, updated.ModifiedAt)
	assert.Equal(t, SourceAPI, updated.Source)
}

func TestUpdateMissing(t *testing.T) {
	svc := newService(t)
	desc := "x"
	_, err := svc.Update(context.Background(), "Ghost", &desc, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Person", "A human being mentioned in the text", nil)
	require.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, "Person"))

	_, err = svc.GetByName(ctx, "Person")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "Person"), ErrNotFound)
}

func TestResetToDefaults(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Leftover", "Should be replaced by the reset", nil)
	require.NoError(t, err)

	types, err := svc.ResetToDefaults(ctx, []config.EntityTypeDefault{
		{Name: "Person", Description: "A human being"},
		{Name: "Place", Description: "A geographic location"},
	})
	assert.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, SourceConfig, types[0].Source)

	all, err := svc.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

// TestLastWriterWins pins the documented race: the collection is one shared
// record with no optimistic locking, so two writers that both loaded the
// same snapshot overwrite each other and the loser's change is gone. This
// is expected behavior, not a regression.
func TestLastWriterWins(t *testing.T) {
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	first := NewService(s)
	second := NewService(s)

	_, err = first.Create(ctx, "Person", "A human being mentioned in the text", nil)
	require.NoError(t, err)

	// Both writers observe the one-element collection, then write their own
	// two-element version. Whoever writes last determines the outcome.
	_, err = first.Create(ctx, "Place", "A geographic location", nil)
	require.NoError(t, err)

	// Simulate the second writer having loaded before "Place" was written:
	// replay its write from the stale snapshot.
	stale := []EntityType{
		{Name: "Person", Description: "A human being mentioned in the text", Source: SourceAPI},
		{Name: "Event", Description: "Something that happened", Source: SourceAPI},
	}
	require.NoError(t, second.save(ctx, stale))

	all, err := first.GetAll(ctx)
	assert.NoError(t, err)
	require.Len(t, all, 2)
	// "Place" was lost to the later write.
	names := []string{all[0].Name, all[1].Name}
	assert.Equal(t, []string{"Person", "Event"}, names)
}
