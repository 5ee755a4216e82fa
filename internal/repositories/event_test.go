package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

func TestEventRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	byID, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, byID.Title)
	assert.Equal(t, models.StatusPublished, byID.Status)

	bySlug, err := repo.GetBySlug(ctx, event.Slug)
	require.NoError(t, err)
	assert.Equal(t, event.ID, bySlug.ID)
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)

	_, err := repo.GetByID(context.Background(), -1)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestEventRepository_SlugExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	exists, err := repo.SlugExists(ctx, event.Slug)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(ctx, event.Slug+"-missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEventRepository_Create_DuplicateSlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	_, err := repo.Create(ctx, &models.Event{
		OrganizerID: organizer.ID,
		Title:       "Duplicate",
		Slug:        event.Slug,
		Location:    "Elsewhere",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(26 * time.Hour),
		Status:      models.StatusDraft,
	})
	assert.ErrorIs(t, err, models.ErrDuplicateEntry)
}

func TestEventRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	newStart := time.Now().Add(72 * time.Hour)
	updated, err := repo.Update(ctx, event.ID, &models.EventUpdateRequest{
		Title:       "Updated Title",
		Description: "Updated description",
		Location:    "Town Hall",
		StartDate:   newStart,
		EndDate:     newStart.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, "Town Hall", updated.Location)
	// Slug is stable across edits
	assert.Equal(t, event.Slug, updated.Slug)
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	err := repo.UpdateStatus(ctx, event.ID, models.StatusCancelled)
	require.NoError(t, err)

	reloaded, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, reloaded.Status)
}

func TestEventRepository_Delete_DraftOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)

	// Published events cannot be deleted
	published := createTestEvent(t, db, organizer.ID)
	err := repo.Delete(ctx, published.ID)
	assert.Error(t, err)

	// Draft events can
	draft := createTestEvent(t, db, organizer.ID)
	require.NoError(t, repo.UpdateStatus(ctx, draft.ID, models.StatusDraft))
	err = repo.Delete(ctx, draft.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, draft.ID)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestEventRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	// Organizer filter
	events, total, err := repo.Search(ctx, EventSearchFilters{OrganizerID: organizer.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)

	// Status filter excludes the published event
	_, total, err = repo.Search(ctx, EventSearchFilters{
		OrganizerID: organizer.ID,
		Status:      models.StatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// Text query matches the unique title
	events, total, err = repo.Search(ctx, EventSearchFilters{Query: event.Title})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
}
