package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
)

func TestAddDefaultsToDraft(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())

	created, err := points.Add(context.Background(), models.KnowledgePoint{
		StandardQuestion: "q",
		Answer:           "a",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, models.StatusDraft, created.Status)
}

func TestAddAcceptsDanglingReferences(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())
	ctx := context.Background()

	// Lenient write: neither the category nor the related IDs exist,
	// and the write still succeeds with the references stored as given.
	created, err := points.Add(ctx, models.KnowledgePoint{
		CategoryID:         "ghost-category",
		StandardQuestion:   "q",
		Answer:             "a",
		RelatedQuestionIDs: []string{"ghost-1", "ghost-2"},
	})
	require.NoError(t, err)

	stored, err := points.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ghost-category", stored.CategoryID)
	assert.Equal(t, []string{"ghost-1", "ghost-2"}, stored.RelatedQuestionIDs)
}

func TestResolveRelatedFiltersToPublished(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())
	ctx := context.Background()

	published, err := points.Add(ctx, models.KnowledgePoint{
		StandardQuestion: "published q",
		Answer:           "a",
		Status:           models.StatusPublished,
	})
	require.NoError(t, err)
	draft, err := points.Add(ctx, models.KnowledgePoint{
		StandardQuestion: "draft q",
		Answer:           "a",
	})
	require.NoError(t, err)
	archived, err := points.Add(ctx, models.KnowledgePoint{
		StandardQuestion: "archived q",
		Answer:           "a",
		Status:           models.StatusArchived,
	})
	require.NoError(t, err)

	source := &models.KnowledgePoint{
		RelatedQuestionIDs: []string{published.ID, draft.ID, archived.ID, "dangling"},
	}

	related, err := points.ResolveRelated(ctx, source)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, published.ID, related[0].ID)

	// No references resolves to nothing, not an error.
	related, err = points.ResolveRelated(ctx, &models.KnowledgePoint{})
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())
	ctx := context.Background()

	created, err := points.Add(ctx, models.KnowledgePoint{
		StandardQuestion: "q",
		Answer:           "a",
	})
	require.NoError(t, err)

	edited := *created
	edited.Answer = "revised answer"
	edited.CreatedAt = edited.CreatedAt.AddDate(1, 0, 0) // caller tampering is ignored

	updated, err := points.Update(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, "revised answer", updated.Answer)
	// time.Equal, not assert.Equal: the stored copy went through a JSON
	// round-trip that drops the monotonic clock reading, so the values
	// denote the same instant without being deeply equal.
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt),
		"CreatedAt changed: %v != %v", created.CreatedAt, updated.CreatedAt)
}

func TestSetStatusValidation(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())
	ctx := context.Background()

	created, err := points.Add(ctx, models.KnowledgePoint{
		StandardQuestion: "q",
		Answer:           "a",
	})
	require.NoError(t, err)

	updated, err := points.SetStatus(ctx, created.ID, models.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, updated.Status)

	_, err = points.SetStatus(ctx, created.ID, "live")
	assert.Error(t, err)

	_, err = points.SetStatus(ctx, "missing-id", models.StatusDraft)
	assert.Error(t, err)
}

func TestListPublishedOrder(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())
	ctx := context.Background()

	for _, p := range []models.KnowledgePoint{
		{StandardQuestion: "first", Answer: "a", Status: models.StatusPublished},
		{StandardQuestion: "second", Answer: "a"},
		{StandardQuestion: "third", Answer: "a", Status: models.StatusPublished},
	} {
		_, err := points.Add(ctx, p)
		require.NoError(t, err)
	}

	published, err := points.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "first", published[0].StandardQuestion)
	assert.Equal(t, "third", published[1].StandardQuestion)
}

func TestAddBatchSingleWrite(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewKnowledgePoints(s)
	ctx := context.Background()

	batch, err := points.AddBatch(ctx, []models.KnowledgePoint{
		{StandardQuestion: "q1", Answer: "a1", CreatedBy: "coldstart"},
		{StandardQuestion: "q2", Answer: "a2", CreatedBy: "coldstart"},
	})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)

	stored, err := points.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	for _, p := range stored {
		assert.Equal(t, models.StatusDraft, p.Status)
		assert.Equal(t, "coldstart", p.CreatedBy)
	}
}

func TestDeleteKnowledgePoint(t *testing.T) {
	points := NewKnowledgePoints(store.NewMemoryStore())
	ctx := context.Background()

	created, err := points.Add(ctx, models.KnowledgePoint{StandardQuestion: "q", Answer: "a"})
	require.NoError(t, err)

	require.NoError(t, points.Delete(ctx, created.ID))
	assert.Error(t, points.Delete(ctx, created.ID))

	remaining, err := points.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
