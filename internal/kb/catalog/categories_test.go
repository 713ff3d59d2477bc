package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
)

func TestCategoryCascadeDelete(t *testing.T) {
	s := store.NewMemoryStore()
	categories := NewCategories(s)
	points := NewKnowledgePoints(s)
	ctx := context.Background()

	root, err := categories.Add(ctx, "退换货", "")
	require.NoError(t, err)
	child, err := categories.Add(ctx, "退货流程", root.ID)
	require.NoError(t, err)
	grandchild, err := categories.Add(ctx, "国际退货", child.ID)
	require.NoError(t, err)
	unrelated, err := categories.Add(ctx, "账单", "")
	require.NoError(t, err)

	_, err = points.Add(ctx, models.KnowledgePoint{
		CategoryID:       child.ID,
		StandardQuestion: "如何退货？",
		Answer:           "<p>removed with its category</p>",
	})
	require.NoError(t, err)
	_, err = points.Add(ctx, models.KnowledgePoint{
		CategoryID:       grandchild.ID,
		StandardQuestion: "国际订单如何退货？",
		Answer:           "<p>removed with its category</p>",
	})
	require.NoError(t, err)
	inUnrelated, err := points.Add(ctx, models.KnowledgePoint{
		CategoryID:       unrelated.ID,
		StandardQuestion: "如何查看账单？",
		Answer:           "<p>retained</p>",
	})
	require.NoError(t, err)

	require.NoError(t, categories.Delete(ctx, root.ID))

	remaining, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, unrelated.ID, remaining[0].ID)

	remainingPoints, err := points.List(ctx)
	require.NoError(t, err)
	require.Len(t, remainingPoints, 1)
	assert.Equal(t, inUnrelated.ID, remainingPoints[0].ID)
}

func TestCategoryDeleteLeaf(t *testing.T) {
	s := store.NewMemoryStore()
	categories := NewCategories(s)
	ctx := context.Background()

	root, err := categories.Add(ctx, "root", "")
	require.NoError(t, err)
	leaf, err := categories.Add(ctx, "leaf", root.ID)
	require.NoError(t, err)

	require.NoError(t, categories.Delete(ctx, leaf.ID))

	remaining, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, root.ID, remaining[0].ID)
}

func TestCategoryDeleteMissing(t *testing.T) {
	s := store.NewMemoryStore()
	categories := NewCategories(s)

	err := categories.Delete(context.Background(), "no-such-id")
	assert.Error(t, err)
}

func TestDescendantClosure(t *testing.T) {
	categories := []models.Category{
		{ID: "a", ParentID: ""},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "b"},
		{ID: "d", ParentID: "a"},
		{ID: "e", ParentID: ""},
	}

	closure := descendantClosure(categories, "a")
	assert.Len(t, closure, 4)
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Contains(t, closure, id)
	}
	assert.NotContains(t, closure, "e")

	assert.Empty(t, descendantClosure(categories, "missing"))
}
