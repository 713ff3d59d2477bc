package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

// Categories owns the category collection. Every command is a full
// read-modify-write against the store, serialized through the controller's
// mutex; there are no concurrent writers beyond that.
type Categories struct {
	mu    sync.Mutex
	store store.Store
}

func NewCategories(s store.Store) *Categories {
	return &Categories{store: s}
}

func (c *Categories) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.store.Read(ctx, store.KeyCategories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Categories) Add(ctx context.Context, name, parentID string) (*models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var categories []models.Category
	if err := c.store.Read(ctx, store.KeyCategories, &categories); err != nil {
		return nil, err
	}

	category := models.Category{
		ID:       uuid.New().String(),
		Name:     name,
		ParentID: parentID,
	}
	categories = append(categories, category)

	if err := c.store.Write(ctx, store.KeyCategories, categories); err != nil {
		return nil, err
	}

	logger.Info("Category created",
		zap.String("category_id", category.ID),
		zap.String("name", name),
	)

	return &category, nil
}

func (c *Categories) Update(ctx context.Context, id, name, parentID string) (*models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var categories []models.Category
	if err := c.store.Read(ctx, store.KeyCategories, &categories); err != nil {
		return nil, err
	}

	for i := range categories {
		if categories[i].ID == id {
			categories[i].Name = name
			categories[i].ParentID = parentID
			if err := c.store.Write(ctx, store.KeyCategories, categories); err != nil {
				return nil, err
			}
			return &categories[i], nil
		}
	}

	return nil, fmt.Errorf("category %s not found", id)
}

// Delete removes the category, every descendant reachable over ParentID,
// and every knowledge point referencing any of them. Two collection writes;
// unrelated categories and points are untouched.
func (c *Categories) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var categories []models.Category
	if err := c.store.Read(ctx, store.KeyCategories, &categories); err != nil {
		return err
	}

	doomed := descendantClosure(categories, id)
	if len(doomed) == 0 {
		return fmt.Errorf("category %s not found", id)
	}

	kept := categories[:0]
	for _, category := range categories {
		if _, gone := doomed[category.ID]; !gone {
			kept = append(kept, category)
		}
	}

	if err := c.store.Write(ctx, store.KeyCategories, kept); err != nil {
		return err
	}

	var points []models.KnowledgePoint
	if err := c.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return err
	}

	keptPoints := points[:0]
	removed := 0
	for _, point := range points {
		if _, gone := doomed[point.CategoryID]; gone {
			removed++
			continue
		}
		keptPoints = append(keptPoints, point)
	}

	if err := c.store.Write(ctx, store.KeyKnowledgePoints, keptPoints); err != nil {
		return err
	}

	logger.Info("Category deleted",
		zap.String("category_id", id),
		zap.Int("categories_removed", len(doomed)),
		zap.Int("knowledge_points_removed", removed),
	)

	return nil
}

// descendantClosure builds the parent→children index once, then walks it
// from root. Returns the set of the root's ID plus all transitive
// descendants, or an empty set when root does not exist.
func descendantClosure(categories []models.Category, root string) map[string]struct{} {
	children := make(map[string][]string, len(categories))
	exists := false
	for _, category := range categories {
		if category.ID == root {
			exists = true
		}
		if category.ParentID != "" {
			children[category.ParentID] = append(children[category.ParentID], category.ID)
		}
	}

	closure := make(map[string]struct{})
	if !exists {
		return closure
	}

	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, seen := closure[id]; seen {
			continue
		}
		closure[id] = struct{}{}
		queue = append(queue, children[id]...)
	}

	return closure
}
