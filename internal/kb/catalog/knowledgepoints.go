package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

// KnowledgePoints owns the knowledge point collection. Writes are lenient:
// CategoryID and RelatedQuestionIDs are stored as given and never checked
// against their target collections. Readers resolve and filter instead.
type KnowledgePoints struct {
	mu    sync.Mutex
	store store.Store
}

func NewKnowledgePoints(s store.Store) *KnowledgePoints {
	return &KnowledgePoints{store: s}
}

func (k *KnowledgePoints) List(ctx context.Context) ([]models.KnowledgePoint, error) {
	var points []models.KnowledgePoint
	if err := k.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// ListPublished returns the matchable subset in stored order.
func (k *KnowledgePoints) ListPublished(ctx context.Context) ([]models.KnowledgePoint, error) {
	points, err := k.List(ctx)
	if err != nil {
		return nil, err
	}

	published := make([]models.KnowledgePoint, 0, len(points))
	for _, point := range points {
		if point.Status == models.StatusPublished {
			published = append(published, point)
		}
	}
	return published, nil
}

func (k *KnowledgePoints) Get(ctx context.Context, id string) (*models.KnowledgePoint, error) {
	points, err := k.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range points {
		if points[i].ID == id {
			return &points[i], nil
		}
	}
	return nil, fmt.Errorf("knowledge point %s not found", id)
}

func (k *KnowledgePoints) Add(ctx context.Context, point models.KnowledgePoint) (*models.KnowledgePoint, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	point.ID = uuid.New().String()
	point.CreatedAt = time.Now()
	if point.Status == "" {
		point.Status = models.StatusDraft
	}

	var points []models.KnowledgePoint
	if err := k.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return nil, err
	}

	points = append(points, point)
	if err := k.store.Write(ctx, store.KeyKnowledgePoints, points); err != nil {
		return nil, err
	}

	logger.Info("Knowledge point created",
		zap.String("point_id", point.ID),
		zap.String("standard_question", point.StandardQuestion),
		zap.String("status", point.Status),
	)

	return &point, nil
}

// AddBatch appends several points in a single collection write. Used by the
// cold-start pipeline so a generation failure never leaves a partial batch
// behind.
func (k *KnowledgePoints) AddBatch(ctx context.Context, batch []models.KnowledgePoint) ([]models.KnowledgePoint, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	for i := range batch {
		batch[i].ID = uuid.New().String()
		batch[i].CreatedAt = now
		if batch[i].Status == "" {
			batch[i].Status = models.StatusDraft
		}
	}

	var points []models.KnowledgePoint
	if err := k.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return nil, err
	}

	points = append(points, batch...)
	if err := k.store.Write(ctx, store.KeyKnowledgePoints, points); err != nil {
		return nil, err
	}

	logger.Info("Knowledge points created in batch", zap.Int("count", len(batch)))

	return batch, nil
}

func (k *KnowledgePoints) Update(ctx context.Context, updated models.KnowledgePoint) (*models.KnowledgePoint, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var points []models.KnowledgePoint
	if err := k.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return nil, err
	}

	for i := range points {
		if points[i].ID == updated.ID {
			updated.CreatedAt = points[i].CreatedAt
			points[i] = updated
			if err := k.store.Write(ctx, store.KeyKnowledgePoints, points); err != nil {
				return nil, err
			}
			return &points[i], nil
		}
	}

	return nil, fmt.Errorf("knowledge point %s not found", updated.ID)
}

func (k *KnowledgePoints) SetStatus(ctx context.Context, id, status string) (*models.KnowledgePoint, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	switch status {
	case models.StatusPublished, models.StatusDraft, models.StatusArchived:
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}

	var points []models.KnowledgePoint
	if err := k.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return nil, err
	}

	for i := range points {
		if points[i].ID == id {
			points[i].Status = status
			if err := k.store.Write(ctx, store.KeyKnowledgePoints, points); err != nil {
				return nil, err
			}
			return &points[i], nil
		}
	}

	return nil, fmt.Errorf("knowledge point %s not found", id)
}

func (k *KnowledgePoints) Delete(ctx context.Context, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var points []models.KnowledgePoint
	if err := k.store.Read(ctx, store.KeyKnowledgePoints, &points); err != nil {
		return err
	}

	kept := points[:0]
	found := false
	for _, point := range points {
		if point.ID == id {
			found = true
			continue
		}
		kept = append(kept, point)
	}

	if !found {
		return fmt.Errorf("knowledge point %s not found", id)
	}

	return k.store.Write(ctx, store.KeyKnowledgePoints, kept)
}

// ResolveRelated is the strict-read half of the lenient-write policy:
// dangling IDs and references to non-published points are silently dropped.
func (k *KnowledgePoints) ResolveRelated(ctx context.Context, point *models.KnowledgePoint) ([]models.KnowledgePoint, error) {
	if len(point.RelatedQuestionIDs) == 0 {
		return nil, nil
	}

	points, err := k.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.KnowledgePoint, len(points))
	for _, p := range points {
		byID[p.ID] = p
	}

	var related []models.KnowledgePoint
	for _, id := range point.RelatedQuestionIDs {
		if target, ok := byID[id]; ok && target.Status == models.StatusPublished {
			related = append(related, target)
		}
	}
	return related, nil
}
