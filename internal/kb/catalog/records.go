package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
)

// records is the shared CRUD controller for the flat configuration
// collections (robots, entities, intents). Same read-modify-write
// discipline as the other controllers, serialized per collection.
type records[T any] struct {
	mu    sync.Mutex
	store store.Store
	key   string
	getID func(*T) string
	setID func(*T, string)
}

func (r *records[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.store.Read(ctx, r.key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *records[T]) Get(ctx context.Context, id string) (*T, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if r.getID(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%s record %s not found", r.key, id)
}

func (r *records[T]) Add(ctx context.Context, item T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setID(&item, uuid.New().String())

	var items []T
	if err := r.store.Read(ctx, r.key, &items); err != nil {
		return nil, err
	}

	items = append(items, item)
	if err := r.store.Write(ctx, r.key, items); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *records[T]) Update(ctx context.Context, item T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []T
	if err := r.store.Read(ctx, r.key, &items); err != nil {
		return nil, err
	}

	id := r.getID(&item)
	for i := range items {
		if r.getID(&items[i]) == id {
			items[i] = item
			if err := r.store.Write(ctx, r.key, items); err != nil {
				return nil, err
			}
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%s record %s not found", r.key, id)
}

func (r *records[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []T
	if err := r.store.Read(ctx, r.key, &items); err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for i := range items {
		if r.getID(&items[i]) == id {
			found = true
			continue
		}
		kept = append(kept, items[i])
	}

	if !found {
		return fmt.Errorf("%s record %s not found", r.key, id)
	}
	return r.store.Write(ctx, r.key, kept)
}

type Robots struct{ records[models.Robot] }

func NewRobots(s store.Store) *Robots {
	r := &Robots{}
	r.store = s
	r.key = store.KeyRobots
	r.getID = func(m *models.Robot) string { return m.ID }
	r.setID = func(m *models.Robot, id string) { m.ID = id }
	return r
}

type Entities struct{ records[models.Entity] }

func NewEntities(s store.Store) *Entities {
	e := &Entities{}
	e.store = s
	e.key = store.KeyEntities
	e.getID = func(m *models.Entity) string { return m.ID }
	e.setID = func(m *models.Entity, id string) { m.ID = id }
	return e
}

type Intents struct{ records[models.Intent] }

func NewIntents(s store.Store) *Intents {
	i := &Intents{}
	i.store = s
	i.key = store.KeyIntents
	i.getID = func(m *models.Intent) string { return m.ID }
	i.setID = func(m *models.Intent, id string) { m.ID = id }
	return i
}
