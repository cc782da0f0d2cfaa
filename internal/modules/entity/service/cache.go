package service

import (
	"sync"

	"medgraph/internal/modules/entity/domain"
)

type cacheKey struct {
	kind domain.Kind
	id   string
}

// EntityCache holds the persons and diseases from the last successful fetch.
// It is replaced wholesale; entries are never edited in place.
type EntityCache struct {
	mu       sync.RWMutex
	persons  []domain.Entity
	diseases []domain.Entity
	index    map[cacheKey]domain.Entity
	loaded   bool
}

func NewEntityCache() *EntityCache {
	return &EntityCache{index: map[cacheKey]domain.Entity{}}
}

func (c *EntityCache) Replace(persons, diseases []domain.Entity) {
	index := make(map[cacheKey]domain.Entity, len(persons)+len(diseases))
	for _, e := range persons {
		index[cacheKey{domain.KindPerson, e.ID}] = e
	}
	for _, e := range diseases {
		index[cacheKey{domain.KindDisease, e.ID}] = e
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persons = append([]domain.Entity(nil), persons...)
	c.diseases = append([]domain.Entity(nil), diseases...)
	c.index = index
	c.loaded = true
}

func (c *EntityCache) Persons() []domain.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Entity(nil), c.persons...)
}

func (c *EntityCache) Diseases() []domain.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Entity(nil), c.diseases...)
}

func (c *EntityCache) Lookup(kind domain.Kind, id string) (domain.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.index[cacheKey{kind, id}]
	return e, ok
}

func (c *EntityCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
