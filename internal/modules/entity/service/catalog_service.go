package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"medgraph/internal/modules/entity/domain"
	entityout "medgraph/internal/modules/entity/port/out"
	apperrors "medgraph/internal/platform/errors"
)

type CatalogService struct {
	dir   entityout.Directory
	cache *EntityCache
	log   *zap.Logger
}

func NewCatalogService(dir entityout.Directory, cache *EntityCache, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{dir: dir, cache: cache, log: log.Named("entity")}
}

// Refresh reloads both lists. The cache is left untouched on failure.
func (s *CatalogService) Refresh(ctx context.Context) error {
	persons, err := s.dir.ListPersons(ctx)
	if err != nil {
		return fmt.Errorf("list persons: %w", err)
	}
	diseases, err := s.dir.ListDiseases(ctx)
	if err != nil {
		return fmt.Errorf("list diseases: %w", err)
	}
	s.cache.Replace(persons, diseases)
	s.log.Debug("entity cache refreshed", zap.Int("persons", len(persons)), zap.Int("diseases", len(diseases)))
	return nil
}

func (s *CatalogService) Persons(ctx context.Context) ([]domain.Entity, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.cache.Persons(), nil
}

func (s *CatalogService) Diseases(ctx context.Context) ([]domain.Entity, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.cache.Diseases(), nil
}

// Lookup resolves a name from the cache, loading it once if it has never
// been filled. A failed load is logged and reported as a miss.
func (s *CatalogService) Lookup(ctx context.Context, kind domain.Kind, id string) (domain.Entity, bool) {
	if err := s.ensureLoaded(ctx); err != nil {
		s.log.Warn("entity lookup without cache", zap.String("id", id), zap.Error(err))
		return domain.Entity{}, false
	}
	return s.cache.Lookup(kind, id)
}

func (s *CatalogService) CreatePerson(ctx context.Context, name string, age int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	msg, err := s.dir.CreatePerson(ctx, name, age)
	if err != nil {
		return "", err
	}
	s.refreshAfterMutation(ctx)
	return msg, nil
}

func (s *CatalogService) CreateDisease(ctx context.Context, name, description string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	msg, err := s.dir.CreateDisease(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return "", err
	}
	s.refreshAfterMutation(ctx)
	return msg, nil
}

func (s *CatalogService) ensureLoaded(ctx context.Context) error {
	if s.cache.Loaded() {
		return nil
	}
	return s.Refresh(ctx)
}

// refreshAfterMutation keeps the mutation's success even when the follow-up
// fetch fails; the next Refresh catches up.
func (s *CatalogService) refreshAfterMutation(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("refresh after mutation failed", zap.Error(err))
	}
}
