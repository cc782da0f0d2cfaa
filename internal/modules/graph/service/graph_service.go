package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"medgraph/internal/modules/graph/domain"
	graphout "medgraph/internal/modules/graph/port/out"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/metrics"
)

// View is what one render produced.
type View struct {
	Focus         domain.Focus
	Relationships []domain.Relationship
	Structure     domain.Structure
}

// GraphService drives the viewport from backend data. Every render re-fetches
// the focal person's relationships; a render whose focus was replaced while
// it was fetching is dropped.
type GraphService struct {
	store    graphout.RelationshipStore
	viewport *Viewport
	metrics  *metrics.Registry
	log      *zap.Logger
	flight   singleflight.Group

	mu         sync.Mutex
	generation uint64
	focus      *domain.Focus
}

func NewGraphService(store graphout.RelationshipStore, viewport *Viewport, m *metrics.Registry, log *zap.Logger) *GraphService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GraphService{store: store, viewport: viewport, metrics: m, log: log.Named("graph")}
}

func (s *GraphService) Viewport() *Viewport { return s.viewport }

// Current returns the focal person, if any.
func (s *GraphService) Current() (domain.Focus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus == nil {
		return domain.Focus{}, false
	}
	return *s.focus, true
}

// Focus switches the graph to person. When the viewport is already Live the
// new data goes through Update so the camera stays put.
func (s *GraphService) Focus(ctx context.Context, focus domain.Focus) (View, error) {
	focus.ID = strings.TrimSpace(focus.ID)
	if focus.ID == "" {
		return View{}, fmt.Errorf("%w: person is required", apperrors.ErrInvalidInput)
	}
	return s.render(ctx, s.claim(focus), focus, s.fetch)
}

// claim makes focus current and returns its generation.
func (s *GraphService) claim(focus domain.Focus) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.focus = &focus
	return s.generation
}

// Refresh re-renders the current focus.
func (s *GraphService) Refresh(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.focus == nil {
		s.mu.Unlock()
		return View{}, apperrors.ErrNoFocus
	}
	s.generation++
	gen, focus := s.generation, *s.focus
	s.mu.Unlock()
	return s.render(ctx, gen, focus, s.fetch)
}

// Clear drops the focus and destroys the live instance. In-flight renders
// are discarded when they return.
func (s *GraphService) Clear() {
	s.mu.Lock()
	s.generation++
	s.focus = nil
	s.mu.Unlock()
	s.viewport.Clear()
}

// Link creates person -> disease and, on success, renders person. A rejection
// leaves the graph untouched.
func (s *GraphService) Link(ctx context.Context, person, disease string) (string, View, error) {
	return s.mutate(ctx, person, disease, s.store.Link)
}

func (s *GraphService) Unlink(ctx context.Context, person, disease string) (string, View, error) {
	return s.mutate(ctx, person, disease, s.store.Unlink)
}

func (s *GraphService) mutate(ctx context.Context, person, disease string, op func(context.Context, string, string) (string, error)) (string, View, error) {
	person, disease = strings.TrimSpace(person), strings.TrimSpace(disease)
	if person == "" {
		current, ok := s.Current()
		if !ok {
			return "", View{}, apperrors.ErrNoFocus
		}
		person = current.ID
	}
	if disease == "" {
		return "", View{}, fmt.Errorf("%w: disease is required", apperrors.ErrInvalidInput)
	}
	msg, err := op(ctx, person, disease)
	if err != nil {
		return "", View{}, err
	}
	focus := domain.Focus{ID: person}
	if current, ok := s.Current(); ok && current.ID == person {
		focus = current
	}
	// A fetch already in flight for person read the edges before the write;
	// the reload must not join it, and later focuses must not either.
	s.flight.Forget(person)
	view, err := s.render(ctx, s.claim(focus), focus, s.fetchFresh)
	if err != nil {
		return msg, View{}, fmt.Errorf("re-render after mutation: %w", err)
	}
	return msg, view, nil
}

func (s *GraphService) render(ctx context.Context, gen uint64, focus domain.Focus, fetch func(context.Context, string) ([]domain.Relationship, error)) (View, error) {
	rels, err := fetch(ctx, focus.ID)
	if err != nil {
		return View{}, err
	}
	structure, err := domain.Build(&focus, rels)
	if err != nil {
		s.log.Error("graph model rejected backend data", zap.String("person", focus.ID), zap.Error(err))
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.metrics.FocusDiscarded("graph")
		s.log.Debug("graph result superseded", zap.String("person", focus.ID), zap.Uint64("generation", gen))
		return View{}, apperrors.ErrSuperseded
	}
	if err := s.viewport.Show(structure); err != nil {
		return View{}, err
	}
	return View{Focus: focus, Relationships: rels, Structure: structure}, nil
}

// fetch collapses identical concurrent requests for the same person. The
// shared call ignores the first caller's cancellation so joined callers are
// not failed by it.
func (s *GraphService) fetch(ctx context.Context, person string) ([]domain.Relationship, error) {
	v, err, _ := s.flight.Do(person, func() (any, error) {
		return s.store.Relationships(context.WithoutCancel(ctx), person)
	})
	if err != nil {
		return nil, s.fetchFailed(person, err)
	}
	return v.([]domain.Relationship), nil
}

// fetchFresh always issues its own request.
func (s *GraphService) fetchFresh(ctx context.Context, person string) ([]domain.Relationship, error) {
	rels, err := s.store.Relationships(ctx, person)
	if err != nil {
		return nil, s.fetchFailed(person, err)
	}
	return rels, nil
}

func (s *GraphService) fetchFailed(person string, err error) error {
	if !errors.Is(err, apperrors.ErrRejected) {
		s.log.Warn("fetch relationships failed", zap.String("person", person), zap.Error(err))
	}
	return fmt.Errorf("fetch relationships for %s: %w", person, err)
}
