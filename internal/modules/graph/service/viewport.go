package service

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"medgraph/internal/modules/graph/domain"
	graphout "medgraph/internal/modules/graph/port/out"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/metrics"
)

// Viewport owns the single live rendering instance. Nothing else holds a
// reference to it.
type Viewport struct {
	surface graphout.Surface
	opts    domain.VisualOptions
	metrics *metrics.Registry
	log     *zap.Logger

	mu       sync.Mutex
	instance graphout.Instance
}

func NewViewport(surface graphout.Surface, opts domain.VisualOptions, m *metrics.Registry, log *zap.Logger) *Viewport {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewport{surface: surface, opts: opts, metrics: m, log: log.Named("viewport")}
}

func (v *Viewport) State() domain.ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.instance == nil {
		return domain.ViewportEmpty
	}
	return domain.ViewportLive
}

func (v *Viewport) Options() domain.VisualOptions { return v.opts }

// Present mounts a new instance. Calling it while Live is a caller bug; use
// Update or Show.
func (v *Viewport) Present(s domain.Structure) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.presentLocked(s)
}

// Update replaces the data of the live instance in place.
func (v *Viewport) Update(s domain.Structure) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updateLocked(s)
}

// Show presents when Empty and updates when Live.
func (v *Viewport) Show(s domain.Structure) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.instance == nil {
		return v.presentLocked(s)
	}
	return v.updateLocked(s)
}

func (v *Viewport) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.instance == nil {
		return
	}
	v.instance.Destroy()
	v.instance = nil
	v.metrics.ViewportOp("clear")
	v.log.Debug("viewport cleared")
}

// With runs fn against the live instance under the viewport lock. It reports
// false when the viewport is Empty.
func (v *Viewport) With(fn func(graphout.Instance)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.instance == nil {
		return false
	}
	fn(v.instance)
	return true
}

func (v *Viewport) presentLocked(s domain.Structure) error {
	if v.instance != nil {
		return apperrors.ErrViewportLive
	}
	inst, err := v.surface.Mount(s, v.opts)
	if err != nil {
		return fmt.Errorf("mount graph: %w", err)
	}
	v.instance = inst
	v.metrics.ViewportOp("present")
	v.log.Debug("viewport presented", zap.Int("nodes", len(s.Nodes)), zap.Int("edges", len(s.Edges)))
	return nil
}

func (v *Viewport) updateLocked(s domain.Structure) error {
	if v.instance == nil {
		return apperrors.ErrViewportEmpty
	}
	if err := v.instance.SetData(s); err != nil {
		return fmt.Errorf("update graph: %w", err)
	}
	v.metrics.ViewportOp("update")
	v.log.Debug("viewport updated", zap.Int("nodes", len(s.Nodes)), zap.Int("edges", len(s.Edges)))
	return nil
}
