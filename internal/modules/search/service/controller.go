package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"medgraph/internal/modules/search/domain"
	searchout "medgraph/internal/modules/search/port/out"
	"medgraph/internal/platform/clock"
	"medgraph/internal/platform/metrics"
)

const EmptyMessage = "No patients found"

type Options struct {
	MinQueryLength int
	Debounce       time.Duration
}

// Controller debounces keystrokes into lookups and decides which response
// may reach the panel. All panel writes happen under mu so a dismiss can
// never be overtaken by an older response.
type Controller struct {
	lookup  searchout.Lookup
	panel   searchout.Panel
	sched   clock.Scheduler
	opts    Options
	metrics *metrics.Registry
	log     *zap.Logger

	mu          sync.Mutex
	session     domain.Session
	pending     clock.Timer
	scheduled   uint64
	subscribers []func(string)
}

func NewController(lookup searchout.Lookup, panel searchout.Panel, sched clock.Scheduler, opts Options, m *metrics.Registry, log *zap.Logger) *Controller {
	if opts.MinQueryLength < 1 {
		opts.MinQueryLength = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		lookup:  lookup,
		panel:   panel,
		sched:   sched,
		opts:    opts,
		metrics: m,
		log:     log.Named("search"),
	}
}

func (c *Controller) Subscribe(fn func(name string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// OnInput restarts the quiet period. Short input clears the panel at once.
func (c *Controller) OnInput(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	if !domain.ShouldLookup(text, c.opts.MinQueryLength) {
		c.session.Invalidate()
		c.session.Close()
		c.panel.Close("")
		return
	}
	query := strings.TrimSpace(text)
	seq := c.scheduled
	c.pending = c.sched.AfterFunc(c.opts.Debounce, func() {
		c.fire(ctx, seq, query)
	})
}

func (c *Controller) fire(ctx context.Context, seq uint64, query string) {
	c.mu.Lock()
	if seq != c.scheduled {
		// Stop lost the race with the timer; a newer keystroke owns the panel.
		c.mu.Unlock()
		return
	}
	c.pending = nil
	token := c.session.Issue(query)
	c.mu.Unlock()

	c.metrics.LookupIssued()
	results, err := c.lookup.SearchPersons(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("patient lookup failed", zap.String("query", query), zap.Uint64("token", uint64(token)), zap.Error(err))
		return
	}
	if !c.session.Accept(token, results) {
		c.metrics.StaleDiscarded()
		c.log.Debug("stale lookup discarded",
			zap.Uint64("token", uint64(token)),
			zap.Uint64("latest", uint64(c.session.Latest())))
		return
	}
	if len(results) == 0 {
		c.panel.ShowEmpty(query, EmptyMessage)
		return
	}
	c.panel.ShowResults(query, results)
}

// Select resolves the session to the result named id and notifies
// subscribers outside the lock. An id missing from the current results
// leaves the session open.
func (c *Controller) Select(id string) (domain.Candidate, error) {
	c.mu.Lock()
	picked, err := c.session.Pick(id)
	if err != nil {
		c.mu.Unlock()
		return domain.Candidate{}, err
	}
	c.resetLocked(picked.ID)
	subs := append([]func(string){}, c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(picked.ID)
	}
	return picked, nil
}

// Dismiss closes the panel without selecting.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked("")
}

// Search runs one immediate lookup, bypassing the debounce and the panel.
func (c *Controller) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	c.metrics.LookupIssued()
	return c.lookup.SearchPersons(ctx, strings.TrimSpace(query))
}

func (c *Controller) resetLocked(selected string) {
	c.cancelPendingLocked()
	c.session.Invalidate()
	c.session.Close()
	c.panel.Close(selected)
}

func (c *Controller) cancelPendingLocked() {
	c.scheduled++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}
