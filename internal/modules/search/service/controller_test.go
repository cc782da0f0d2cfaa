package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/modules/search/domain"
	"medgraph/internal/platform/clock"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/metrics"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	t := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

type panelCall struct {
	kind     string
	query    string
	message  string
	selected string
	results  []domain.Candidate
}

type recordingPanel struct {
	mu    sync.Mutex
	calls []panelCall
}

func (p *recordingPanel) ShowResults(query string, results []domain.Candidate) {
	p.record(panelCall{kind: "results", query: query, results: results})
}

func (p *recordingPanel) ShowEmpty(query, message string) {
	p.record(panelCall{kind: "empty", query: query, message: message})
}

func (p *recordingPanel) Close(selected string) {
	p.record(panelCall{kind: "close", selected: selected})
}

func (p *recordingPanel) record(c panelCall) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func (p *recordingPanel) snapshot() []panelCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]panelCall(nil), p.calls...)
}

// gatedLookup blocks each query until the test releases it, so responses can
// be delivered out of order.
type gatedLookup struct {
	started chan string
	gates   map[string]chan []domain.Candidate
}

func newGatedLookup(queries ...string) *gatedLookup {
	g := &gatedLookup{started: make(chan string, len(queries)), gates: map[string]chan []domain.Candidate{}}
	for _, q := range queries {
		g.gates[q] = make(chan []domain.Candidate, 1)
	}
	return g
}

func (g *gatedLookup) SearchPersons(_ context.Context, query string) ([]domain.Candidate, error) {
	g.started <- query
	return <-g.gates[query], nil
}

type stubLookup struct {
	results []domain.Candidate
	err     error
	queries []string
}

func (s *stubLookup) SearchPersons(_ context.Context, query string) ([]domain.Candidate, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func goRun(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

var testOptions = Options{MinQueryLength: 2, Debounce: 300 * time.Millisecond}

func TestStaleResponseNeverOverwritesFresherResults(t *testing.T) {
	t.Parallel()
	lookup := newGatedLookup("al", "alice")
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	reg := metrics.NewRegistry()
	c := NewController(lookup, panel, sched, testOptions, reg, nil)
	ctx := context.Background()

	c.OnInput(ctx, "al")
	require.Len(t, sched.timers, 1)
	assert.Equal(t, 300*time.Millisecond, sched.timers[0].delay)
	alDone := goRun(sched.timers[0].fn)
	require.Equal(t, "al", <-lookup.started)

	c.OnInput(ctx, "alice")
	require.Len(t, sched.timers, 2)
	aliceDone := goRun(sched.timers[1].fn)
	require.Equal(t, "alice", <-lookup.started)

	lookup.gates["alice"] <- []domain.Candidate{{ID: "Alice", Label: "Alice", Age: 34}}
	<-aliceDone
	lookup.gates["al"] <- []domain.Candidate{{ID: "Alan", Label: "Alan", Age: 61}, {ID: "Alice", Label: "Alice", Age: 34}}
	<-alDone

	calls := panel.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "results", calls[0].kind)
	assert.Equal(t, "alice", calls[0].query)
	require.Len(t, calls[0].results, 1)
	assert.Equal(t, "Alice", calls[0].results[0].ID)

	assert.Equal(t, 2.0, counterValue(t, reg.SearchLookupsTotal))
	assert.Equal(t, 1.0, counterValue(t, reg.SearchStaleTotal))
}

func TestDismissedPanelIsNotReopenedByInFlightResponse(t *testing.T) {
	t.Parallel()
	lookup := newGatedLookup("bob")
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(lookup, panel, sched, testOptions, nil, nil)

	c.OnInput(context.Background(), "bob")
	done := goRun(sched.timers[0].fn)
	<-lookup.started
	c.Dismiss()
	lookup.gates["bob"] <- []domain.Candidate{{ID: "Bob"}}
	<-done

	calls := panel.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "close", calls[0].kind)
}

func TestShortInputClearsImmediatelyAndCancelsPendingLookup(t *testing.T) {
	t.Parallel()
	lookup := &stubLookup{}
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(lookup, panel, sched, testOptions, nil, nil)
	ctx := context.Background()

	c.OnInput(ctx, "al")
	c.OnInput(ctx, "a")

	require.Len(t, sched.timers, 1)
	assert.True(t, sched.timers[0].stopped)
	calls := panel.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "close", calls[0].kind)

	// A timer that fired despite Stop must not issue a lookup.
	sched.timers[0].fn()
	assert.Empty(t, lookup.queries)
}

func TestOnlyLatestKeystrokeTriggersLookup(t *testing.T) {
	t.Parallel()
	lookup := &stubLookup{results: []domain.Candidate{{ID: "Alice"}}}
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(lookup, panel, sched, testOptions, nil, nil)
	ctx := context.Background()

	c.OnInput(ctx, "al")
	c.OnInput(ctx, "ali")
	c.OnInput(ctx, " alic ")
	require.Len(t, sched.timers, 3)
	assert.True(t, sched.timers[0].stopped)
	assert.True(t, sched.timers[1].stopped)
	for _, tm := range sched.timers {
		tm.fn()
	}
	assert.Equal(t, []string{"alic"}, lookup.queries)
}

func TestEmptyResultShowsMessage(t *testing.T) {
	t.Parallel()
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(&stubLookup{}, panel, sched, testOptions, nil, nil)

	c.OnInput(context.Background(), "zz")
	sched.timers[0].fn()

	calls := panel.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "empty", calls[0].kind)
	assert.Equal(t, EmptyMessage, calls[0].message)
}

func TestLookupFailureLeavesPanelUnchanged(t *testing.T) {
	t.Parallel()
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(&stubLookup{err: errors.New("connection refused")}, panel, sched, testOptions, nil, nil)

	c.OnInput(context.Background(), "alice")
	sched.timers[0].fn()
	assert.Empty(t, panel.snapshot())
}

func TestSelectNotifiesSubscribersAndClosesPanel(t *testing.T) {
	t.Parallel()
	lookup := &stubLookup{results: []domain.Candidate{{ID: "Alan"}, {ID: "Alice"}}}
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(lookup, panel, sched, testOptions, nil, nil)

	var graphFocus, consultFocus string
	c.Subscribe(func(name string) { graphFocus = name })
	c.Subscribe(func(name string) { consultFocus = name })

	_, err := c.Select("Alan")
	require.Error(t, err, "nothing to select before results arrive")

	c.OnInput(context.Background(), "al")
	sched.timers[0].fn()
	picked, err := c.Select("Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", picked.ID)
	assert.Equal(t, "Alice", graphFocus)
	assert.Equal(t, "Alice", consultFocus)

	calls := panel.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "close", calls[1].kind)
	assert.Equal(t, "Alice", calls[1].selected)

	_, err = c.Select("Alan")
	require.Error(t, err, "session is resolved")
}

func TestSelectResolvesByNameAfterNewerResults(t *testing.T) {
	t.Parallel()
	lookup := &stubLookup{results: []domain.Candidate{{ID: "Albert"}, {ID: "Alice"}}}
	panel := &recordingPanel{}
	sched := &fakeScheduler{}
	c := NewController(lookup, panel, sched, testOptions, nil, nil)
	var focus string
	c.Subscribe(func(name string) { focus = name })

	c.OnInput(context.Background(), "al")
	sched.timers[0].fn()
	// The row the user highlighted was Alice at index 1 of the "al" list.
	lookup.results = []domain.Candidate{{ID: "Alice"}, {ID: "Alina"}}
	c.OnInput(context.Background(), "ali")
	sched.timers[1].fn()

	_, err := c.Select("Albert")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, focus, "a name from an older list selects nothing")

	picked, err := c.Select("Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", picked.ID)
	assert.Equal(t, "Alice", focus)
}
