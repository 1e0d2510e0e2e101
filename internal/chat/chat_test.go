package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleman231/provisimarket-hub/internal/assistant"
	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

type fakeAsker struct {
	mu      sync.Mutex
	queries []string
	locs    []*domain.Coordinates
	block   chan struct{}
	started chan string
}

func (f *fakeAsker) Ask(ctx context.Context, query string, location *domain.Coordinates) assistant.Answer {
	if f.started != nil {
		f.started <- query
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.locs = append(f.locs, location)
	f.mu.Unlock()
	return assistant.Answer{Text: "answer to " + query, Links: []string{"https://market.example"}}
}

func newTestRegistry(asker Asker) *Registry {
	return NewRegistry(asker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubmit_AppendsBothTurns(t *testing.T) {
	asker := &fakeAsker{}
	r := newTestRegistry(asker)
	loc := &domain.Coordinates{Lat: 1, Lng: 2}

	reply, err := r.Submit(context.Background(), "s1", "  milk prices ", loc)
	require.NoError(t, err)
	assert.Equal(t, domain.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "answer to milk prices", reply.Content)

	tr, err := r.Transcript("s1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, tr.State)
	assert.Zero(t, tr.Pending)
	require.Len(t, tr.Turns, 2)
	assert.Equal(t, domain.ChatRoleUser, tr.Turns[0].Role)
	assert.Equal(t, "milk prices", tr.Turns[0].Content)
	assert.Equal(t, []string{"https://market.example"}, tr.Turns[1].Links)
	assert.Same(t, loc, asker.locs[0])
}

func TestSubmit_RejectsEmptyQuery(t *testing.T) {
	r := newTestRegistry(&fakeAsker{})

	_, err := r.Submit(context.Background(), "s1", "   ", nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = r.Submit(context.Background(), "", "eggs", nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	tr, err := r.Transcript("s1")
	require.NoError(t, err)
	assert.Empty(t, tr.Turns)
}

func TestSubmit_AwaitingResponseWhileInFlight(t *testing.T) {
	asker := &fakeAsker{block: make(chan struct{}), started: make(chan string, 2)}
	r := newTestRegistry(asker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Submit(context.Background(), "s1", "bread", nil)
	}()

	<-asker.started
	tr, err := r.Transcript("s1")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingResponse, tr.State)
	require.Len(t, tr.Turns, 1)
	assert.Equal(t, "bread", tr.Turns[0].Content)

	close(asker.block)
	<-done

	tr, _ = r.Transcript("s1")
	assert.Equal(t, StateIdle, tr.State)
	assert.Len(t, tr.Turns, 2)
}

func TestSubmit_QueuesConcurrentQueries(t *testing.T) {
	asker := &fakeAsker{block: make(chan struct{}), started: make(chan string, 2)}
	r := newTestRegistry(asker)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = r.Submit(context.Background(), "s1", "first", nil)
	}()
	<-asker.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = r.Submit(context.Background(), "s1", "second", nil)
	}()

	require.Eventually(t, func() bool {
		tr, _ := r.Transcript("s1")
		return tr.Pending == 2
	}, time.Second, 5*time.Millisecond)

	// the second query must not reach the assistant while the first is pending
	select {
	case q := <-asker.started:
		t.Fatalf("query %q started while another was in flight", q)
	case <-time.After(20 * time.Millisecond):
	}

	close(asker.block)
	wg.Wait()

	assert.Equal(t, []string{"first", "second"}, asker.queries)
	tr, _ := r.Transcript("s1")
	assert.Len(t, tr.Turns, 4)
	assert.Equal(t, StateIdle, tr.State)
}

func TestSubmit_CanceledWhileQueued(t *testing.T) {
	asker := &fakeAsker{block: make(chan struct{}), started: make(chan string, 1)}
	r := newTestRegistry(asker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Submit(context.Background(), "s1", "first", nil)
	}()
	<-asker.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Submit(ctx, "s1", "second", nil)
	assert.ErrorIs(t, err, context.Canceled)

	close(asker.block)
	<-done

	tr, _ := r.Transcript("s1")
	require.Len(t, tr.Turns, 3)
	assert.Equal(t, "second", tr.Turns[1].Content)
	assert.Zero(t, tr.Pending)
}

func TestSessionsAreIndependent(t *testing.T) {
	r := newTestRegistry(&fakeAsker{})

	_, err := r.Submit(context.Background(), "a", "rice", nil)
	require.NoError(t, err)

	tr, err := r.Transcript("b")
	require.NoError(t, err)
	assert.Empty(t, tr.Turns)
	assert.NotNil(t, tr.Turns)
}

func TestEvictIdle(t *testing.T) {
	r := newTestRegistry(&fakeAsker{})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	_, err := r.Submit(context.Background(), "old", "tea", nil)
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(time.Hour) }
	_, err = r.Submit(context.Background(), "fresh", "coffee", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, r.EvictIdle(30*time.Minute))

	tr, _ := r.Transcript("old")
	assert.Empty(t, tr.Turns)
	tr, _ = r.Transcript("fresh")
	assert.Len(t, tr.Turns, 2)
}

func TestSubmit_SkipsSessionEvictedAfterLookup(t *testing.T) {
	r := newTestRegistry(&fakeAsker{})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	stale := r.session("s1")
	r.now = func() time.Time { return base.Add(time.Hour) }
	require.Equal(t, 1, r.EvictIdle(30*time.Minute))
	assert.True(t, stale.evicted)

	// A submit that looked the session up just before the sweep.
	r.mu.Lock()
	r.sessions["s1"] = stale
	r.mu.Unlock()

	_, err := r.Submit(context.Background(), "s1", "bread", nil)
	require.NoError(t, err)

	assert.Empty(t, stale.turns)
	tr, err := r.Transcript("s1")
	require.NoError(t, err)
	require.Len(t, tr.Turns, 2)
	assert.Equal(t, "bread", tr.Turns[0].Content)
}
