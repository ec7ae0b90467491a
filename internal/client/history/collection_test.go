package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu        sync.Mutex
	fetch     []models.ScanRecord
	fetchErr  error
	appendErr error
	appends   []string
	started   chan struct{}
	gate      chan struct{}
}

func (f *fakeRemote) Fetch(context.Context) ([]models.ScanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.ScanRecord, len(f.fetch))
	copy(out, f.fetch)
	return out, nil
}

func (f *fakeRemote) Append(_ context.Context, key string, meta models.ScanEvent) (models.ScanRecord, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends = append(f.appends, key)
	if f.appendErr != nil {
		return models.ScanRecord{}, f.appendErr
	}
	meta = meta.WithDefaults(key)
	return models.ScanRecord{ID: "id-" + key, Code: key, EventCategory: meta.Category, EventLabel: meta.Label}, nil
}

func (f *fakeRemote) appendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appends)
}

type memCache struct {
	mu      sync.Mutex
	records []models.ScanRecord
	fail    error
}

func (m *memCache) List(context.Context) ([]models.ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]models.ScanRecord(nil), m.records...), nil
}

func (m *memCache) ReplaceAll(_ context.Context, rs []models.ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append([]models.ScanRecord(nil), rs...)
	return nil
}

func (m *memCache) Prepend(_ context.Context, r models.ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append([]models.ScanRecord{r}, m.records...)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.Code == key {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type scanCollection = Collection[models.ScanRecord, models.ScanEvent]

func newCollection(t *testing.T, remote *fakeRemote, cache *memCache) *scanCollection {
	t.Helper()
	a := NewActor()
	t.Cleanup(a.Close)
	var c Cache[models.ScanRecord]
	if cache != nil {
		c = cache
	}
	return NewCollection[models.ScanRecord, models.ScanEvent]("scans", a, remote, c, nil)
}

func keysOf(t *testing.T, c *scanCollection) []string {
	t.Helper()
	rs, err := c.Records(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Code)
	}
	return out
}

func scan(code string) models.ScanRecord {
	return models.ScanRecord{ID: "r-" + code, Code: code, EventCategory: "scan", EventLabel: code}
}

func TestRecordLocalEvent_InsertsAtHeadAfterConfirmation(t *testing.T) {
	remote := &fakeRemote{}
	c := newCollection(t, remote, nil)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		ok, err := c.RecordLocalEvent(ctx, k, models.ScanEvent{})
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, []string{"c", "b", "a"}, keysOf(t, c))
	require.NoError(t, c.Verify(ctx))
}

func TestRecordLocalEvent_Idempotent(t *testing.T) {
	remote := &fakeRemote{}
	c := newCollection(t, remote, nil)
	ctx := context.Background()

	ok, err := c.RecordLocalEvent(ctx, "k", models.ScanEvent{})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.RecordLocalEvent(ctx, "k", models.ScanEvent{Label: "other"})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"k"}, keysOf(t, c))
	assert.Equal(t, 1, remote.appendCount(), "a present key must not reach the remote")
	require.NoError(t, c.Verify(ctx))
}

func TestRecordLocalEvent_ConcurrentSameKeyCoalesced(t *testing.T) {
	remote := &fakeRemote{gate: make(chan struct{})}
	c := newCollection(t, remote, nil)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.RecordLocalEvent(ctx, "same", models.ScanEvent{})
			assert.NoError(t, err)
			results <- ok
		}()
	}

	// Let every goroutine register before the single remote call returns.
	time.Sleep(50 * time.Millisecond)
	close(remote.gate)
	wg.Wait()
	close(results)

	inserted := 0
	for ok := range results {
		if ok {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, remote.appendCount())
	assert.Equal(t, []string{"same"}, keysOf(t, c))
	require.NoError(t, c.Verify(ctx))
}

func TestRecordLocalEvent_RemoteFailureLeavesStateUnchanged(t *testing.T) {
	remote := &fakeRemote{fetch: []models.ScanRecord{scan("x"), scan("y")}}
	cache := &memCache{}
	c := newCollection(t, remote, cache)
	ctx := context.Background()
	require.NoError(t, c.LoadRemote(ctx))

	remote.appendErr = fmt.Errorf("%w: unexpected status 500", common.ErrNetworkFailure)
	ok, err := c.RecordLocalEvent(ctx, "new", models.ScanEvent{})
	require.ErrorIs(t, err, common.ErrNetworkFailure)
	assert.False(t, ok)

	assert.Equal(t, []string{"x", "y"}, keysOf(t, c))
	has, err := c.Contains(ctx, "new")
	require.NoError(t, err)
	assert.False(t, has)
	assert.Len(t, cache.records, 2)

	// The key is not stuck as pending: a later success inserts it.
	remote.appendErr = nil
	ok, err = c.RecordLocalEvent(ctx, "new", models.ScanEvent{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"new", "x", "y"}, keysOf(t, c))
}

func TestRecordLocalEvent_EmptyKey(t *testing.T) {
	c := newCollection(t, &fakeRemote{}, nil)
	_, err := c.RecordLocalEvent(context.Background(), "", models.ScanEvent{})
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestRecordLocalEvent_CancelledAfterSubmitStillApplies(t *testing.T) {
	remote := &fakeRemote{started: make(chan struct{}), gate: make(chan struct{})}
	c := newCollection(t, remote, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.RecordLocalEvent(ctx, "k", models.ScanEvent{})
	}()
	<-remote.started
	cancel()
	close(remote.gate)
	<-done

	assert.Equal(t, []string{"k"}, keysOf(t, c))
}

func TestLoadRemote_ReplacesInRemoteOrder(t *testing.T) {
	remote := &fakeRemote{}
	c := newCollection(t, remote, nil)
	ctx := context.Background()

	_, err := c.RecordLocalEvent(ctx, "local", models.ScanEvent{})
	require.NoError(t, err)

	remote.fetch = []models.ScanRecord{scan("z"), scan("a"), scan("m"), scan("a")}
	require.NoError(t, c.LoadRemote(ctx))

	assert.Equal(t, []string{"z", "a", "m"}, keysOf(t, c))
	require.NoError(t, c.Verify(ctx))
}

func TestLoadRemote_RoundTrip(t *testing.T) {
	remote := &fakeRemote{fetch: []models.ScanRecord{scan("b"), scan("a")}}
	c := newCollection(t, remote, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadRemote(ctx))
	first, err := c.Records(ctx)
	require.NoError(t, err)

	require.NoError(t, c.LoadRemote(ctx))
	second, err := c.Records(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reload changed state (-first +second):\n%s", diff)
	}
}

func TestLoadRemote_FailureKeepsState(t *testing.T) {
	remote := &fakeRemote{fetch: []models.ScanRecord{scan("a")}}
	c := newCollection(t, remote, nil)
	ctx := context.Background()
	require.NoError(t, c.LoadRemote(ctx))

	for _, e := range []error{common.ErrInvalidResponseShape, common.ErrNetworkFailure, common.ErrAuthCredentialUnavailable} {
		remote.fetchErr = e
		require.ErrorIs(t, c.LoadRemote(ctx), e)
		assert.Equal(t, []string{"a"}, keysOf(t, c))
	}
}

// gatedFetch hands each Fetch a reply channel so tests choose completion order.
type gatedFetch struct {
	fakeRemote
	calls chan chan []models.ScanRecord
}

func (g *gatedFetch) Fetch(context.Context) ([]models.ScanRecord, error) {
	reply := make(chan []models.ScanRecord)
	g.calls <- reply
	return <-reply, nil
}

func TestLoadRemote_StaleResponseDiscarded(t *testing.T) {
	g := &gatedFetch{calls: make(chan chan []models.ScanRecord)}
	a := NewActor()
	t.Cleanup(a.Close)
	c := NewCollection[models.ScanRecord, models.ScanEvent]("scans", a, g, nil, nil)
	ctx := context.Background()

	older := make(chan error, 1)
	go func() { older <- c.LoadRemote(ctx) }()
	olderReply := <-g.calls

	newer := make(chan error, 1)
	go func() { newer <- c.LoadRemote(ctx) }()
	newerReply := <-g.calls

	newerReply <- []models.ScanRecord{scan("new")}
	require.NoError(t, <-newer)

	olderReply <- []models.ScanRecord{scan("old")}
	require.ErrorIs(t, <-older, ErrStaleResponse)

	assert.Equal(t, []string{"new"}, keysOf(t, c))
}

func TestDelete(t *testing.T) {
	remote := &fakeRemote{fetch: []models.ScanRecord{scan("a"), scan("b"), scan("c")}}
	cache := &memCache{}
	c := newCollection(t, remote, cache)
	ctx := context.Background()
	require.NoError(t, c.LoadRemote(ctx))

	removed, err := c.Delete(ctx, "b")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"a", "c"}, keysOf(t, c))
	assert.Len(t, cache.records, 2)

	removed, err = c.Delete(ctx, "b")
	require.NoError(t, err)
	assert.False(t, removed)
	require.NoError(t, c.Verify(ctx))

	// Deleting allows the key to be recorded again.
	ok, err := c.RecordLocalEvent(ctx, "b", models.ScanEvent{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRestore_FromCache(t *testing.T) {
	cache := &memCache{records: []models.ScanRecord{scan("c1"), scan("c2")}}
	c := newCollection(t, &fakeRemote{}, cache)
	ctx := context.Background()

	require.NoError(t, c.Restore(ctx))
	assert.Equal(t, []string{"c1", "c2"}, keysOf(t, c))

	cache.fail = errors.New("disk")
	require.Error(t, c.Restore(ctx))
	assert.Equal(t, []string{"c1", "c2"}, keysOf(t, c))
}

func TestCacheFailureDoesNotRollBackMemory(t *testing.T) {
	cache := &memCache{fail: errors.New("disk full")}
	c := newCollection(t, &fakeRemote{}, cache)

	ok, err := c.RecordLocalEvent(context.Background(), "k", models.ScanEvent{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"k"}, keysOf(t, c))
}

func TestWriteThrough(t *testing.T) {
	remote := &fakeRemote{fetch: []models.ScanRecord{scan("a"), scan("b")}}
	cache := &memCache{}
	c := newCollection(t, remote, cache)
	ctx := context.Background()

	require.NoError(t, c.LoadRemote(ctx))
	_, err := c.RecordLocalEvent(ctx, "n", models.ScanEvent{})
	require.NoError(t, err)

	mem, err := c.Records(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(mem, cache.records); diff != "" {
		t.Fatalf("cache diverged (-memory +cache):\n%s", diff)
	}
}

func TestClosedActor(t *testing.T) {
	a := NewActor()
	c := NewCollection[models.ScanRecord, models.ScanEvent]("scans", a, &fakeRemote{}, nil, nil)
	a.Close()
	a.Close()

	_, err := c.Records(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}
