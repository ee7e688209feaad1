package reactor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravendale/go-udpreactor/internal/epoll"
	"github.com/ravendale/go-udpreactor/internal/interfaces"
	"github.com/ravendale/go-udpreactor/internal/metrics"
)

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// newTestReactor builds a Reactor around a fakePoller, skipping the
// kernel-version check and the production epoll.New call so the loop
// driver can be exercised hermetically.
func newTestReactor(t *testing.T) (*Reactor, *fakePoller, *metrics.Metrics) {
	t.Helper()
	poller := newFakePoller()
	m := metrics.New()
	loop, err := newLoop(poller, m, nopLogger{}, 64)
	require.NoError(t, err)

	r := &Reactor{
		loop:   loop,
		poller: poller,
		stop:   make(chan struct{}),
	}
	r.state.Store(int32(stateConstructed))
	return r, poller, m
}

type recordingReader struct {
	mu       sync.Mutex
	received [][]byte
	removed  bool
	removeAt int // return Remove after this many datagrams (0 = never)
}

func (r *recordingReader) OnRead(buf []byte) interfaces.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), buf...)
	r.received = append(r.received, cp)
	if r.removeAt != 0 && len(r.received) >= r.removeAt {
		return interfaces.Remove
	}
	return interfaces.Continue
}

func (r *recordingReader) OnRemove() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition did not become true in time")
}

func TestRegisterDeliversDatagramsInOrder(t *testing.T) {
	r, poller, _ := newTestReactor(t)
	r.Start()
	defer r.Close()

	reader := &recordingReader{}
	const fd = 42
	cancel, err := r.Register(fd, reader)
	require.NoError(t, err)
	defer cancel()

	poller.queueBatch(fd, []epoll.Datagram{{Buf: []byte("one")}, {Buf: []byte("two")}})

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.received) == 2
	})
	assert.Equal(t, []byte("one"), reader.received[0])
	assert.Equal(t, []byte("two"), reader.received[1])
}

func TestReaderRemoveStopsBatchEarlyAndFiresOnRemove(t *testing.T) {
	r, poller, m := newTestReactor(t)
	r.Start()
	defer r.Close()

	reader := &recordingReader{removeAt: 1}
	const fd = 7
	_, err := r.Register(fd, reader)
	require.NoError(t, err)

	poller.queueBatch(fd, []epoll.Datagram{{Buf: []byte("a")}, {Buf: []byte("b")}, {Buf: []byte("c")}})

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return reader.removed
	})
	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.Len(t, reader.received, 1, "batch tail after Remove must be discarded")
	assert.Equal(t, uint64(1), m.Snapshot().Unregistrations)
}

func TestCancelUnregistersSocket(t *testing.T) {
	r, poller, m := newTestReactor(t)
	r.Start()
	defer r.Close()

	reader := &recordingReader{}
	const fd = 9
	cancel, err := r.Register(fd, reader)
	require.NoError(t, err)

	cancel()
	waitFor(t, func() bool { return reader.removed })
	assert.Equal(t, uint64(1), m.Snapshot().Unregistrations)

	poller.mu.Lock()
	_, stillAdded := poller.added[fd]
	poller.mu.Unlock()
	assert.False(t, stillAdded)

	// Cancelling twice must not fire OnRemove a second time.
	reader.removed = false
	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, reader.removed)
}

func TestExecuteRunsTaskOnLoopThread(t *testing.T) {
	r, _, _ := newTestReactor(t)
	r.Start()
	defer r.Close()

	done := make(chan struct{})
	ok := r.Execute(func() { close(done) })
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestExecuteOrdersTasksFIFO(t *testing.T) {
	r, _, _ := newTestReactor(t)
	r.Start()
	defer r.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		i := i
		r.Execute(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestExecuteAfterCloseIsRejected(t *testing.T) {
	r, _, _ := newTestReactor(t)
	r.Start()
	require.NoError(t, r.Close())

	ok := r.Execute(func() { t.Fatal("must not run after close") })
	assert.False(t, ok)
}

func TestCloseBeforeStartIsIdempotent(t *testing.T) {
	r, _, _ := newTestReactor(t)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}

func TestCloseAfterStartWithLiveRegistrationIsSafe(t *testing.T) {
	r, _, _ := newTestReactor(t)
	r.Start()

	reader := &recordingReader{}
	_, err := r.Register(3, reader)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.True(t, reader.removed, "Close must deregister live slots and fire OnRemove")
}
