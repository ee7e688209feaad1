package reactor

import "sync"

// submissionQueue is the cross-thread entry point into the loop: any
// goroutine may call push, but only the loop thread ever calls drain.
// Wake-ups are coalesced: push only notifies the poller on the
// empty-to-non-empty transition, matching eventfd's own coalescing
// semantics so at most one wake-up is ever pending at a time.
type submissionQueue struct {
	mu      sync.Mutex
	tasks   []func()
	scratch []func()
	running bool
}

func newSubmissionQueue() *submissionQueue {
	return &submissionQueue{running: true}
}

// push appends task to the queue. accepted is false (and task dropped)
// once the queue has been shut down. shouldWake is true exactly when the
// queue transitioned from empty to non-empty and the caller must wake
// the loop.
func (q *submissionQueue) push(task func()) (accepted, shouldWake bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return false, false
	}
	wasEmpty := len(q.tasks) == 0
	q.tasks = append(q.tasks, task)
	return true, wasEmpty
}

// drainInto swaps the live task slice for the scratch slice under the
// lock, then returns the swapped-out tasks for the caller to run outside
// the lock. This lets a task itself call Execute (re-entering push)
// without deadlocking on q.mu.
func (q *submissionQueue) drainInto() []func() {
	q.mu.Lock()
	ready := q.tasks
	q.tasks = q.scratch[:0]
	q.scratch = ready[:0]
	q.mu.Unlock()
	return ready
}

// shutdown marks the queue closed; subsequent push calls drop their task
// and return false. Already-queued tasks are left for a final drain.
func (q *submissionQueue) shutdown() {
	q.mu.Lock()
	q.running = false
	q.mu.Unlock()
}
