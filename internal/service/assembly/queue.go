package assembly

import "context"

// Queue serializes generation calls through a single worker. Strictly
// one external call is in flight at a time, across every session. This
// bounds concurrent load on the collaborator and keeps section labeling
// deterministic and order-stable; it is an intentional constraint, not a
// side effect of the caller being single-threaded.
type Queue struct {
	tasks chan func()
	stop  chan struct{}
}

// NewQueue starts the worker.
func NewQueue() *Queue {
	q := &Queue{
		tasks: make(chan func()),
		stop:  make(chan struct{}),
	}
	go q.worker()
	return q
}

func (q *Queue) worker() {
	for {
		select {
		case task := <-q.tasks:
			task()
		case <-q.stop:
			return
		}
	}
}

// Do runs fn on the worker and waits for it. Returns early only if ctx
// is done before the task is even admitted; once dispatched, a task runs
// to completion - there is no mid-flight cancellation.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	wrapped := func() { done <- fn() }

	select {
	case q.tasks <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-done
}

// Shutdown stops the worker after the current task, if any.
func (q *Queue) Shutdown() {
	close(q.stop)
}
