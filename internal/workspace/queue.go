package workspace

import (
	"context"
	"sync"

	"lumina/internal/domain"
)

// opQueue serializes tree mutations per project. At most one operation runs
// per project and at most depth may wait behind it; beyond that callers get a
// BusyError instead of piling up.
type opQueue struct {
	depth int

	mu    sync.Mutex
	lanes map[string]*lane
}

type lane struct {
	pending chan struct{} // running + waiting
	running chan struct{} // capacity 1
}

func newOpQueue(depth int) *opQueue {
	if depth < 1 {
		depth = 1
	}
	return &opQueue{depth: depth, lanes: make(map[string]*lane)}
}

func (q *opQueue) lane(projectID string) *lane {
	q.mu.Lock()
	defer q.mu.Unlock()

	l, ok := q.lanes[projectID]
	if !ok {
		l = &lane{
			pending: make(chan struct{}, q.depth+1),
			running: make(chan struct{}, 1),
		}
		q.lanes[projectID] = l
	}
	return l
}

// Do runs fn once every earlier operation on projectID has finished
func (q *opQueue) Do(ctx context.Context, projectID string, fn func() error) error {
	l := q.lane(projectID)

	select {
	case l.pending <- struct{}{}:
	default:
		return &domain.BusyError{ProjectID: projectID}
	}
	defer func() { <-l.pending }()

	select {
	case l.running <- struct{}{}:
	case <-ctx.Done():
		return asTransport("wait for project queue", ctx.Err())
	}
	defer func() { <-l.running }()

	return fn()
}
