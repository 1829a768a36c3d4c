package meshing

import (
	"errors"
	"sync/atomic"

	"github.com/alitto/pond/v2"
)

// QueuedSink forwards meshes to a downstream sink on its own worker
// goroutines, so a slow consumer (a GPU upload, an image writer) never
// stalls the grid owner. Each mesh is copied before it is queued.
type QueuedSink struct {
	next    Sink
	pool    pond.Pool
	dropped atomic.Int64
}

// NewQueuedSink starts workers goroutines draining a queue of queueSize.
// The downstream sink must be safe for concurrent use when workers > 1.
func NewQueuedSink(next Sink, workers, queueSize int) *QueuedSink {
	return newQueuedSink(next, workers, queueSize, false)
}

// NewBlockingQueuedSink is NewQueuedSink whose Publish waits for room
// instead of dropping.
func NewBlockingQueuedSink(next Sink, workers, queueSize int) *QueuedSink {
	return newQueuedSink(next, workers, queueSize, true)
}

func newQueuedSink(next Sink, workers, queueSize int, block bool) *QueuedSink {
	return &QueuedSink{
		next: next,
		pool: pond.NewPool(max(workers, 1),
			pond.WithQueueSize(max(queueSize, 1)),
			pond.WithNonBlocking(!block)),
	}
}

// Publish queues a copy of m. When the queue is full a blocking sink waits
// for room; otherwise the mesh is dropped and counted. A later publish for
// the same chunk supersedes it.
func (s *QueuedSink) Publish(m Mesh) {
	m = m.Clone()
	err := s.pool.Go(func() { s.next.Publish(m) })
	if errors.Is(err, pond.ErrQueueFull) {
		s.dropped.Add(1)
	}
}

// Dropped returns how many meshes were discarded on a full queue.
func (s *QueuedSink) Dropped() int {
	return int(s.dropped.Load())
}

// QueueLength returns the number of meshes waiting.
func (s *QueuedSink) QueueLength() int {
	return int(s.pool.WaitingTasks())
}

// Close delivers everything already queued, then stops the workers.
// Publish must not be called after Close.
func (s *QueuedSink) Close() {
	s.pool.StopAndWait()
}
