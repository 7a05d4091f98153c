// Package queue buffers submitted documents until they are sealed into a
// block.
package queue

import (
	"sync"

	"github.com/i5heu/ouroboros-notary/pkg/types"
)

// Queue is the pending-document buffer of a chain. Submit and DrainAll are
// serialized by one mutex, so a drain is atomic with respect to concurrent
// submissions: a record ships either in the block that drained it or in a
// later one, never in both and never in none.
type Queue struct {
	mu      sync.Mutex
	pending []types.DocumentRecord
}

func New() *Queue {
	return &Queue{}
}

// Submit builds a record for the content, computing its digest, and
// appends it to the queue. The returned record is the caller's receipt.
func (q *Queue) Submit(name string, content []byte) types.DocumentRecord {
	rec := types.NewDocumentRecord(name, content)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, rec)
	return rec
}

// Size reports the number of pending records.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

// DrainAll empties the queue and returns everything that was in it, in
// submission order. Draining an empty queue returns an empty sequence.
func (q *Queue) DrainAll() []types.DocumentRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.pending
	q.pending = nil
	return drained
}
