package event

import "sync/atomic"

const (
	// QueueSize is the ring capacity; it must be a power of two.
	QueueSize  = 256
	bufferMask = QueueSize - 1
)

// Queue is a lock-free multi-producer single-consumer ring buffer.
// Push may be called from any goroutine; Consume belongs to the stepping
// loop. When full the oldest events are overwritten.
type Queue struct {
	events    [QueueSize]Event
	published [QueueSize]atomic.Bool // slot fully written
	head      atomic.Uint64          // read index
	tail      atomic.Uint64          // write index
	dropped   atomic.Uint64
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event.
func (q *Queue) Push(ev Event) {
	for {
		tail := q.tail.Load()
		next := tail + 1
		if !q.tail.CompareAndSwap(tail, next) {
			continue
		}
		idx := tail & bufferMask
		q.events[idx] = ev
		q.published[idx].Store(true) // after the write

		head := q.head.Load()
		if next-head > QueueSize {
			if q.head.CompareAndSwap(head, next-QueueSize) {
				q.dropped.Add(next - QueueSize - head)
			}
		}
		return
	}
}

// Consume returns every pending event in FIFO order.
func (q *Queue) Consume() []Event {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail == head {
			return nil
		}

		available := tail - head
		if available > QueueSize {
			available = QueueSize
			head = tail - QueueSize
		}

		out := make([]Event, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (head + i) & bufferMask
			if !q.published[idx].Load() {
				break // writer incomplete
			}
			out = append(out, q.events[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(head, head+uint64(len(out))) {
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
}

// Len reports the number of unread events.
func (q *Queue) Len() int {
	n := q.tail.Load() - q.head.Load()
	if n > QueueSize {
		n = QueueSize
	}
	return int(n)
}

// Dropped counts events overwritten before they were consumed.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Drain discards pending events.
func (q *Queue) Drain() {
	q.Consume()
}
