package sequence

import "container/heap"

// TimedItem pairs a value with an absolute due time. The seq field preserves
// insertion order so items sharing an exact due time dequeue first-in first-out.
type TimedItem[T any] struct {
	Value T
	Due   float64
	seq   uint64
	index int
}

type timedQueue[T any] struct {
	items []*TimedItem[T]
}

func (tq *timedQueue[T]) Len() int { return len(tq.items) }

func (tq *timedQueue[T]) Less(i, j int) bool {
	a, b := tq.items[i], tq.items[j]
	if a.Due != b.Due {
		return a.Due < b.Due
	}
	return a.seq < b.seq
}

func (tq *timedQueue[T]) Swap(i, j int) {
	tq.items[i], tq.items[j] = tq.items[j], tq.items[i]
	tq.items[i].index = i
	tq.items[j].index = j
}

func (tq *timedQueue[T]) Push(x any) {
	item := x.(*TimedItem[T])
	item.index = len(tq.items)
	tq.items = append(tq.items, item)
}

func (tq *timedQueue[T]) Pop() any {
	old := tq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	tq.items = old[0 : n-1]
	return item
}

// TimedQueue is a min-heap of values ordered by ascending due time, breaking
// exact ties by insertion order.
type TimedQueue[T any] struct {
	tq      timedQueue[T]
	nextSeq uint64
}

func NewTimedQueue[T any]() *TimedQueue[T] {
	q := &TimedQueue[T]{}
	heap.Init(&q.tq)
	return q
}

// Enqueue inserts value with the given absolute due time.
func (q *TimedQueue[T]) Enqueue(value T, due float64) *TimedItem[T] {
	item := &TimedItem[T]{
		Value: value,
		Due:   due,
		seq:   q.nextSeq,
	}
	q.nextSeq++
	heap.Push(&q.tq, item)
	return item
}

// PopDue removes and returns the earliest item if its due time is ≤ now.
func (q *TimedQueue[T]) PopDue(now float64) (T, bool) {
	if q.tq.Len() == 0 || q.tq.items[0].Due > now {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.tq).(*TimedItem[T])
	return item.Value, true
}

// Peek returns the earliest item without removing it.
func (q *TimedQueue[T]) Peek() (T, bool) {
	if q.tq.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.tq.items[0].Value, true
}

// RemoveIf removes every queued item whose value matches the predicate and
// returns how many were removed. Heap order is restored afterwards.
func (q *TimedQueue[T]) RemoveIf(match func(T) bool) int {
	kept := q.tq.items[:0]
	removed := 0
	for _, item := range q.tq.items {
		if match(item.Value) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0
	}
	q.tq.items = kept
	for i := range q.tq.items {
		q.tq.items[i].index = i
	}
	heap.Init(&q.tq)
	return removed
}

func (q *TimedQueue[T]) Len() int { return q.tq.Len() }

func (q *TimedQueue[T]) IsEmpty() bool { return q.tq.Len() == 0 }
