package frontier

import "container/heap"

// tokenHeap orders crawl tokens: higher priority first, then lower depth
// (shallower expansion preferred), then arrival order. The ordering is
// total, so single-worker runs are fully deterministic.
type tokenHeap []CrawlToken

func (h tokenHeap) Len() int { return len(h) }

func (h tokenHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	if h[i].depth != h[j].depth {
		return h[i].depth < h[j].depth
	}
	return h[i].seq < h[j].seq
}

func (h tokenHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *tokenHeap) Push(x any) {
	*h = append(*h, x.(CrawlToken))
}

func (h *tokenHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*tokenHeap)(nil)

// FIFOQueue is a plain generic queue; the backlink engine's BFS runs on it.
type FIFOQueue[T any] []T

func NewFIFOQueue[T any]() *FIFOQueue[T] {
	return &FIFOQueue[T]{}
}

func (f *FIFOQueue[T]) Enqueue(item T) {
	*f = append(*f, item)
}

// Dequeue returns false when the queue is empty.
func (f *FIFOQueue[T]) Dequeue() (T, bool) {
	var zero T
	if len(*f) == 0 {
		return zero, false
	}
	first := (*f)[0]
	*f = (*f)[1:]
	return first, true
}

func (f *FIFOQueue[T]) Size() int {
	return len(*f)
}
