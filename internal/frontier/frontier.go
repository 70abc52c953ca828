package frontier

/*
Frontier Responsibilities
- Maintain priority ordering (priority desc, depth asc, arrival order)
- Deduplicate URLs within a session
- Enforce max-depth and max-pages
- Knows nothing about fetching, extraction, or storage

It is a data structure + policy module, not a pipeline executor. The queue
and the visited set form one critical section under a single mutex; callers
hold the lock only for enqueue/dequeue, never across I/O.
*/

import (
	"container/heap"
	"net/url"
	"sync"

	"github.com/TheBoringRats/ratcrowler/pkg/urlutil"
)

type Frontier struct {
	mu       sync.Mutex
	queue    tokenHeap
	visited  Set[string]
	popped   int
	nextSeq  int
	maxDepth int
	maxPages int
}

// NewFrontier creates a frontier bounded by maxDepth hops and maxPages
// total pops. Zero maxPages means unlimited.
func NewFrontier(maxDepth, maxPages int) *Frontier {
	f := &Frontier{
		visited:  NewSet[string](),
		maxDepth: maxDepth,
		maxPages: maxPages,
	}
	heap.Init(&f.queue)
	return f
}

// PushSeed enqueues a session seed at depth 0 with seed priority.
func (f *Frontier) PushSeed(u url.URL) {
	f.Push(u, 0, SeedPriority)
}

// Push enqueues a URL. It is a no-op when the URL was already seen this
// session, when the depth bound is exceeded, or when the page budget is
// already spent. The URL is marked visited on admission, so a URL enters
// the frontier at most once per session.
func (f *Frontier) Push(u url.URL, depth int, priority int) {
	if depth > f.maxDepth {
		return
	}

	canonical := urlutil.Canonicalize(u)
	key := canonical.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.Contains(key) {
		return
	}
	if f.maxPages > 0 && f.popped >= f.maxPages {
		return
	}

	f.visited.Add(key)
	heap.Push(&f.queue, CrawlToken{
		url:      u,
		depth:    depth,
		priority: priority,
		seq:      f.nextSeq,
	})
	f.nextSeq++
}

// Pop returns the highest-priority token, or false when the queue is empty
// or the page budget is spent.
func (f *Frontier) Pop() (CrawlToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return CrawlToken{}, false
	}
	if f.maxPages > 0 && f.popped >= f.maxPages {
		return CrawlToken{}, false
	}

	token := heap.Pop(&f.queue).(CrawlToken)
	f.popped++
	return token, true
}

// VisitedSize reports how many distinct URLs were admitted this session.
func (f *Frontier) VisitedSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Size()
}

// Remaining reports how many tokens are queued but not yet popped.
func (f *Frontier) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Popped reports how many tokens have been handed out.
func (f *Frontier) Popped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.popped
}
