package summarizer

import (
	"container/list"
	"sync"
	"time"
)

// recentSummaries keeps the most recently used summaries in memory. Every
// entry stays valid for the same ttl from the moment it is remembered.
type recentSummaries struct {
	mu       sync.Mutex
	byKey    map[string]*list.Element
	usage    *list.List // front is the most recently used entry
	capacity int
	ttl      time.Duration
}

type recentSummary struct {
	key     string
	text    string
	validTo time.Time
}

// newRecentSummaries returns nil, a tier that never hits, when either limit
// is not positive.
func newRecentSummaries(capacity int, ttl time.Duration) *recentSummaries {
	if capacity <= 0 || ttl <= 0 {
		return nil
	}

	return &recentSummaries{
		byKey:    make(map[string]*list.Element, capacity),
		usage:    list.New(),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (r *recentSummaries) lookup(key string, now time.Time) (string, bool) {
	if r == nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.byKey[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*recentSummary)
	if now.After(entry.validTo) {
		r.dropLocked(elem)
		return "", false
	}

	r.usage.MoveToFront(elem)

	return entry.text, true
}

// remember stores summary under key and returns how many entries were
// dropped to stay within capacity.
func (r *recentSummaries) remember(key, summary string, now time.Time) int {
	if r == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	validTo := now.Add(r.ttl)

	if elem, ok := r.byKey[key]; ok {
		entry := elem.Value.(*recentSummary)
		entry.text = summary
		entry.validTo = validTo
		r.usage.MoveToFront(elem)

		return 0
	}

	r.byKey[key] = r.usage.PushFront(&recentSummary{key: key, text: summary, validTo: validTo})
	if len(r.byKey) <= r.capacity {
		return 0
	}

	dropped := 0

	// Expired entries go first wherever they sit in the usage order.
	for elem := r.usage.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*recentSummary).validTo) {
			r.dropLocked(elem)
			dropped++
		}
		elem = prev
	}

	for len(r.byKey) > r.capacity {
		r.dropLocked(r.usage.Back())
		dropped++
	}

	return dropped
}

func (r *recentSummaries) size() int {
	if r == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byKey)
}

func (r *recentSummaries) dropLocked(elem *list.Element) {
	delete(r.byKey, elem.Value.(*recentSummary).key)
	r.usage.Remove(elem)
}
