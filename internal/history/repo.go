package history

import (
	"sync"
	"time"

	"precision/internal/utils"
)

// NotFoundError is returned when no entries are stored for an id.
type NotFoundError struct {
	id string
}

func (e *NotFoundError) Error() string {
	return "history not found: " + e.id
}

// NewNotFoundError creates a NotFoundError for id.
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{id: id}
}

// Repository keeps the most recent entries per id in fixed-size ring buffers.
// Ids that were not updated for longer than the TTL are dropped by Serve.
// Safe for concurrent use.
//
// Example:
//
//	repo := history.NewRepository[Evaluation](16, 10*time.Minute)
//	go repo.Serve()
//	defer repo.Stop()
//	repo.Append("1-0-2", evaluation)
type Repository[T any] struct {
	length   int           // entries kept per id
	ttl      time.Duration // idle time after which an id is dropped
	interval time.Duration // cleanup period

	entries map[string]*utils.RingBuffer[T]
	updates map[string]time.Time
	mu      sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
}

// NewRepository creates a repository keeping length entries per id.
// A non-positive ttl disables expiry.
func NewRepository[T any](length int, ttl time.Duration) *Repository[T] {
	return &Repository[T]{
		length:   length,
		ttl:      ttl,
		interval: time.Minute,
		entries:  make(map[string]*utils.RingBuffer[T]),
		updates:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}
}

// Append stores entry under id, creating the buffer on first use.
func (r *Repository[T]) Append(id string, entry T) {
	r.mu.Lock()
	buffer, found := r.entries[id]
	if !found {
		buffer = utils.NewRingBuffer[T](r.length)
		r.entries[id] = buffer
	}
	r.updates[id] = time.Now()
	r.mu.Unlock()

	buffer.Push(entry)
}

// Get returns a copy of the entries stored for id, oldest first.
func (r *Repository[T]) Get(id string) ([]T, error) {
	r.mu.RLock()
	buffer, found := r.entries[id]
	r.mu.RUnlock()
	if !found {
		return nil, NewNotFoundError(id)
	}
	return buffer.ToSlice(), nil
}

// Len returns the number of ids held.
func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Serve drops expired ids periodically until Stop is called. Blocks; run it in
// its own goroutine.
func (r *Repository[T]) Serve() {
	if r.ttl <= 0 {
		<-r.done
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			r.evict(now)
		case <-r.done:
			return
		}
	}
}

// Stop ends Serve. Safe to call more than once and before Serve.
func (r *Repository[T]) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// evict removes every id idle for longer than the ttl at the moment now.
func (r *Repository[T]) evict(now time.Time) int {
	var outdated []string

	r.mu.RLock()
	for id, ts := range r.updates {
		if now.Sub(ts) > r.ttl {
			outdated = append(outdated, id)
		}
	}
	r.mu.RUnlock()

	if len(outdated) == 0 {
		return 0
	}

	evicted := 0
	r.mu.Lock()
	for _, id := range outdated {
		// Skip ids refreshed since the scan.
		if ts, ok := r.updates[id]; !ok || now.Sub(ts) <= r.ttl {
			continue
		}
		delete(r.entries, id)
		delete(r.updates, id)
		evicted++
	}
	r.mu.Unlock()

	return evicted
}
