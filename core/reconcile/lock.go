package reconcile

import "sync"

// Locker is a non-blocking mutual exclusion keyed by K.
// Unrelated keys never contend with each other.
type Locker[K comparable] struct {
	mu   sync.Mutex
	held map[K]struct{}
}

// NewLocker creates an empty keyed locker.
func NewLocker[K comparable]() *Locker[K] {
	return &Locker[K]{held: make(map[K]struct{})}
}

// TryLock acquires key without waiting. The returned unlock is idempotent.
func (l *Locker[K]) TryLock(key K) (unlock func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether key is currently locked.
func (l *Locker[K]) Held(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[key]
	return busy
}
