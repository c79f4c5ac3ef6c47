package view

import "sync"

// Busy admits one in-flight action per key at a time.
type Busy struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewBusy() *Busy {
	return &Busy{inflight: make(map[string]struct{})}
}

func BusyKey(sid, action, resource string) string {
	return sid + "\x00" + action + "\x00" + resource
}

// TryAcquire claims key. It returns a release func, or false if the key is
// already held.
func (b *Busy) TryAcquire(key string) (release func(), ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, held := b.inflight[key]; held {
		return nil, false
	}
	b.inflight[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.inflight, key)
			b.mu.Unlock()
		})
	}, true
}

func (b *Busy) Held(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, held := b.inflight[key]
	return held
}
