package exam

import "sync"

type pairKey struct {
    UserID   uint
    CourseID uint
}

// keyedMutex serializes read-compute-write sequences per (user, course) pair
// so attempt numbering and timer arithmetic are not exposed to the classic
// read-then-write race between two requests for the same pair.
type keyedMutex struct {
    mu    sync.Mutex
    locks map[pairKey]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
    return &keyedMutex{locks: make(map[pairKey]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key pairKey) func() {
    k.mu.Lock()
    m, ok := k.locks[key]
    if !ok {
        m = &sync.Mutex{}
        k.locks[key] = m
    }
    k.mu.Unlock()

    m.Lock()
    return m.Unlock
}
