package exam

import (
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
    km := newKeyedMutex()
    key := pairKey{UserID: 7, CourseID: 3}

    counter := 0
    var wg sync.WaitGroup
    for i := 0; i < 50; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            unlock := km.Lock(key)
            defer unlock()
            counter++
        }()
    }
    wg.Wait()
    assert.Equal(t, 50, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
    km := newKeyedMutex()

    unlockA := km.Lock(pairKey{UserID: 1, CourseID: 1})
    defer unlockA()

    done := make(chan struct{})
    go func() {
        unlockB := km.Lock(pairKey{UserID: 2, CourseID: 1})
        unlockB()
        close(done)
    }()
    <-done // must not deadlock while key A is held
}
