package ws

import (
    "encoding/json"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
    h := NewHub(zerolog.Nop())
    go h.Run()
    return h
}

func receive(t *testing.T, sub *Subscriber) Event {
    t.Helper()
    select {
    case raw, ok := <-sub.Messages():
        require.True(t, ok, "subscriber channel closed unexpectedly")
        var evt Event
        require.NoError(t, json.Unmarshal(raw, &evt))
        return evt
    case <-time.After(2 * time.Second):
        t.Fatal("no event received")
        return Event{}
    }
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
    h := newTestHub()
    a := h.Subscribe()
    b := h.Subscribe()

    h.Broadcast(EventLock, Event{UserID: 5})

    for _, sub := range []*Subscriber{a, b} {
        evt := receive(t, sub)
        assert.Equal(t, EventLock, evt.Type)
        assert.Equal(t, uint(5), evt.UserID)
    }
}

func TestHubPerSubscriberOrdering(t *testing.T) {
    h := newTestHub()
    sub := h.Subscribe()

    h.Broadcast(EventLock, Event{UserID: 1})
    h.Broadcast(EventUnlock, Event{UserID: 1})
    h.Broadcast(EventTimerUpdated, Event{})

    assert.Equal(t, EventLock, receive(t, sub).Type)
    assert.Equal(t, EventUnlock, receive(t, sub).Type)
    assert.Equal(t, EventTimerUpdated, receive(t, sub).Type)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
    h := newTestHub()
    sub := h.Subscribe()

    h.Unsubscribe(sub)

    select {
    case _, ok := <-sub.Messages():
        assert.False(t, ok, "channel must be closed after unsubscribe")
    case <-time.After(2 * time.Second):
        t.Fatal("channel not closed")
    }

    // A broadcast after unsubscribe must not panic or block.
    h.Broadcast(EventUnlock, Event{UserID: 2})
}

func TestHubDropsSlowSubscriber(t *testing.T) {
    h := newTestHub()
    slow := h.Subscribe() // never drained

    // Overflow the send buffer; the hub must drop the subscriber instead of
    // blocking the fan-out.
    for i := 0; i < sendBufferSize+10; i++ {
        h.Broadcast(EventTimerUpdated, Event{})
    }

    deadline := time.After(2 * time.Second)
    for {
        select {
        case _, ok := <-slow.Messages():
            if !ok {
                return // closed: dropped as expected
            }
        case <-deadline:
            t.Fatal("slow subscriber was never dropped")
        }
    }
}

func TestHubTimerUpdatedPayloadIsTypeOnly(t *testing.T) {
    h := newTestHub()
    sub := h.Subscribe()

    h.Broadcast(EventTimerUpdated, Event{})

    select {
    case raw := <-sub.Messages():
        assert.JSONEq(t, `{"type":"timer-updated"}`, string(raw))
    case <-time.After(2 * time.Second):
        t.Fatal("no event received")
    }
}
