package ws

import (
    "encoding/json"
    "time"

    "github.com/rs/zerolog"
)

const (
    writeWait      = 10 * time.Second
    pongWait       = 60 * time.Second
    pingPeriod     = (pongWait * 9) / 10
    sendBufferSize = 256
)

// Event kinds pushed to monitoring dashboards.
const (
    EventLock          = "lock"
    EventUnlock        = "unlock"
    EventUnlockAccount = "unlock_account"
    EventTimerUpdated  = "timer-updated"
)

// Event is the JSON body written to every subscriber. Type carries the event
// kind; timer-updated events carry no payload beyond the type marker.
type Event struct {
    Type     string `json:"type"`
    UserID   uint   `json:"user_id,omitempty"`
    CourseID uint   `json:"course_id,omitempty"`
}

// Subscriber is a live push-channel handle. It is a member of the hub's set
// for the lifetime of the underlying connection and is dropped immediately on
// unsubscribe or when its buffer overflows.
type Subscriber struct {
    send chan []byte
}

// Messages returns the stream of marshalled events. The channel is closed
// when the subscriber is removed from the hub.
func (s *Subscriber) Messages() <-chan []byte {
    return s.send
}

type Hub struct {
    register   chan *Subscriber
    unregister chan *Subscriber
    broadcast  chan []byte
    subs       map[*Subscriber]struct{}
    log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
    return &Hub{
        register:   make(chan *Subscriber),
        unregister: make(chan *Subscriber),
        broadcast:  make(chan []byte, 256),
        subs:       make(map[*Subscriber]struct{}),
        log:        log,
    }
}

// Run owns the subscriber set; all membership changes and fan-out go through
// this loop, so each subscriber sees events in broadcast-call order.
func (h *Hub) Run() {
    for {
        select {
        case sub := <-h.register:
            h.subs[sub] = struct{}{}
        case sub := <-h.unregister:
            if _, ok := h.subs[sub]; ok {
                delete(h.subs, sub)
                close(sub.send)
            }
        case msg := <-h.broadcast:
            for sub := range h.subs {
                select {
                case sub.send <- msg:
                default:
                    // Slow or dead subscriber: drop it rather than block
                    // the fan-out. Delivery is at-most-once.
                    delete(h.subs, sub)
                    close(sub.send)
                }
            }
        }
    }
}

func (h *Hub) Subscribe() *Subscriber {
    sub := &Subscriber{send: make(chan []byte, sendBufferSize)}
    h.register <- sub
    return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
    h.unregister <- sub
}

// Broadcast fans evt out to every current subscriber. Fire-and-forget: no
// acknowledgment, and failures never reach the caller.
func (h *Hub) Broadcast(kind string, evt Event) {
    if h == nil {
        return
    }
    evt.Type = kind
    data, err := json.Marshal(evt)
    if err != nil {
        h.log.Error().Err(err).Str("kind", kind).Msg("ws: failed to marshal event")
        return
    }
    h.broadcast <- data
}
