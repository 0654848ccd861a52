package event

import (
	"sync"

	"github.com/udisondev/horde/internal/model"
)

// MessageKind identifies a queued message.
type MessageKind uint8

const (
	// AssetReady - species assets finished loading
	AssetReady MessageKind = iota + 1
	// AnimationFinished - a one-shot cue finished playing
	AnimationFinished
)

// String returns human-readable kind name
func (k MessageKind) String() string {
	switch k {
	case AssetReady:
		return "asset_ready"
	case AnimationFinished:
		return "animation_finished"
	default:
		return "unknown"
	}
}

// Message is a deferred notification processed in the bookkeeping phase.
type Message struct {
	Kind    MessageKind
	Entity  model.EntityID
	Species string
	Cue     model.Cue
}

// Queue is a FIFO of messages. Push is safe from any goroutine;
// Drain is called once per tick by the owner.
type Queue struct {
	mu    sync.Mutex
	items []Message
}

// Push adds a message.
func (q *Queue) Push(msg Message) {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// Drain returns all messages and clears the queue.
func (q *Queue) Drain() []Message {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns number of pending messages
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
