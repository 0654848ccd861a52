// Package event carries notifications between the tick phases.
//
// Bus is synchronous publish/subscribe: handlers run inside Publish in
// subscription order. Queue buffers messages produced off the tick
// goroutine until the engine drains them.
package event

import (
	"log/slog"

	"github.com/udisondev/horde/internal/model"
)

// Topic names a bus channel.
type Topic string

const (
	TopicAgentDeath    Topic = "agent.death"
	TopicModeChanged   Topic = "mode.changed"
	TopicDamageApplied Topic = "damage.applied"
)

// AgentDeath is published when an agent enters the Dead state.
type AgentDeath struct {
	ID       model.EntityID
	Species  string
	ZoneID   string
	Position model.Vec
}

// ModeChanged is published when the global game mode switches.
type ModeChanged struct {
	From model.Mode
	To   model.Mode
}

// DamageApplied is published for every landed swing.
type DamageApplied struct {
	Attacker model.EntityID
	Target   model.EntityID
	Amount   float64
	Killed   bool
}

// Handler receives a payload published on a topic.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process event bus. Not safe for concurrent use.
type Bus struct {
	subs   map[Topic][]subscription
	nextID uint64
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers h for topic. The returned func removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	if b.closed {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})

	return func() {
		list := b.subs[topic]
		for i, s := range list {
			if s.id == id {
				b.subs[topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every subscriber of topic, in order.
// Handlers added during delivery see only later publishes.
func (b *Bus) Publish(topic Topic, payload any) {
	if b.closed {
		return
	}
	list := b.subs[topic]
	for _, s := range list {
		s.handler(payload)
	}
}

// Subscribers returns number of handlers on topic
func (b *Bus) Subscribers(topic Topic) int {
	return len(b.subs[topic])
}

// Close drops every subscription; later publishes are no-ops.
func (b *Bus) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.subs = nil
	slog.Debug("event bus closed")
}

// On subscribes a typed handler. Payloads of another type are ignored.
func On[T any](b *Bus, topic Topic, fn func(T)) (unsubscribe func()) {
	return b.Subscribe(topic, func(payload any) {
		if v, ok := payload.(T); ok {
			fn(v)
		}
	})
}
