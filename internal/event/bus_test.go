package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/horde/internal/model"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var got []string

	b.Subscribe(TopicModeChanged, func(any) { got = append(got, "first") })
	b.Subscribe(TopicModeChanged, func(any) { got = append(got, "second") })
	b.Subscribe(TopicAgentDeath, func(any) { got = append(got, "other topic") })

	b.Publish(TopicModeChanged, ModeChanged{From: model.ModeNormal, To: model.ModePaused})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(TopicAgentDeath, func(any) { calls++ })

	b.Publish(TopicAgentDeath, AgentDeath{ID: 1})
	unsub()
	unsub()
	b.Publish(TopicAgentDeath, AgentDeath{ID: 2})

	assert.Equal(t, 1, calls)
	assert.Zero(t, b.Subscribers(TopicAgentDeath))
}

func TestBusTypedHandler(t *testing.T) {
	b := NewBus()
	var deaths []model.EntityID
	On(b, TopicAgentDeath, func(e AgentDeath) { deaths = append(deaths, e.ID) })

	b.Publish(TopicAgentDeath, AgentDeath{ID: 7})
	b.Publish(TopicAgentDeath, "not a death")

	assert.Equal(t, []model.EntityID{7}, deaths)
}

func TestBusClose(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Subscribe(TopicDamageApplied, func(any) { calls++ })

	b.Close()
	b.Publish(TopicDamageApplied, DamageApplied{})
	b.Subscribe(TopicDamageApplied, func(any) { calls++ })
	b.Publish(TopicDamageApplied, DamageApplied{})

	assert.Zero(t, calls)
}

func TestQueueDrain(t *testing.T) {
	var q Queue
	assert.Nil(t, q.Drain())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(Message{Kind: AnimationFinished, Entity: model.EntityID(i + 1)})
		}()
	}
	wg.Wait()

	require.Equal(t, 10, q.Len())
	msgs := q.Drain()
	assert.Len(t, msgs, 10)
	assert.Zero(t, q.Len())
}
