package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker()

	broker.Subscribe(123)
	broker.Subscribe(321)
	broker.Subscribe(123)

	assert.Equal(t, []uint{123, 321}, broker.Subscribers())
	assert.Len(t, broker.subscribers[123], 2)
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker()
	id, events := broker.Subscribe(123)

	broker.Unsubscribe(123, id)
	broker.Unsubscribe(123, id)

	assert.Empty(t, broker.Subscribers())
	_, open := <-events
	assert.False(t, open)
}

func TestBroker_Send(t *testing.T) {
	broker := NewBroker()
	_, events1 := broker.Subscribe(123)
	_, events2 := broker.Subscribe(123)
	_, other := broker.Subscribe(321)

	delivered := broker.Send(123, Event{Type: "type", Data: "message"})

	require.Equal(t, 2, delivered)
	assert.Equal(t, Event{Type: "type", Data: "message"}, <-events1)
	assert.Equal(t, Event{Type: "type", Data: "message"}, <-events2)
	assert.Empty(t, other)
}

func TestBroker_Send_NoSubscriber(t *testing.T) {
	broker := NewBroker()

	delivered := broker.Send(123, Event{Type: "type", Data: "message"})

	assert.Zero(t, delivered)
}

func TestBroker_Send_SlowSubscriber(t *testing.T) {
	broker := NewBroker()
	_, events := broker.Subscribe(123)

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, broker.Send(123, Event{Type: "type", Data: i}))
	}

	assert.Zero(t, broker.Send(123, Event{Type: "type", Data: "dropped"}))
	assert.Len(t, events, subscriberBuffer)
}
