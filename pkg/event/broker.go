// Package event streams submission updates to the users who submitted them.
package event

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Event is sent as server-sent event. Data which isn't a string is encoded as JSON.
type Event struct {
	Type string
	Data any
}

const subscriberBuffer = 16

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[uint]map[uint64]chan Event)}
}

// Broker fans events out to every subscription of a user. A user can be subscribed multiple times,
// for example from several browser tabs.
type Broker struct {
	lock        sync.RWMutex
	subscribers map[uint]map[uint64]chan Event
	next        uint64
}

// Subscribe returns the id of the subscription and the channel events for userID are sent to.
func (b *Broker) Subscribe(userID uint) (uint64, <-chan Event) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.next++
	channel := make(chan Event, subscriberBuffer)
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[uint64]chan Event)
	}
	b.subscribers[userID][b.next] = channel
	return b.next, channel
}

// Unsubscribe closes the channel of the subscription. Unknown subscriptions are ignored.
func (b *Broker) Unsubscribe(userID uint, id uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	channel, ok := b.subscribers[userID][id]
	if !ok {
		return
	}
	close(channel)
	delete(b.subscribers[userID], id)
	if len(b.subscribers[userID]) == 0 {
		delete(b.subscribers, userID)
	}
}

// Subscribers returns the sorted ids of all subscribed users.
func (b *Broker) Subscribers() []uint {
	b.lock.RLock()
	defer b.lock.RUnlock()

	ids := make([]uint, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Send delivers event to every subscription of userID and returns the number of subscriptions it
// was delivered to. Subscriptions which aren't keeping up miss the event.
func (b *Broker) Send(userID uint, event Event) int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	delivered := 0
	for _, channel := range b.subscribers[userID] {
		select {
		case channel <- event:
			delivered++
		default:
		}
	}
	return delivered
}
