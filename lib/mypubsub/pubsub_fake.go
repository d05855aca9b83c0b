package mypubsub

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// FakePubSub keeps topics, subscriptions and messages in memory.
// Nothing is pushed to subscribers.
type FakePubSub struct {
	sync.Mutex
	subscriptions map[string][]string
	messages      map[string][]string
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = func(c context.Context) (PubSub, func(), error) {
			return NewFakePubSub(), func() {}, nil
		}
	}
}

func NewFakePubSub() *FakePubSub {
	return &FakePubSub{
		subscriptions: map[string][]string{},
		messages:      map[string][]string{},
	}
}

func (ps *FakePubSub) CreateTopic(c context.Context, topic string) error {
	ps.Lock()
	defer ps.Unlock()

	if _, exists := ps.messages[topic]; !exists {
		ps.messages[topic] = []string{}
	}
	return nil
}

func (ps *FakePubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	ps.Lock()
	defer ps.Unlock()

	if _, exists := ps.messages[topic]; !exists {
		ps.messages[topic] = []string{}
	}
	ps.subscriptions[topic] = append(ps.subscriptions[topic], urlToPostTo)
	return nil
}

func (ps *FakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	if _, exists := ps.messages[topic]; !exists {
		return fmt.Errorf("topic %s does not exist", topic)
	}
	ps.messages[topic] = append(ps.messages[topic], data)
	return nil
}

func (ps *FakePubSub) Messages(topic string) []string {
	ps.Lock()
	defer ps.Unlock()

	return append([]string{}, ps.messages[topic]...)
}

func (ps *FakePubSub) Subscriptions(topic string) []string {
	ps.Lock()
	defer ps.Unlock()

	return append([]string{}, ps.subscriptions[topic]...)
}
