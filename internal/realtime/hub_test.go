package realtime

import (
	"testing"
	"time"
)

func newTestClient(hub *Hub, topics ...string) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		send:   make(chan Message, 4),
		topics: topicSet(topics),
	}
}

func topicSet(topics []string) map[string]bool {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return set
}

func TestHubDeliversOnlyToSubscribedClients(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go hub.Run(done)
	defer close(done)

	subscribed := newTestClient(hub, HeadingTopic("s1"))
	other := newTestClient(hub, HeadingTopic("s2"))
	hub.Register <- subscribed
	hub.Register <- other

	waitForClientCount(t, hub, 2)

	hub.PublishHeadingUpdate("s1", map[string]string{"hello": "world"})

	select {
	case msg := <-subscribed.send:
		if msg.Topic != HeadingTopic("s1") {
			t.Errorf("Topic = %s, want %s", msg.Topic, HeadingTopic("s1"))
		}
	case <-time.After(time.Second):
		t.Fatal("subscribed client never received the message")
	}

	select {
	case <-other.send:
		t.Fatal("unsubscribed client should not have received the message")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go hub.Run(done)
	defer close(done)

	c := newTestClient(hub, GroupTopic("g1"))
	hub.Register <- c
	waitForClientCount(t, hub, 1)

	hub.Unregister <- c
	waitForClientCount(t, hub, 0)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was never closed")
	}
}

func waitForClientCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ClientCount() never reached %d (last = %d)", want, hub.ClientCount())
}
