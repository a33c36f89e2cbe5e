package sse_test

import (
	"testing"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/sse"
)

func TestHub_SubscribeEmitsConnectionEventFirst(t *testing.T) {
	hub := sse.NewHub(sse.DropOldest)
	sub := hub.Subscribe(sse.FamilyNotifications, "user-1")
	defer sub.Close()

	select {
	case ev := <-sub.Events:
		if ev.ID != 1 {
			t.Fatalf("expected first event id 1, got %d", ev.ID)
		}
		if ev.Name != "connection" {
			t.Fatalf("expected a connection event, got %q", ev.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for connection event")
	}
}

func TestHub_PublishDeliversToMatchingKeyOnly(t *testing.T) {
	hub := sse.NewHub(sse.DropOldest)
	subA := hub.Subscribe(sse.FamilyNotifications, "user-a")
	subB := hub.Subscribe(sse.FamilyNotifications, "user-b")
	defer subA.Close()
	defer subB.Close()
	<-subA.Events // drain connection event
	<-subB.Events

	delivered := hub.Publish(sse.FamilyNotifications, "user-a", "notification", []byte(`{"provider":"strava"}`))
	if delivered != 1 {
		t.Fatalf("expected 1 subscriber delivered to, got %d", delivered)
	}

	select {
	case ev := <-subA.Events:
		if ev.ID != 2 {
			t.Fatalf("expected monotonic event id 2, got %d", ev.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification event")
	}

	select {
	case ev := <-subB.Events:
		t.Fatalf("subscriber for a different key should not have received an event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EventIDsMonotonicPerSubscriber(t *testing.T) {
	hub := sse.NewHub(sse.DropOldest)
	sub := hub.Subscribe(sse.FamilyProtocol, "session-1")
	defer sub.Close()
	<-sub.Events // connection event, id 1

	for i := 0; i < 5; i++ {
		hub.Publish(sse.FamilyProtocol, "session-1", "message", []byte("{}"))
	}

	var lastID int64
	for i := 0; i < 5; i++ {
		ev := <-sub.Events
		if ev.ID <= lastID {
			t.Fatalf("event ids must be strictly increasing, got %d after %d", ev.ID, lastID)
		}
		lastID = ev.ID
	}
}

func TestHub_UnsubscribeRemovesChannel(t *testing.T) {
	hub := sse.NewHub(sse.DropOldest)
	sub := hub.Subscribe(sse.FamilyNotifications, "user-x")
	<-sub.Events
	sub.Close()

	delivered := hub.Publish(sse.FamilyNotifications, "user-x", "notification", []byte("{}"))
	if delivered != 0 {
		t.Fatalf("expected no subscribers after unsubscribe, got %d", delivered)
	}
}

func TestHub_CloseConnectionOverflowClosesLaggingSubscriber(t *testing.T) {
	hub := sse.NewHub(sse.CloseConnection)
	sub := hub.Subscribe(sse.FamilyProtocol, "session-2")
	<-sub.Events // connection event

	for i := 0; i < 64; i++ {
		hub.Publish(sse.FamilyProtocol, "session-2", "message", []byte("{}"))
	}

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Events:
			if !ok {
				return // channel closed: subscriber was dropped, as expected
			}
		case <-deadline:
			t.Fatal("expected the lagging subscriber's channel to be closed")
		}
	}
}
