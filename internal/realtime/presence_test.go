package realtime

import (
	"testing"
	"time"
)

func newTestPresence(grace time.Duration) (*Presence, *fakeConversationStore, *fakeBroadcaster) {
	store := newFakeConversationStore()
	broadcaster := &fakeBroadcaster{}
	presence := NewPresence(Config{GraceWindow: grace}, store, broadcaster)
	return presence, store, broadcaster
}

func TestPresenceOnlineTransition(t *testing.T) {
	presence, store, broadcaster := newTestPresence(time.Minute)
	store.add(10, 1, 2)

	var events []PresenceEvent
	presence.Watch(func(e PresenceEvent) { events = append(events, e) })

	presence.ConnectionAdded(1)
	// A second device must not re-announce.
	presence.ConnectionAdded(1)

	if n := broadcaster.countOf(EventUserOnline); n != 1 {
		t.Errorf("user:online broadcast %d times, want 1", n)
	}
	if len(events) != 1 || !events[0].Online || events[0].UserID != 1 {
		t.Errorf("watcher events = %+v, want one online event for user 1", events)
	}
	if status := presence.StatusOf(1); !status.Online {
		t.Errorf("StatusOf(1).Online = false, want true")
	}
}

func TestPresenceOfflineAfterGrace(t *testing.T) {
	presence, store, broadcaster := newTestPresence(20 * time.Millisecond)
	store.add(10, 1, 2)

	disconnectAt := time.Now()
	presence.now = func() time.Time { return disconnectAt }

	presence.ConnectionAdded(1)
	presence.ConnectionRemoved(1)

	if status := presence.StatusOf(1); status.Online {
		t.Errorf("StatusOf(1).Online = true right after disconnect, want false")
	}

	deadline := time.Now().Add(time.Second)
	for broadcaster.countOf(EventUserOffline) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := broadcaster.countOf(EventUserOffline); n != 1 {
		t.Fatalf("user:offline broadcast %d times, want 1", n)
	}

	// lastSeen is the disconnect instant, not when the grace window elapsed.
	if status := presence.StatusOf(1); !status.LastSeenAt.Equal(disconnectAt) {
		t.Errorf("LastSeenAt = %v, want %v", status.LastSeenAt, disconnectAt)
	}
}

func TestPresenceFlapSuppression(t *testing.T) {
	presence, store, broadcaster := newTestPresence(100 * time.Millisecond)
	store.add(10, 1)

	presence.ConnectionAdded(1)
	presence.ConnectionRemoved(1)
	// Reconnect inside the grace window: peers never saw the user leave.
	presence.ConnectionAdded(1)

	time.Sleep(250 * time.Millisecond)

	if n := broadcaster.countOf(EventUserOffline); n != 0 {
		t.Errorf("user:offline broadcast %d times after flap, want 0", n)
	}
	if n := broadcaster.countOf(EventUserOnline); n != 1 {
		t.Errorf("user:online broadcast %d times after flap, want 1", n)
	}
	if status := presence.StatusOf(1); !status.Online {
		t.Errorf("StatusOf(1).Online = false after reconnect, want true")
	}
}

func TestPresenceUnknownUser(t *testing.T) {
	presence, _, _ := newTestPresence(time.Minute)

	if status := presence.StatusOf(99); status.Online || !status.LastSeenAt.IsZero() {
		t.Errorf("StatusOf(99) = %+v, want zero value", status)
	}
	// Removing a connection that was never added must not panic or underflow.
	presence.ConnectionRemoved(99)
}
