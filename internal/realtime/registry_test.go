package realtime

import (
	"errors"
	"testing"
	"time"
)

func TestRegisterAndUnregister(t *testing.T) {
	registry := NewRegistry(Config{})

	added := 0
	removed := 0
	registry.OnAdd(func(*Connection) { added++ })
	registry.OnRemove(func(*Connection) { removed++ })

	conn1, err := registry.Register(1, "phone", &fakeTransport{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	conn2, err := registry.Register(1, "tablet", &fakeTransport{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if registry.Count() != 2 {
		t.Errorf("Count = %d, want 2", registry.Count())
	}
	if len(registry.ConnectionsOf(1)) != 2 {
		t.Errorf("ConnectionsOf(1) = %d connections, want 2", len(registry.ConnectionsOf(1)))
	}
	if added != 2 {
		t.Errorf("onAdd fired %d times, want 2", added)
	}

	registry.Unregister(conn1.ID)
	if registry.Count() != 1 {
		t.Errorf("Count after unregister = %d, want 1", registry.Count())
	}
	if removed != 1 {
		t.Errorf("onRemove fired %d times, want 1", removed)
	}

	// Duplicate close events from the transport must be no-ops.
	registry.Unregister(conn1.ID)
	if removed != 1 {
		t.Errorf("onRemove fired %d times after duplicate unregister, want 1", removed)
	}

	registry.Unregister(conn2.ID)
	if len(registry.ConnectionsOf(1)) != 0 {
		t.Errorf("ConnectionsOf(1) not empty after last unregister")
	}
}

func TestRegisterUnauthenticated(t *testing.T) {
	registry := NewRegistry(Config{})
	if _, err := registry.Register(0, "phone", &fakeTransport{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Register(0) error = %v, want ErrUnauthenticated", err)
	}
}

func TestUnregisterClosesTransport(t *testing.T) {
	registry := NewRegistry(Config{})
	transport := &fakeTransport{}

	conn, err := registry.Register(1, "phone", transport)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	registry.Unregister(conn.ID)
	if !transport.isClosed() {
		t.Errorf("transport not closed after unregister")
	}
}

func TestIdleSweep(t *testing.T) {
	registry := NewRegistry(Config{IdleTimeout: time.Minute})
	base := time.Now()
	registry.now = func() time.Time { return base }

	idle, err := registry.Register(1, "phone", &fakeTransport{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	fresh, err := registry.Register(2, "phone", &fakeTransport{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// Only the second connection shows recent activity.
	registry.now = func() time.Time { return base.Add(90 * time.Second) }
	registry.Touch(fresh.ID)

	if n := registry.sweepOnce(base.Add(2 * time.Minute)); n != 1 {
		t.Errorf("sweepOnce evicted %d connections, want 1", n)
	}
	if _, ok := registry.Get(idle.ID); ok {
		t.Errorf("idle connection still registered after sweep")
	}
	if _, ok := registry.Get(fresh.ID); !ok {
		t.Errorf("active connection evicted by sweep")
	}
}
