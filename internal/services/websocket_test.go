package services

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(hub *Hub, userID uint, role string) *Client {
	return &Client{
		ID:     role,
		UserID: userID,
		Role:   role,
		Send:   make(chan []byte, 16),
		Hub:    hub,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 1, "driver")
	hub.Register(client)
	waitFor(t, func() bool { return hub.GetConnectedClients() == 1 })

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.GetConnectedClients() == 0 })

	// Send channel is closed on unregister.
	if _, ok := <-client.Send; ok {
		t.Error("expected Send channel to be closed")
	}
}

func TestHubChannelBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 1, "user")
	outsider := newTestClient(hub, 2, "user")
	hub.Register(member)
	hub.Register(outsider)
	waitFor(t, func() bool { return hub.GetConnectedClients() == 2 })

	hub.JoinChannel(member, RideChannel(7))
	waitFor(t, func() bool { return hub.ChannelSize(RideChannel(7)) == 1 })

	hub.Emit(RideChannel(7), EventRideAccepted, map[string]interface{}{"rideId": 7})

	select {
	case raw := <-member.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != EventRideAccepted {
			t.Errorf("Type = %q, want %q", msg.Type, EventRideAccepted)
		}
	case <-time.After(time.Second):
		t.Fatal("member did not receive channel broadcast")
	}

	select {
	case <-outsider.Send:
		t.Error("outsider received a ride-scoped broadcast")
	default:
	}
}

func TestHubBroadcastToRole(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	driver := newTestClient(hub, 1, "driver")
	passenger := newTestClient(hub, 2, "user")
	hub.Register(driver)
	hub.Register(passenger)
	waitFor(t, func() bool { return hub.GetConnectedClients() == 2 })

	hub.EmitToRole("driver", EventNewRide, map[string]interface{}{"rideId": 3})

	select {
	case raw := <-driver.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != EventNewRide {
			t.Errorf("Type = %q, want %q", msg.Type, EventNewRide)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not receive role broadcast")
	}

	select {
	case <-passenger.Send:
		t.Error("passenger received a driver-only broadcast")
	default:
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{ID: "slow", UserID: 1, Role: "user", Send: make(chan []byte), Hub: hub}
	hub.Register(slow)
	waitFor(t, func() bool { return hub.GetConnectedClients() == 1 })
	hub.JoinChannel(slow, RideChannel(1))
	waitFor(t, func() bool { return hub.ChannelSize(RideChannel(1)) == 1 })

	// Nobody reads slow.Send; delivery must not block.
	done := make(chan struct{})
	go func() {
		hub.Emit(RideChannel(1), EventRideStarted, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestHubUnregisterPrunesChannels(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 1, "user")
	hub.Register(client)
	waitFor(t, func() bool { return hub.GetConnectedClients() == 1 })
	hub.JoinChannel(client, RideChannel(9))
	waitFor(t, func() bool { return hub.ChannelSize(RideChannel(9)) == 1 })

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.ChannelSize(RideChannel(9)) == 0 })
}

func TestRideChannelName(t *testing.T) {
	if got := RideChannel(42); got != "ride-42" {
		t.Errorf("RideChannel(42) = %q, want %q", got, "ride-42")
	}
}
