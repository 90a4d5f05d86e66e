package progress

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestBroadcastToRoomReachesOnlyThatRoom(t *testing.T) {
	hub := newTestHub(t)
	a := NewClient(hub, nil, "teardown_a")
	b := NewClient(hub, nil, "teardown_b")
	require.True(t, hub.Subscribe(a))
	require.True(t, hub.Subscribe(b))
	require.Eventually(t, func() bool { return hub.RoomSize("teardown_a") == 1 && hub.RoomSize("teardown_b") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom("teardown_a", Message{Type: "stage_started", Payload: "Persona", RoomID: "teardown_a"})

	select {
	case data := <-a.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "stage_started", msg.Type)
		assert.Equal(t, "Persona", msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, b.Send)
}

func TestUnregisterClosesSendAndDropsEmptyRoom(t *testing.T) {
	hub := newTestHub(t)
	c := NewClient(hub, nil, "teardown_x")
	require.True(t, hub.Subscribe(c))
	require.Eventually(t, func() bool { return hub.RoomSize("teardown_x") == 1 }, time.Second, 5*time.Millisecond)

	hub.Leave(c)
	require.Eventually(t, func() bool { return hub.RoomSize("teardown_x") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
	assert.NotPanics(t, func() { hub.BroadcastToRoom("teardown_x", Message{Type: "finished"}) })
}

func TestSubscribeAndLeaveReturnAfterHubStops(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	live := NewClient(hub, nil, "teardown_y")
	require.True(t, hub.Subscribe(live))
	require.Eventually(t, func() bool { return hub.RoomSize("teardown_y") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	late := NewClient(hub, nil, "teardown_y")
	returned := make(chan bool)
	go func() {
		subscribed := hub.Subscribe(late)
		hub.Leave(live)
		returned <- subscribed
	}()
	select {
	case subscribed := <-returned:
		assert.False(t, subscribed)
	case <-time.After(time.Second):
		t.Fatal("subscribe or leave blocked on a stopped hub")
	}

	_, open := <-late.Send
	assert.False(t, open)
	_, open = <-live.Send
	assert.False(t, open)
	assert.Zero(t, hub.RoomSize("teardown_y"))
}
