package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalClient(h *Hub, room string, buf int) *Client {
	return &Client{hub: h, send: make(chan []byte, buf), room: room}
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case msg := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("expected message")
	}
	return Envelope{}
}

func TestEncode(t *testing.T) {
	msg, err := Encode("notification", map[string]string{"title": "T"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"notification","data":{"title":"T"}}`, string(msg))

	_, err = Encode("bad", make(chan int))
	assert.Error(t, err)
}

func TestHub_PublishOnlyReachesRoom(t *testing.T) {
	h := NewHub("test")
	target := newLocalClient(h, "u1", 2)
	second := newLocalClient(h, "u1", 2)
	other := newLocalClient(h, "u2", 2)
	h.clients[target] = true
	h.clients[second] = true
	h.clients[other] = true

	go h.Run()
	defer h.Stop()

	require.NoError(t, h.Publish(context.Background(), "u1", "notification", map[string]string{"id": "n1"}))

	for _, c := range []*Client{target, second} {
		env := receive(t, c)
		assert.Equal(t, "notification", env.Event)
		assert.JSONEq(t, `{"id":"n1"}`, string(env.Data))
	}

	select {
	case <-other.send:
		t.Fatal("client in another room should not receive")
	default:
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := NewHub("test")
	slow := newLocalClient(h, "u1", 0)
	h.clients[slow] = true
	h.track()
	require.Equal(t, 1, h.Connected())

	go h.Run()
	defer h.Stop()

	require.NoError(t, h.Publish(context.Background(), "u1", "notification", "x"))

	assert.Eventually(t, func() bool { return h.Connected() == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHub_Send(t *testing.T) {
	h := NewHub("test")
	c := newLocalClient(h, "a@example.com", 1)
	h.clients[c] = true

	go h.Run()
	defer h.Stop()

	require.NoError(t, h.Send(context.Background(), c, "instructor_stats_update", map[string]int{"totalCourses": 1}))
	env := receive(t, c)
	assert.Equal(t, "instructor_stats_update", env.Event)

	gone := newLocalClient(h, "b@example.com", 1)
	assert.ErrorIs(t, h.Send(context.Background(), gone, "x", nil), ErrClientGone)
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub("test")
	c := newLocalClient(h, "u1", 1)

	go h.Run()
	defer h.Stop()

	h.register <- c
	assert.Eventually(t, func() bool { return h.Connected() == 1 }, time.Second, 10*time.Millisecond)

	h.unregister <- c
	assert.Eventually(t, func() bool { return h.Connected() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StoppedAndCancelled(t *testing.T) {
	h := NewHub("test")
	h.Stop()
	h.Stop()

	assert.ErrorIs(t, h.Publish(context.Background(), "u1", "x", nil), ErrHubStopped)
	assert.ErrorIs(t, h.Send(context.Background(), newLocalClient(h, "u1", 1), "x", nil), ErrHubStopped)

	idle := NewHub("idle")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, idle.Publish(ctx, "u1", "x", nil), context.Canceled)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub("test")
	c := newLocalClient(h, "u1", 1)
	h.clients[c] = true

	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	h.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-c.send
	assert.False(t, open)
}
