package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrHubStopped is returned by senders once Stop has been called.
var ErrHubStopped = errors.New("websocket hub stopped")

var connectedClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "websocket_connections",
	Help: "Number of websocket clients currently connected",
}, []string{"hub"})

// Envelope is the JSON frame written to every socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode marshals payload into an Envelope frame.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

type roomMessage struct {
	room    string
	message []byte
}

type directMessage struct {
	client  *Client
	message []byte
	done    chan bool
}

// Hub maintains the set of active clients and routes frames to rooms.
// All client state is owned by the Run goroutine.
type Hub struct {
	name string

	// Registered clients.
	clients map[*Client]bool

	// Frames for every client in a room.
	unicast chan roomMessage

	// Frames for a single client.
	direct chan directMessage

	register   chan *Client
	unregister chan *Client

	connected atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub(name string) *Hub {
	return &Hub{
		name:       name,
		unicast:    make(chan roomMessage),
		direct:     make(chan directMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		stop:    make(chan struct{}),
	}
}

// Connected returns the number of registered clients.
func (h *Hub) Connected() int { return int(h.connected.Load()) }

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.track()
			log.Printf("[WebSocket Hub:%s] Client registered: %s (room: %s)", h.name, client.addr(), client.room)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Printf("[WebSocket Hub:%s] Client unregistered: %s (room: %s)", h.name, client.addr(), client.room)
			}
		case msg := <-h.unicast:
			for client := range h.clients {
				if client.room == msg.room {
					h.deliver(client, msg.message)
				}
			}
		case msg := <-h.direct:
			_, ok := h.clients[msg.client]
			if ok {
				ok = h.deliver(msg.client, msg.message)
			}
			msg.done <- ok
		case <-h.stop:
			log.Printf("[WebSocket Hub:%s] Stopping hub", h.name)
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// deliver queues message on the client's buffer, dropping the client when the buffer is full.
func (h *Hub) deliver(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		log.Printf("[WebSocket Hub:%s] Dropping slow client %s (room: %s)", h.name, client.addr(), client.room)
		h.drop(client)
		return false
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.track()
}

func (h *Hub) track() {
	h.connected.Store(int64(len(h.clients)))
	connectedClients.WithLabelValues(h.name).Set(float64(len(h.clients)))
}

// Publish sends event to every socket joined to room.
func (h *Hub) Publish(ctx context.Context, room, event string, payload any) error {
	message, err := Encode(event, payload)
	if err != nil {
		return err
	}
	return h.PublishRaw(ctx, room, message)
}

// PublishRaw sends an already encoded frame to room.
func (h *Hub) PublishRaw(ctx context.Context, room string, message []byte) error {
	select {
	case h.unicast <- roomMessage{room: room, message: message}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stop:
		return ErrHubStopped
	}
}

// ErrClientGone is returned by Send when the client is no longer registered.
var ErrClientGone = errors.New("websocket client not connected")

// Send writes event to a single client.
func (h *Hub) Send(ctx context.Context, client *Client, event string, payload any) error {
	message, err := Encode(event, payload)
	if err != nil {
		return err
	}
	done := make(chan bool, 1)
	select {
	case h.direct <- directMessage{client: client, message: message, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stop:
		return ErrHubStopped
	}
	if !<-done {
		return ErrClientGone
	}
	return nil
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
