package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// Publisher delivers an event to every socket joined to room.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

// envelope is the message shape stored on the Redis channel.
type envelope struct {
	Room   string          `json:"room"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	SentAt time.Time       `json:"sentAt"`
}

// Bridge publishes events to a Redis channel and replays every event received on that
// channel into the local publisher, so sockets on any instance receive them.
// Once the subscription fails, events go straight to the local publisher.
type Bridge struct {
	client    *redis.Client
	channel   string
	local     Publisher
	localOnly atomic.Bool
}

func NewBridge(client *redis.Client, channel string, local Publisher) *Bridge {
	return &Bridge{client: client, channel: channel, local: local}
}

func (b *Bridge) Channel() string { return b.channel }

// Publish sends the event to the shared channel. Local sockets receive it through Run.
func (b *Bridge) Publish(ctx context.Context, room, event string, payload any) error {
	if b.localOnly.Load() {
		return b.local.Publish(ctx, room, event, payload)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	body, err := json.Marshal(envelope{Room: room, Event: event, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Run subscribes to the channel and forwards messages until ctx is cancelled. When it
// returns an error the bridge has switched to local delivery.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return b.fallBack(fmt.Errorf("subscribe to %s: %w", b.channel, err))
	}
	log.Printf("[Realtime Bridge] Subscribed to %s", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return b.fallBack(fmt.Errorf("subscription to %s closed", b.channel))
			}
			if err := b.handle(ctx, msg.Payload); err != nil {
				log.Printf("[Realtime Bridge] %s: %v", b.channel, err)
			}
		}
	}
}

func (b *Bridge) fallBack(err error) error {
	b.localOnly.Store(true)
	log.Printf("[Realtime Bridge] %v, delivering on this instance only", err)
	return err
}

var errIncompleteEnvelope = errors.New("envelope without room or event")

func (b *Bridge) handle(ctx context.Context, payload string) error {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.Room == "" || env.Event == "" {
		return errIncompleteEnvelope
	}
	return b.local.Publish(ctx, env.Room, env.Event, env.Data)
}
