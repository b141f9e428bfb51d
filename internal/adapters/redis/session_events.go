package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
)

// SessionStream implements ports.SessionEvents over Redis pub/sub. The
// identity platform publishes JSON session-change events on a per-subject
// channel; this adapter delivers them in publish order.
type SessionStream struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewSessionStream creates a session-change stream adapter.
func NewSessionStream(client redis.UniversalClient, logger *slog.Logger) *SessionStream {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStream{
		client: client,
		prefix: "session-events:",
		logger: logger,
	}
}

// Subscribe attaches to the subject's session-change channel. The returned
// subscription must be closed to release the pub/sub connection.
func (s *SessionStream) Subscribe(ctx context.Context, uid string) (ports.Subscription, error) {
	if uid == "" {
		return nil, fmt.Errorf("uid cannot be empty")
	}

	channel := s.prefix + uid
	pubsub := s.client.Subscribe(ctx, channel)

	// Force the SUBSCRIBE round-trip so a dead broker fails here, not on the
	// first receive.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	sub := &subscription{
		pubsub: pubsub,
		events: make(chan domainauth.SessionEvent),
		logger: s.logger,
	}
	go sub.pump()
	return sub, nil
}

type subscription struct {
	pubsub *redis.PubSub
	events chan domainauth.SessionEvent
	logger *slog.Logger
}

// pump decodes pub/sub payloads into domain events until the PubSub closes.
func (s *subscription) pump() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		var event domainauth.SessionEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			s.logger.Warn("drop malformed session event", "channel", msg.Channel, "error", err)
			continue
		}
		s.events <- event
	}
}

func (s *subscription) Events() <-chan domainauth.SessionEvent { return s.events }

// Close detaches from the channel; the events channel closes once the
// underlying PubSub drains.
func (s *subscription) Close() error { return s.pubsub.Close() }
