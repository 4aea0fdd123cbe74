package realtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	id "tably/pkg/domain"
)

// RedisNotifier publishes change notifications on tenant-scoped channels so
// every server instance's hub sees writes made by any instance.
type RedisNotifier struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisNotifier(client *redis.Client, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Notify publishes on {topic}:tenant:{tenantID}. Publish failures are logged
// and swallowed: the write already committed, and dashboards recover on their
// next poll or reconnect.
func (n *RedisNotifier) Notify(ctx context.Context, topic string, tenantID id.TenantID) {
	if err := n.client.Publish(ctx, Channel(topic, tenantID), "1").Err(); err != nil {
		n.logger.WarnContext(ctx, "realtime publish failed",
			"error", err,
			"channel", Channel(topic, tenantID),
		)
	}
}

// Listener bridges redis pub/sub into the local hub.
type Listener struct {
	client *redis.Client
	hub    *Hub
	logger *slog.Logger
}

func NewListener(client *redis.Client, hub *Hub, logger *slog.Logger) *Listener {
	return &Listener{client: client, hub: hub, logger: logger}
}

// Run psubscribes to every tenant channel and dispatches messages to the hub
// until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	pubsub := l.client.PSubscribe(ctx, "*:tenant:*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topic, tenantID, err := parseChannel(msg.Channel)
			if err != nil {
				l.logger.WarnContext(ctx, "dropping malformed realtime channel",
					"channel", msg.Channel,
					"error", err,
				)
				continue
			}
			l.hub.Notify(ctx, topic, tenantID)
		}
	}
}

func parseChannel(channel string) (string, id.TenantID, error) {
	parts := strings.Split(channel, ":tenant:")
	if len(parts) != 2 {
		return "", id.TenantID{}, errMalformedChannel
	}
	tenantID, err := id.ParseTenantID(parts[1])
	if err != nil {
		return "", id.TenantID{}, err
	}
	return parts[0], tenantID, nil
}

var errMalformedChannel = errMalformed("malformed realtime channel")

type errMalformed string

func (e errMalformed) Error() string { return string(e) }
