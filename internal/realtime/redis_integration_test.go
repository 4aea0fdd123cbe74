//go:build integration

package realtime_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tably/internal/realtime"
	id "tably/pkg/domain"
	"tably/pkg/testutil/containers"
)

type RedisBridgeSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisBridgeSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBridgeSuite))
}

func (s *RedisBridgeSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisBridgeSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

// TestPublishReachesSubscriber verifies a notify published on one "instance"
// reaches a hub subscription through the pub/sub bridge.
func (s *RedisBridgeSuite) TestPublishReachesSubscriber() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.Default()
	hub := realtime.NewHub(20 * time.Millisecond)
	listener := realtime.NewListener(s.redis.Client, hub, logger)
	go func() { _ = listener.Run(ctx) }()

	tenantID := id.TenantID(uuid.New())
	sub := hub.Subscribe(tenantID, realtime.TopicOrders)
	defer sub.Close()

	notifier := realtime.NewRedisNotifier(s.redis.Client, logger)

	// PSUBSCRIBE is asynchronous; keep publishing until the bridge delivers.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case r := <-sub.C():
			s.Equal(realtime.TopicOrders, r.Topic)
			return
		case <-tick.C:
			notifier.Notify(ctx, realtime.TopicOrders, tenantID)
		case <-deadline:
			s.FailNow("timed out waiting for bridged refresh hint")
		}
	}
}

// TestTenantIsolation verifies another tenant's channel never reaches this
// tenant's subscription.
func (s *RedisBridgeSuite) TestTenantIsolation() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.Default()
	hub := realtime.NewHub(20 * time.Millisecond)
	listener := realtime.NewListener(s.redis.Client, hub, logger)
	go func() { _ = listener.Run(ctx) }()

	tenantID := id.TenantID(uuid.New())
	sub := hub.Subscribe(tenantID, realtime.TopicOrders)
	defer sub.Close()

	notifier := realtime.NewRedisNotifier(s.redis.Client, logger)
	for i := 0; i < 5; i++ {
		notifier.Notify(ctx, realtime.TopicOrders, id.TenantID(uuid.New()))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case r := <-sub.C():
		s.FailNowf("unexpected refresh hint", "%+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}
