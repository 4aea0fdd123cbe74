package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tably/pkg/domain"
)

const testDebounce = 20 * time.Millisecond

func recvRefresh(t *testing.T, sub *Subscription) Refresh {
	t.Helper()
	select {
	case r, ok := <-sub.C():
		require.True(t, ok, "subscription channel closed unexpectedly")
		return r
	case <-time.After(10 * testDebounce):
		t.Fatal("timed out waiting for refresh hint")
		return Refresh{}
	}
}

func assertNoRefresh(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case r, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected refresh hint %+v", r)
		}
	case <-time.After(3 * testDebounce):
	}
}

func TestHubDebounce(t *testing.T) {
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())

	t.Run("a burst collapses into one hint", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders)
		defer sub.Close()

		for i := 0; i < 10; i++ {
			hub.Notify(ctx, TopicOrders, tenantID)
		}

		r := recvRefresh(t, sub)
		assert.Equal(t, TopicOrders, r.Topic)
		assertNoRefresh(t, sub)
	})

	t.Run("topics debounce independently", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders, TopicPaymentIntents)
		defer sub.Close()

		hub.Notify(ctx, TopicOrders, tenantID)
		hub.Notify(ctx, TopicPaymentIntents, tenantID)

		got := map[string]bool{}
		got[recvRefresh(t, sub).Topic] = true
		got[recvRefresh(t, sub).Topic] = true
		assert.True(t, got[TopicOrders])
		assert.True(t, got[TopicPaymentIntents])
	})

	t.Run("unwatched topics are ignored", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders)
		defer sub.Close()

		hub.Notify(ctx, TopicPaymentIntents, tenantID)
		assertNoRefresh(t, sub)
	})

	t.Run("other tenants are isolated", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders)
		defer sub.Close()

		hub.Notify(ctx, TopicOrders, id.TenantID(uuid.New()))
		assertNoRefresh(t, sub)
	})
}

func TestSubscriptionClose(t *testing.T) {
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())

	t.Run("close releases pending timers and the channel", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders)

		hub.Notify(ctx, TopicOrders, tenantID)
		sub.Close()

		_, ok := <-sub.C()
		assert.False(t, ok, "channel should be closed")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders)
		sub.Close()
		sub.Close()
	})

	t.Run("notify after close is a no-op", func(t *testing.T) {
		hub := NewHub(testDebounce)
		sub := hub.Subscribe(tenantID, TopicOrders)
		sub.Close()
		hub.Notify(ctx, TopicOrders, tenantID)
	})
}

func TestChannelNaming(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	assert.Equal(t, "orders:tenant:"+tenantID.String(), Channel(TopicOrders, tenantID))

	topic, parsed, err := parseChannel(Channel(TopicPaymentIntents, tenantID))
	require.NoError(t, err)
	assert.Equal(t, TopicPaymentIntents, topic)
	assert.Equal(t, tenantID, parsed)

	_, _, err = parseChannel("garbage")
	assert.Error(t, err)
}
