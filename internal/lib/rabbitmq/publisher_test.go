package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

func TestPublisher_RoutesEventsToBoundQueue(t *testing.T) {
	ctx := context.Background()
	uri := amqpURIForTest(ctx, t)

	conn, err := Connect(uri, 3, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := SetupChannel(conn, NotificationQueues())
	require.NoError(t, err)
	pub := NewPublisher(ch)

	event := models.LicenseIssuedEvent{
		LicenseID:  "lic-1",
		LicenseKey: "key",
		AssetID:    "asset-1",
		Title:      "Sprite pack",
		UserID:     "user-1",
		Email:      "a@example.com",
		IssuedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, pub.Publish(ctx, models.EventLicenseIssued, event))

	readCh, err := conn.Channel()
	require.NoError(t, err)
	defer readCh.Close()
	deliveries, err := readCh.Consume("notifications.licenses", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got models.LicenseIssuedEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, event, got)
		assert.Equal(t, "application/json", d.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}

func TestPublisher_CanceledContext(t *testing.T) {
	pub := &Publisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pub.Publish(ctx, models.EventLicenseIssued, struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
