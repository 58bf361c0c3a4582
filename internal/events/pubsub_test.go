package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestPubSubPublisherPublishesEvent(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "order-events")
	require.NoError(t, err)
	defer topic.Stop()

	publisher, err := NewPubSubPublisher(topic)
	require.NoError(t, err)

	event := Event{
		ID:         "01HZX3B6JQ7T3M4ZV8Q2K1N9PC",
		Type:       OrderCreated,
		OrderID:    "66f0c0ffee0000000000abcd",
		Status:     "pending",
		Amount:     720,
		OccurredAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, event))

	messages := srv.Messages()
	require.Len(t, messages, 1)

	var payload Event
	require.NoError(t, json.Unmarshal(messages[0].Data, &payload))
	require.Equal(t, event.OrderID, payload.OrderID)
	require.Equal(t, 720.0, payload.Amount)
	require.Equal(t, OrderCreated, messages[0].Attributes["eventType"])
	_, hasReturn := messages[0].Attributes["returnId"]
	require.False(t, hasReturn, "empty attributes are omitted")
}

func TestNewPubSubPublisherRequiresTopic(t *testing.T) {
	_, err := NewPubSubPublisher(nil)
	require.Error(t, err)
}

func TestLogPublisherNeverFails(t *testing.T) {
	require.NoError(t, NewLogPublisher(nil).Publish(context.Background(), Event{Type: OrderDeleted}))
}
