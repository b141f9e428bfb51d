package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStream_DeliversEventsInOrder(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	stream := NewSessionStream(client, nil)
	ctx := context.Background()

	sub, err := stream.Subscribe(ctx, "op-1")
	require.NoError(t, err)
	defer sub.Close()

	publish := func(kind domainauth.SessionEventKind) {
		payload, marshalErr := json.Marshal(domainauth.SessionEvent{Kind: kind, UID: "op-1"})
		require.NoError(t, marshalErr)
		require.NoError(t, client.Publish(ctx, "session-events:op-1", payload).Err())
	}

	publish(domainauth.SessionActive)
	publish(domainauth.SessionRevoked)

	var got []domainauth.SessionEventKind
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case event := <-sub.Events():
			got = append(got, event.Kind)
		case <-timeout:
			t.Fatal("timed out waiting for session events")
		}
	}

	assert.Equal(t, []domainauth.SessionEventKind{domainauth.SessionActive, domainauth.SessionRevoked}, got)
}

func TestSessionStream_MalformedPayloadIsDropped(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	stream := NewSessionStream(client, nil)
	ctx := context.Background()

	sub, err := stream.Subscribe(ctx, "op-2")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.Publish(ctx, "session-events:op-2", "{not json").Err())

	payload, marshalErr := json.Marshal(domainauth.SessionEvent{Kind: domainauth.SessionRevoked, UID: "op-2"})
	require.NoError(t, marshalErr)
	require.NoError(t, client.Publish(ctx, "session-events:op-2", payload).Err())

	select {
	case event := <-sub.Events():
		assert.Equal(t, domainauth.SessionRevoked, event.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the valid event")
	}
}

func TestSessionStream_CloseEndsEventChannel(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	stream := NewSessionStream(client, nil)

	sub, err := stream.Subscribe(context.Background(), "op-3")
	require.NoError(t, err)

	require.NoError(t, sub.Close())

	select {
	case _, open := <-sub.Events():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel did not close")
	}
}

func TestSessionStream_EmptyUID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	stream := NewSessionStream(client, nil)
	_, err := stream.Subscribe(context.Background(), "")
	assert.Error(t, err)
}
