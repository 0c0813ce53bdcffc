package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusClient struct {
	topic        string
	retained     bool
	payloads     [][]byte
	err          error
	block        bool
	disconnected bool
}

func (f *fakeStatusClient) Publish(ctx context.Context, topic string, retained bool, payload []byte) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.retained = retained
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeStatusClient) Disconnect() {
	f.disconnected = true
}

func TestNewEvent_CopiesSessionFlags(t *testing.T) {
	e := NewEvent("s-1", TypeSuppressed, 12, models.IntellivibeData{IsPaused: true, IsOnGround: true})

	assert.Equal(t, "s-1", e.SessionID)
	assert.Equal(t, TypeSuppressed, e.Type)
	assert.Equal(t, uint64(12), e.Ticks)
	assert.True(t, e.Paused)
	assert.True(t, e.OnGround)
	assert.False(t, e.Ejecting)
	assert.NotZero(t, e.Timestamp)
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	p := NewRedisPublisher(client, "bms:session:stream")
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, Event{SessionID: "s-1", Type: TypeSourcesReady}))
	require.NoError(t, p.Publish(ctx, Event{SessionID: "s-1", Type: TypeExited, Ticks: 99}))

	msgs, err := client.XRange(ctx, "bms:session:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	var last Event
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Values["data"].(string)), &last))
	assert.Equal(t, TypeExited, last.Type)
	assert.Equal(t, uint64(99), last.Ticks)
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	p := NewRedisPublisher(client, "bms:session:stream")
	err := p.Publish(context.Background(), Event{Type: TypeActive})
	assert.Error(t, err)
}

func TestMQTTPublisher_PublishRetained(t *testing.T) {
	fc := &fakeStatusClient{}
	p := NewMQTTPublisher(fc, "bms/bridge/status")

	require.NoError(t, p.Publish(context.Background(), Event{SessionID: "s-2", Type: TypeActive}))
	assert.Equal(t, "bms/bridge/status", fc.topic)
	assert.True(t, fc.retained)
	require.Len(t, fc.payloads, 1)

	var decoded Event
	require.NoError(t, json.Unmarshal(fc.payloads[0], &decoded))
	assert.Equal(t, TypeActive, decoded.Type)

	require.NoError(t, p.Close())
	assert.True(t, fc.disconnected)
}

func TestMQTTPublisher_PublishHonoursDeadline(t *testing.T) {
	p := NewMQTTPublisher(&fakeStatusClient{block: true}, "bms/bridge/status")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, Event{Type: TypeSuppressed})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOfflinePayload_IsJSON(t *testing.T) {
	var v map[string]string
	require.NoError(t, json.Unmarshal(OfflinePayload(), &v))
	assert.Equal(t, "offline", v["type"])
}

func TestMulti_ContinuesPastFailure(t *testing.T) {
	failing := &fakeStatusClient{err: errors.New("broker gone")}
	ok := &fakeStatusClient{}
	m := Multi{NewMQTTPublisher(failing, "a"), NewMQTTPublisher(ok, "b")}

	err := m.Publish(context.Background(), Event{Type: TypeExited})
	assert.Error(t, err)
	assert.Len(t, ok.payloads, 1)

	assert.NoError(t, m.Close())
	assert.True(t, failing.disconnected)
	assert.True(t, ok.disconnected)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
