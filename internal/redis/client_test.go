package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := NewClient(&Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(&Config{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestClient_Health(t *testing.T) {
	client, mr := newTestClient(t)

	assert.NoError(t, client.Health())

	mr.Close()
	assert.Error(t, client.Health())
}

func TestClient_AcquireLock(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	acquired, err := client.AcquireLock(ctx, "sweep", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)

	// second acquisition on the same key must lose
	acquired, err = client.AcquireLock(ctx, "sweep", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)

	// a different key is independent
	acquired, err = client.AcquireLock(ctx, "other", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestClient_ReleaseLock(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AcquireLock(ctx, "sweep", 30*time.Second)
	require.NoError(t, err)

	require.NoError(t, client.ReleaseLock(ctx, "sweep"))

	acquired, err := client.AcquireLock(ctx, "sweep", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "lock should be acquirable after release")

	// releasing an unheld lock is a no-op
	assert.NoError(t, client.ReleaseLock(ctx, "never-held"))
}

func TestClient_ExtendLock(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	_, err := client.AcquireLock(ctx, "sweep", 10*time.Second)
	require.NoError(t, err)

	require.NoError(t, client.ExtendLock(ctx, "sweep", time.Minute))

	ttl := mr.TTL("lock:sweep")
	assert.Greater(t, ttl, 30*time.Second)

	// extending a lock that expired or was never held fails
	assert.Error(t, client.ExtendLock(ctx, "never-held", time.Minute))
}
