package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ms-attendance/internal/models"
)

// TestCacheIntegration exercises the access-code cache against a real Redis
// container.
func TestCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	defer client.Close()

	cache := NewRedis(client, 2*time.Second)

	event := models.Event{
		ID:         "ev-1",
		AccessCode: "ABC123",
		Name:       "Standup",
		StartTime:  time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC),
		Duration:   60,
		Status:     models.StatusOpen,
	}

	// Miss before fill
	got, err := cache.GetEvent("ABC123")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.SetEvent(event))

	got, err = cache.GetEvent("ABC123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.AccessCode, got.AccessCode)
	assert.True(t, got.StartTime.Equal(event.StartTime))

	// Invalidation turns the hit back into a miss.
	require.NoError(t, cache.Invalidate("ABC123"))
	got, err = cache.GetEvent("ABC123")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The TTL expires entries on its own.
	require.NoError(t, cache.SetEvent(event))
	time.Sleep(2500 * time.Millisecond)
	got, err = cache.GetEvent("ABC123")
	require.NoError(t, err)
	assert.Nil(t, got, "entry should have expired")
}
