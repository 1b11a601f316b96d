//go:build integration

package localstate

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis returns TRIPPLANNER_TEST_REDIS_ADDR when set, otherwise the
// address of a throwaway redis container.
func startRedis(t *testing.T) string {
	t.Helper()
	if addr := os.Getenv("TRIPPLANNER_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedis_Container(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	s, err := OpenRedis(ctx, addr, "tripplanner-test:"+t.Name()+":")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)

	// Open routes the redis backend through the same store.
	opened, err := Open(ctx, Options{Backend: BackendRedis, RedisAddr: addr, RedisPrefix: "tripplanner-open:" + t.Name() + ":"})
	require.NoError(t, err)
	defer opened.Close()
	require.NoError(t, opened.Set(ctx, "token", "abc"))
	v, ok, err := opened.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)

	// Prefixes keep namespaces apart.
	_, ok, err = s.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}
