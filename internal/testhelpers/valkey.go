//go:build integration

// Package testhelpers provides container-backed fixtures for
// integration tests.
package testhelpers

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skribble-sdk/skribble-go/cache"
)

// RunValkeyContainer starts a Valkey container and returns a cache
// configuration pointing at it. Cleanup is handled automatically via
// t.Cleanup().
func RunValkeyContainer(t *testing.T) cache.ValkeyConfig {
	t.Helper()
	ctx := context.Background()

	valkeyPort := "6379"
	valkeyProtocolPort := valkeyPort + "/tcp"

	password := rand.Text()

	req := testcontainers.ContainerRequest{
		Image: "valkey/valkey:9-alpine",
		Env: map[string]string{
			"VALKEY_EXTRA_FLAGS": "--requirepass " + password,
		},
		ExposedPorts: []string{valkeyProtocolPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort(nat.Port(valkeyProtocolPort)),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Logger:           log.TestLogger(t),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	mappedPort, err := container.MappedPort(ctx, nat.Port(valkeyPort))
	require.NoError(t, err)

	// Use 127.0.0.1 explicitly to avoid IPv6 issues
	endpoint := "127.0.0.1:" + mappedPort.Port()

	return cache.ValkeyConfig{
		Address:  endpoint,
		Username: "default",
		Password: password,
		TLS:      false,
	}
}
