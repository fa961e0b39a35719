// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RequireDocker skips the test unless container-backed tests are enabled.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("BUDGETER_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set BUDGETER_TEST_DOCKER=true to enable)")
	}
}

// Container is a started container with its mapped endpoint.
type Container struct {
	container testcontainers.Container
	endpoint  string // host:port
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *Container) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}

// shared starts one container per process and remembers the outcome.
type shared struct {
	once sync.Once
	c    *Container
	err  error
}

func (s *shared) start(t *testing.T, name string, req testcontainers.ContainerRequest) *Container {
	t.Helper()
	RequireDocker(t)

	s.once.Do(func() {
		s.c, s.err = startContainer(context.Background(), name, req)
	})
	if s.err != nil {
		t.Fatalf("%s container failed: %v", name, s.err)
	}
	return s.c
}

func startContainer(ctx context.Context, name string, req testcontainers.ContainerRequest) (*Container, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", name, err)
	}

	// Each request exposes a single port, so the first endpoint is the service.
	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s endpoint: %w", name, err)
	}

	return &Container{container: container, endpoint: endpoint}, nil
}

// image returns the override in env, or def.
func image(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

const (
	PostgresUser     = "budgeter"
	PostgresPassword = "budgeter"
)

var postgres shared

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	*Container
}

// StartPostgres starts a shared PostgreSQL container for the test run.
// BUDGETER_TEST_POSTGRES_IMAGE overrides the image.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	c := postgres.start(t, "PostgreSQL", testcontainers.ContainerRequest{
		Image:        image("BUDGETER_TEST_POSTGRES_IMAGE", "postgres:16-alpine"),
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     PostgresUser,
			"POSTGRES_PASSWORD": PostgresPassword,
			"POSTGRES_DB":       "budgeter",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	})
	return &PostgresContainer{Container: c}
}

// DSN returns a connection string for the given database on the container.
func (c *PostgresContainer) DSN(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", PostgresUser, PostgresPassword, c.endpoint, database)
}
