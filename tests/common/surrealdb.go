package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	SurrealUser     = "root"
	SurrealPassword = "root"
)

var surreal shared

// SurrealDBContainer wraps a testcontainers SurrealDB instance.
type SurrealDBContainer struct {
	*Container
}

// StartSurrealDB starts a shared SurrealDB container for the test run.
// BUDGETER_TEST_SURREAL_IMAGE overrides the image.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	c := surreal.start(t, "SurrealDB", testcontainers.ContainerRequest{
		Image:        image("BUDGETER_TEST_SURREAL_IMAGE", "surrealdb/surrealdb:v3.0.0"),
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--user", SurrealUser, "--pass", SurrealPassword},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8000/tcp"),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	})
	return &SurrealDBContainer{Container: c}
}

// Address returns the WebSocket RPC address for SurrealDB.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s/rpc", c.endpoint)
}
