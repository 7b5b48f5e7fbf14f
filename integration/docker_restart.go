//go:build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// restartCatalogContainer bounces only the app container, so products read back afterwards must come from PostgreSQL.
func restartCatalogContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", "compose", "restart", "catalog")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart catalog failed: %v\n%s", err, string(out))
	}
}
