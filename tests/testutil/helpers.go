// Package testutil holds helpers shared by the engine, CLI, HTTP API,
// integration and e2e tests that load tables from fixtures/.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the repository root for tests running two directories
// below it, where fixtures/ and cmd/resengine live.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// Fixture returns the absolute path of a file under fixtures/.
func Fixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "fixtures", name)
}
