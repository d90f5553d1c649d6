package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggersWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLoggers(dir))
	t.Cleanup(InitNop)

	AuditLogger.Info("Task created")
	SecurityLogger.Info("below threshold")
	SyncLoggers()

	audit, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), `"msg":"Task created"`)
	assert.Contains(t, string(audit), `"timestamp"`)

	security, err := os.ReadFile(filepath.Join(dir, "security.log"))
	require.NoError(t, err)
	assert.Empty(t, security)
}
