package logs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeFileLogger(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	dir := filepath.Join(t.TempDir(), "home")
	require.NoError(t, InitializeFileLogger(dir, true))

	ctx, id := WithQueryID(context.Background())
	FromContext(ctx).Debug("fetching page", slog.Int("page", 1))
	CloseLogger()

	content, err := os.ReadFile(filepath.Join(dir, "logs.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "fetching page")
	assert.Contains(t, string(content), "query_id="+id)
}

func TestQueryID(t *testing.T) {
	assert.Empty(t, QueryID(context.Background()))

	ctx, id := WithQueryID(context.Background())
	assert.Equal(t, id, QueryID(ctx))
	_, err := ulid.Parse(id)
	assert.NoError(t, err)
}
