package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/toaster/internal/data/db"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.False(t, IsBusyError(errors.New("database disk image is malformed")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)

	assert.NoFileExists(t, dbPath)
	assert.NoFileExists(t, dbPath+"-wal")
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, database.Close())
}
