package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	applied, err := appliedVersions(ctx, database.Conn())
	require.NoError(t, err)

	migrations, err := loadMigrations()
	require.NoError(t, err)

	require.Len(t, applied, len(migrations))
	for _, m := range migrations {
		assert.True(t, applied[m.Version], "version %d should be applied", m.Version)
	}

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM history LIMIT 0")
	require.NoError(t, err, "history table should exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)

	err := migrateUp(context.Background(), database.Conn())
	assert.NoError(t, err, "second migrateUp should be a no-op")
}

func TestMigrateDown(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()

	migrations, err := loadMigrations()
	require.NoError(t, err)

	_, err = database.Queries().InsertHistory(ctx, InsertHistoryParams{
		ToastID: "1", Surface: "default", Kind: "blank", Message: "hi", CreatedAt: 1,
	})
	require.NoError(t, err)

	// Dropping the toast_id index keeps the rows.
	require.NoError(t, MigrateDown(ctx, conn, 1))
	count, err := database.Queries().CountHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, MigrateDown(ctx, conn, len(migrations)-1))
	_, err = conn.ExecContext(ctx, "SELECT 1 FROM history LIMIT 0")
	require.Error(t, err, "history should not exist after reverting every migration")

	require.NoError(t, migrateUp(ctx, conn), "migrations can be re-applied")
}

func TestMigrateDown_InvalidN(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	require.Error(t, MigrateDown(ctx, conn, 0))
	require.Error(t, MigrateDown(ctx, conn, -1))
}

func TestMigrateDown_TooMany(t *testing.T) {
	database := openTestDB(t)

	migrations, err := loadMigrations()
	require.NoError(t, err)

	err = MigrateDown(context.Background(), database.Conn(), len(migrations)+1)
	assert.Error(t, err)
}

func TestLoadMigrations_Valid(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version)
	}

	for _, m := range migrations {
		assert.NotEmpty(t, m.UpSQL, "migration %d up SQL", m.Version)
		assert.NotEmpty(t, m.DownSQL, "migration %d down SQL", m.Version)
		assert.NotEmpty(t, m.Name, "migration %d name", m.Version)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion int
		wantName    string
		wantUp      bool
		wantErr     bool
	}{
		{"0001_history.up.sql", 1, "history", true, false},
		{"0001_history.down.sql", 1, "history", false, false},
		{"0100_big_version.down.sql", 100, "big_version", false, false},
		{"bad.sql", 0, "", false, true},
		{"0001_history.sql", 0, "", false, true},
		{"0000_zero.up.sql", 0, "", false, true},
		{"-1_negative.up.sql", 0, "", false, true},
		{"abc_notnumber.up.sql", 0, "", false, true},
		{"0001_.up.sql", 0, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, up, err := parseFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantUp, up)
		})
	}
}

func TestWithTx_RollsBack(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, func(q *Queries) error {
		if _, err := q.InsertHistory(ctx, InsertHistoryParams{ToastID: "1", Surface: "s", Kind: "blank", Message: "m", CreatedAt: 1}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	count, err := database.Queries().CountHistory(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
