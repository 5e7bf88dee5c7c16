// Package stores implements the SQLite-backed persistence of toaster.
package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/toaster/internal/data/db"
)

// IsBusyError returns true if the error is a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

// IsCorruptionError returns true if the error indicates database corruption.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "database disk image is malformed") ||
		strings.Contains(msg, "file is not a database")
}

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// RecoverFromCorruption moves a corrupted database and its WAL/SHM files
// aside so the next Open starts from an empty database. It returns the backup
// path.
func RecoverFromCorruption(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	backupPath := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Rename(dbPath+suffix, backupPath+suffix)
		if err == nil || os.IsNotExist(err) {
			continue
		}
		if suffix == "" {
			return "", fmt.Errorf("failed to backup corrupted database: %w", err)
		}
		// Stale WAL/SHM files must not survive next to a fresh database.
		if delErr := os.Remove(dbPath + suffix); delErr != nil && !os.IsNotExist(delErr) {
			return "", fmt.Errorf("failed to backup or remove %s file: %w", suffix, err)
		}
	}

	return backupPath, nil
}
