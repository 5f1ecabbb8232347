package stores

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/deskbell/internal/data/db"
)

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

// IsBusyError reports whether err is SQLITE_BUSY or SQLITE_LOCKED, which a
// concurrent deskbell process holding the write lock produces.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED)
}

var corruptionMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// IsCorruptionError reports whether err means the database file is unusable
// and should be moved aside.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return true
		}
	}
	msg := err.Error()
	for _, m := range corruptionMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

const (
	busyAttempts = 4
	busyBackoff  = 25 * time.Millisecond
)

// retryBusy runs write until it succeeds, fails with a non-busy error, or
// the attempts run out.
func retryBusy(ctx context.Context, write func() error) error {
	wait := busyBackoff
	var err error
	for range busyAttempts {
		if err = write(); err == nil || !IsBusyError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

// RecoverFromCorruption renames the database and its WAL side files in
// dataDir to "<name>.corrupt.<timestamp>" so the next Open starts empty.
func RecoverFromCorruption(dataDir string) error {
	base := filepath.Join(dataDir, db.FileName)
	stamp := time.Now().Format("20060102-150405")

	for _, suffix := range []string{"", "-wal", "-shm"} {
		from := base + suffix
		to := fmt.Sprintf("%s.corrupt.%s%s", base, stamp, suffix)
		err := os.Rename(from, to)
		switch {
		case err == nil, errors.Is(err, os.ErrNotExist):
		case suffix != "":
			// A stale side file must not sit next to a fresh database.
			if rmErr := os.Remove(from); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", from, err)
			}
		default:
			return fmt.Errorf("move corrupt database aside: %w", err)
		}
	}
	return nil
}
