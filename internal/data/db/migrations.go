package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// step is one numbered schema change with its forward and reverse SQL.
type step struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// stepFile is the parsed form of a file name like 0002_alert_history.up.sql.
type stepFile struct {
	version int
	name    string
	up      bool
}

var stepFilePattern = regexp.MustCompile(`^(\d+)_(\w+)\.(up|down)\.sql$`)

func parseStepFile(filename string) (stepFile, error) {
	m := stepFilePattern.FindStringSubmatch(filename)
	if m == nil {
		return stepFile{}, fmt.Errorf("migration %q: expected NNNN_name.up.sql or NNNN_name.down.sql", filename)
	}
	version, err := strconv.Atoi(m[1])
	if err != nil || version <= 0 {
		return stepFile{}, fmt.Errorf("migration %q: version must be a positive integer", filename)
	}
	return stepFile{version: version, name: m[2], up: m[3] == "up"}, nil
}

// readSteps collects the migrations under dir in fsys, ordered by version.
// Every version needs both halves and a single name.
func readSteps(fsys fs.FS, dir string) ([]step, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*step{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := parseStepFile(e.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}

		s, ok := byVersion[f.version]
		if !ok {
			s = &step{Version: f.version, Name: f.name}
			byVersion[f.version] = s
		}
		if s.Name != f.name {
			return nil, fmt.Errorf("migration %04d has two names: %s and %s", f.version, s.Name, f.name)
		}
		if f.up {
			s.Up = string(body)
		} else {
			s.Down = string(body)
		}
	}

	steps := make([]step, 0, len(byVersion))
	for _, s := range byVersion {
		if s.Up == "" || s.Down == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both up and down files", s.Version, s.Name)
		}
		steps = append(steps, *s)
	}
	slices.SortFunc(steps, func(a, b step) int { return a.Version - b.Version })
	return steps, nil
}

// migrator applies steps to a connection and tracks them in schema_migrations.
type migrator struct {
	conn  *sql.DB
	steps []step
	now   func() time.Time
}

func newMigrator(conn *sql.DB) (*migrator, error) {
	steps, err := readSteps(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return &migrator{conn: conn, steps: steps, now: time.Now}, nil
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// applied returns recorded versions in ascending order.
func (m *migrator) applied(ctx context.Context) ([]int, error) {
	rows, err := m.conn.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (m *migrator) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// up applies every step that has not been recorded yet.
func (m *migrator) up(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, s := range m.steps {
		if slices.Contains(done, s.Version) {
			continue
		}
		err := m.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, s.Up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				s.Version, s.Name, m.now().Unix())
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", s.Version, s.Name, err)
		}
	}
	return nil
}

// down reverts the newest n recorded steps.
func (m *migrator) down(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("revert count must be positive, got %d", n)
	}
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}
	if n > len(done) {
		return fmt.Errorf("cannot revert %d migrations: only %d applied", n, len(done))
	}

	for i := len(done) - 1; i >= len(done)-n; i-- {
		v := done[i]
		idx := slices.IndexFunc(m.steps, func(s step) bool { return s.Version == v })
		if idx < 0 {
			return fmt.Errorf("migration %04d is recorded but has no files", v)
		}
		s := m.steps[idx]
		err := m.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, s.Down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, s.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert migration %04d_%s: %w", s.Version, s.Name, err)
		}
	}
	return nil
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	m, err := newMigrator(conn)
	if err != nil {
		return err
	}
	return m.up(ctx)
}

// MigrateDown reverts the newest n applied migrations.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	m, err := newMigrator(conn)
	if err != nil {
		return err
	}
	return m.down(ctx, n)
}

// SchemaVersion reports the highest applied migration, or 0 for an empty
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
