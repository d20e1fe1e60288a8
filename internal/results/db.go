// internal/results/db.go
//
// SQLite plumbing for the results store: opening the file and bringing the
// schema up to date from embedded migrations.

package results

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// sqliteParams: busy timeout, WAL journaling, foreign keys on.
const sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// Open opens the database at path, creating its directory if needed.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("results: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("results: ping %s: %w", path, err)
	}
	return db, nil
}

// Migrate applies every sql/*.sql file of fsys not yet listed in _migrations,
// in name order. Each script and its bookkeeping row commit together unless
// the script opens its own transaction.
func Migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("results: create _migrations: %w", err)
	}
	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	names, err := fs.Glob(fsys, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("results: list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		if applied[name] {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("results: read %s: %w", name, err)
		}
		if err := applyMigration(db, name, string(script)); err != nil {
			return fmt.Errorf("results: apply %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("results: read _migrations: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func applyMigration(db *sql.DB, name, script string) error {
	if managesOwnTx(script) {
		if _, err := db.Exec(script); err != nil {
			return err
		}
		_, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name)
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// managesOwnTx spots scripts that must run outside a transaction, such as
// table rebuilds that turn foreign keys off.
func managesOwnTx(script string) bool {
	s := strings.ToUpper(strings.Join(strings.Fields(script), " "))
	return strings.Contains(s, "BEGIN TRANSACTION") ||
		strings.Contains(s, "PRAGMA FOREIGN_KEYS=OFF") ||
		strings.Contains(s, "PRAGMA FOREIGN_KEYS = OFF")
}
