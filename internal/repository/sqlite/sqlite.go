// Package sqlite implements the repository interfaces on SQLite.
//
// WHY SQLITE?
// The development backend is a single process serving one developer's
// client. SQLite keeps the whole database in one file next to the binary,
// needs no server to install, and ":memory:" gives every test its own fresh
// database. modernc.org/sqlite is a pure Go translation of SQLite, so the
// backend builds without a C compiler.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB      connection pool (NOT a single connection!)
//   - sql.Tx      transaction
//   - sql.Row     single result row
//   - sql.Rows    multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fashionpolice/fashion-police/internal/model"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies migrations and seeds the
// category catalog.
//
// dbPath examples:
//   - "data/fashionpolice.db" → file-based database (persistent)
//   - ":memory:"              → in-memory database (tests)
//
// Pragmas go in the DSN so every pooled connection gets them, not just the
// first one.
func New(dbPath string) (*DB, error) {
	dsn := dbPath
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// CONNECTION POOL:
	// sql.DB opens connections lazily and hands them out per query. Each
	// connection to ":memory:" is its own empty database, so an in-memory
	// pool must hold exactly one connection or tables created by the
	// migration would vanish on the next query.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	if err := db.seedCategories(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: seeding categories: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate runs all database migrations. CREATE ... IF NOT EXISTS and
// addColumnIfNotExists make every step safe to repeat.
func (db *DB) migrate() error {
	// Phase 1: accounts and the category catalog
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			gender        TEXT NOT NULL,
			age           INTEGER NOT NULL,
			height        INTEGER NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS categories (
			id     INTEGER PRIMARY KEY,
			name   TEXT NOT NULL UNIQUE,
			public INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			user_id     INTEGER NOT NULL REFERENCES users(id),
			category_id INTEGER NOT NULL REFERENCES categories(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, category_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating account tables: %w", err)
	}

	// Phase 1: posts and their clothing articles
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id           INTEGER NOT NULL REFERENCES users(id),
			category_id        INTEGER NOT NULL REFERENCES categories(id),
			description        TEXT NOT NULL DEFAULT '',
			image              BLOB NOT NULL,
			gender_restriction TEXT NOT NULL DEFAULT 'All',
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id, id);
		CREATE INDEX IF NOT EXISTS idx_posts_owner ON posts(owner_id);

		CREATE TABLE IF NOT EXISTS clothing_articles (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id  INTEGER NOT NULL REFERENCES posts(id),
			type     TEXT NOT NULL,
			position INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_post ON clothing_articles(post_id, position);
	`)
	if err != nil {
		return fmt.Errorf("creating post tables: %w", err)
	}

	// Phase 1: interactions. The votes primary key allows one vote per user
	// per article, so up and down are mutually exclusive in storage too.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS votes (
			user_id    INTEGER NOT NULL REFERENCES users(id),
			article_id INTEGER NOT NULL REFERENCES clothing_articles(id),
			vote       TEXT NOT NULL CHECK (vote IN ('up', 'down')),
			PRIMARY KEY (user_id, article_id)
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			item_type  TEXT NOT NULL CHECK (item_type IN ('post', 'clothing')),
			item_id    INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, item_type, item_id)
		);

		CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER NOT NULL REFERENCES posts(id),
			owner_id   INTEGER NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, id);
	`)
	if err != nil {
		return fmt.Errorf("creating interaction tables: %w", err)
	}

	// Phase 2: soft delete for posts
	if err := db.addColumnIfNotExists("posts", "deleted_at", "DATETIME"); err != nil {
		return fmt.Errorf("adding deleted_at to posts: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Makes ALTER TABLE migrations idempotent.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// seedCategories inserts the fixed catalog. Existing rows are left alone.
func (db *DB) seedCategories(ctx context.Context) error {
	for _, c := range model.DefaultCategories {
		_, err := db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (id, name) VALUES (?, ?)`,
			c.ID, c.Name,
		)
		if err != nil {
			return fmt.Errorf("inserting category %q: %w", c.Name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
