package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
// Timestamp columns hold unix seconds.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT NOT NULL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		profession TEXT,
		current_employer TEXT,
		description TEXT,
		profile_pic TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_top_skills (
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		skill_name TEXT NOT NULL,
		PRIMARY KEY (user_id, position)
	);

	CREATE TABLE IF NOT EXISTS blog_posts (
		post_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS phone_auth (
		phone TEXT NOT NULL PRIMARY KEY,
		auth_code_hash TEXT NOT NULL,
		user_id TEXT,
		is_verified INTEGER NOT NULL DEFAULT 0,
		auth_time_stamp INTEGER NOT NULL
	);

	-- directory_id is the public slug a user's site is served under. The
	-- primary key makes allocation races lose at insert time instead of
	-- silently producing duplicate directories.
	CREATE TABLE IF NOT EXISTS site_directories (
		directory_id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		site_slug TEXT,
		created_at INTEGER NOT NULL
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
