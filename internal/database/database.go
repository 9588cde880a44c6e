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

// Migrate runs the SQL statements to set up the database schema. The unique
// index on users.email is the backstop against two concurrent signups racing
// past the service-side duplicate check.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		join_date DATETIME NOT NULL,
		-- Store list fields as JSON text
		grades_json TEXT NOT NULL DEFAULT '[]',
		subjects_json TEXT NOT NULL DEFAULT '[]',
		comment_ids_json TEXT NOT NULL DEFAULT '[]'
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS lessons (
		id TEXT NOT NULL PRIMARY KEY,
		title TEXT NOT NULL,
		subtitle TEXT NOT NULL DEFAULT '',
		grade TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		is_draft INTEGER NOT NULL DEFAULT 1,
		creation_date DATETIME NOT NULL,
		last_modified_date DATETIME NOT NULL,
		publication_date DATETIME,
		bookmark_count INTEGER NOT NULL DEFAULT 0,
		author_id TEXT NOT NULL REFERENCES users(id),
		category_ids_json TEXT NOT NULL DEFAULT '[]',
		comment_ids_json TEXT NOT NULL DEFAULT '[]',
		file_name TEXT NOT NULL DEFAULT '',
		file_url TEXT NOT NULL DEFAULT '',
		file_mime_type TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_lessons_author ON lessons(author_id);

	-- Reverse index answering "has this user bookmarked this lesson";
	-- lessons.bookmark_count is derived from it.
	CREATE TABLE IF NOT EXISTS bookmarks (
		user_id TEXT NOT NULL REFERENCES users(id),
		lesson_id TEXT NOT NULL REFERENCES lessons(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, lesson_id)
	);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_lesson ON bookmarks(lesson_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
