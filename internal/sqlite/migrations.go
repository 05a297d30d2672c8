package sqlite

// migration is a schema change applied once, in version order.
type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT    NOT NULL UNIQUE,
	password_hash TEXT    NOT NULL,
	is_admin      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT    PRIMARY KEY,
	title       TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	due_date    TEXT    NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	priority    TEXT    NOT NULL DEFAULT 'Medium',
	tags        TEXT    NOT NULL DEFAULT '',
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
