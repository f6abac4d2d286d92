package db

import "strings"

// Timestamps are stored as fixed-width UTC text (see FormatTime) on both
// dialects, so ORDER BY created_at is chronological.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS users (
	id {{pk}},
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS task_lists (
	id {{pk}},
	user_id {{fk}} NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_lists_user ON task_lists (user_id, created_at);

CREATE TABLE IF NOT EXISTS tasks (
	id {{pk}},
	list_id {{fk}} NOT NULL REFERENCES task_lists (id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT,
	due_date TEXT,
	status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed')),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks (list_id, created_at);
`

// SchemaStatements renders the schema for a driver, one statement per entry.
func SchemaStatements(driver string) []string {
	pk, fk := "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER"
	if driver == DriverPostgres {
		pk, fk = "BIGSERIAL PRIMARY KEY", "BIGINT"
	}

	ddl := strings.NewReplacer("{{pk}}", pk, "{{fk}}", fk).Replace(schemaTemplate)

	var stmts []string
	for _, s := range strings.Split(ddl, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
