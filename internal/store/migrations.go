package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create tool invocations",
		SQL: `
			CREATE TABLE tool_invocations (
				id          TEXT PRIMARY KEY,
				tool        TEXT NOT NULL,
				input       TEXT NOT NULL DEFAULT '',
				outcome     TEXT NOT NULL CHECK (outcome IN ('ok', 'empty', 'error')),
				error       TEXT NOT NULL DEFAULT '',
				duration_ms INTEGER NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL
			);

			CREATE INDEX idx_invocations_created ON tool_invocations (created_at);
		`,
	},
	{
		Version: 2,
		Name:    "index invocations by tool",
		SQL: `
			CREATE INDEX idx_invocations_tool ON tool_invocations (tool, created_at);
		`,
	},
}
