package localstore

type migration struct {
	version int
	sql     string
}

// migrations must stay ordered by version
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_cases (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pending_cases_created_at ON pending_cases(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
