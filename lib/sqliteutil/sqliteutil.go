package sqliteutil

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if needed) a sqlite database at path and
// applies the schema. Schemas use IF NOT EXISTS so reapplying is
// safe.
func OpenDB(schema, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
