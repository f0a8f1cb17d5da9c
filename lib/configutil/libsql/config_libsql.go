package configlibsql

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct is embedded in service configs as the `database` block. File is a
// local sqlite path; Url is a libsql remote (libsql://...), which wins when
// both are set.
type Struct struct {
	File string `json:"file"`
	Url  string `json:"url"`
}

// OpenDB opens the configured database and applies the schema. Schema
// statements use IF NOT EXISTS so reopening an existing file is a no-op.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	if config.Url != "" {
		db, err := sql.Open("libsql", config.Url)
		if err != nil {
			return nil, err
		}
		_, err = db.Exec(schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return nil, err
		}
		return db, nil
	}

	if config.File == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}

	_, statErr := os.Stat(config.File)
	if os.IsNotExist(statErr) {
		f, err := os.Create(config.File)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, err
	}

	return db, nil
}
