package test

import (
	"log"

	"github.com/rs/zerolog"

	"securetodo/internal/adapter/database/sqlite"
)

// InitTestDB returns a migrated, private in-memory store.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.Open(sqlite.Options{
		Path:   sqlite.MemoryPath,
		Logger: zerolog.Nop(),
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// CleanDB empties every application table and resets the id sequences.
func CleanDB(db *sqlite.DB) error {
	for _, stmt := range []string{
		"DELETE FROM tasks",
		"DELETE FROM users",
		"DELETE FROM sqlite_sequence",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
