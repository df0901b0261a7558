package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/waterforcectl/internal/errors"
)

// initSchema initializes the database schema for cooler telemetry
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS telemetry (
            timestamp INTEGER PRIMARY KEY,
            coolant_temp INTEGER,
            fan_speed INTEGER,
            pump_speed INTEGER,
            fan_duty INTEGER,
            pump_duty INTEGER,
            firmware_version INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInit, err)
	}

	return nil
}
