package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func Connect(connStr string) error {
	if connStr == "" {
		return errors.New("DATABASE_URL is not set")
	}

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	return DB.Ping()
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS app_user (
	id     BIGSERIAL PRIMARY KEY,
	name   VARCHAR(50) NOT NULL,
	avatar VARCHAR(200) NOT NULL DEFAULT '/static/avatars/default.png'
);

CREATE TABLE IF NOT EXISTS anniversary (
	id    BIGSERIAL PRIMARY KEY,
	title VARCHAR(100) NOT NULL,
	date  DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS moment (
	id        BIGSERIAL PRIMARY KEY,
	content   TEXT NOT NULL,
	timestamp TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc'),
	user_id   BIGINT NOT NULL REFERENCES app_user(id)
);

CREATE INDEX IF NOT EXISTS moment_timestamp_idx ON moment (timestamp);

CREATE TABLE IF NOT EXISTS love_one_day_report (
	id             BIGSERIAL PRIMARY KEY,
	report_date    DATE NOT NULL UNIQUE,
	content        TEXT NOT NULL,
	broadcast_type VARCHAR(32) NOT NULL
		CHECK (broadcast_type IN ('anniversary', 'historical_moments', 'historical_events')),
	audio_url      TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_pushed      BOOLEAN NOT NULL DEFAULT FALSE
);
`

// Migrate creates the tables the broadcast reads and writes.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
