package store

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"lukechampine.com/blake3"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Record struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Hash       string    `json:"blake3_hash"`
	Status     string    `json:"status"`
	Language   string    `json:"language"`
	MediaPath  string    `json:"-"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Open opens (and migrates) the sqlite database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`
	PRAGMA journal_mode  = WAL;
	PRAGMA synchronous   = NORMAL;
	PRAGMA foreign_keys  = ON;
	PRAGMA temp_store    = MEMORY;

	create table if not exists transcriptions (
		id          text primary key,
		name        text not null,
		blake3_hash text not null unique,
		status      text not null default 'pending',
		language    text not null default '',
		media_path  text not null default '',
		duration_ms integer not null default 0,
		error       text not null default '',
		created_at  text not null
	);

	create table if not exists segments (
		transcription_id text not null references transcriptions(id),
		seq              integer not null,
		start_ms         integer not null,
		end_ms           integer not null,
		text             text not null,
		no_speech_prob   real not null default 0,
		primary key (transcription_id, seq)
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite database: %w", err)
	}

	return db, nil
}

// HashReader computes the blake3 content hash used for upload dedupe.
func HashReader(r io.Reader) (string, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash media content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
