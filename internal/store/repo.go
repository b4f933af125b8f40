package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"vaani/internal/transcript"
)

var (
	ErrNotFound      = errors.New("transcription not found")
	ErrDuplicateHash = errors.New("transcription with identical content already exists")
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		insert into transcriptions (id, name, blake3_hash, status, language, media_path, duration_ms, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Name, rec.Hash, rec.Status, rec.Language, rec.MediaPath, rec.DurationMs,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateHash
	}
	if err != nil {
		return fmt.Errorf("persist transcription: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (r *Repo) GetByID(ctx context.Context, id string) (Record, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *Repo) GetByHash(ctx context.Context, hash string) (Record, error) {
	return r.getWhere(ctx, "blake3_hash = $1", hash)
}

func (r *Repo) getWhere(ctx context.Context, where string, arg any) (Record, error) {
	var (
		rec       Record
		createdAt string
	)

	err := r.db.QueryRowContext(ctx, `
		select id, name, blake3_hash, status, language, media_path, duration_ms, error, created_at
		from transcriptions where `+where, arg).
		Scan(&rec.ID, &rec.Name, &rec.Hash, &rec.Status, &rec.Language, &rec.MediaPath,
			&rec.DurationMs, &rec.Error, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query transcription: %w", err)
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

func (r *Repo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		select id, name, blake3_hash, status, language, media_path, duration_ms, error, created_at
		from transcriptions
		order by created_at desc, id desc
		limit $1 offset $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec       Record
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Hash, &rec.Status, &rec.Language,
			&rec.MediaPath, &rec.DurationMs, &rec.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcription row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, id, status, "")
}

func (r *Repo) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.update(ctx, id, StatusFailed, errMsg)
}

func (r *Repo) update(ctx context.Context, id, status, errMsg string) error {
	res, err := r.db.ExecContext(ctx,
		"update transcriptions set status = $1, error = $2 where id = $3",
		status, errMsg, id)
	if err != nil {
		return fmt.Errorf("update transcription status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveResult stores the filtered segments and flips the record to
// completed in one transaction.
func (r *Repo) SaveResult(ctx context.Context, id string, result transcript.Result, durationMs int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save result: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, seg := range result.Segments {
		if _, err := tx.ExecContext(ctx, `
			insert into segments (transcription_id, seq, start_ms, end_ms, text, no_speech_prob)
			values ($1, $2, $3, $4, $5, $6)`,
			id, seg.Index, seg.StartMs, seg.EndMs, seg.Text, seg.NoSpeechProb); err != nil {
			return fmt.Errorf("insert segment %d: %w", seg.Index, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		update transcriptions
		set status = $1, language = $2, duration_ms = $3, error = ''
		where id = $4`,
		StatusCompleted, result.Language, durationMs, id); err != nil {
		return fmt.Errorf("complete transcription: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save result: commit: %w", err)
	}
	return nil
}

// Result loads the stored segments back into a transcript.
func (r *Repo) Result(ctx context.Context, id string) (transcript.Result, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return transcript.Result{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		select seq, start_ms, end_ms, text, no_speech_prob
		from segments where transcription_id = $1 order by seq`, id)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	result := transcript.Result{Language: rec.Language}
	for rows.Next() {
		var seg transcript.Segment
		if err := rows.Scan(&seg.Index, &seg.StartMs, &seg.EndMs, &seg.Text, &seg.NoSpeechProb); err != nil {
			return transcript.Result{}, fmt.Errorf("scan segment row: %w", err)
		}
		result.Segments = append(result.Segments, seg)
	}

	return result, rows.Err()
}
