// Package outbox stores events in the same transaction as the state change
// that produced them and relays them to Kafka afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
)

type Record struct {
	ID        string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
}

type Repo struct{ DB *pgxpool.Pool }

// Append writes one record inside the caller's transaction.
func (r *Repo) Append(ctx context.Context, tx pgx.Tx, topic, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("outbox marshal: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (id, topic, msg_key, payload)
		VALUES ($1, $2, $3, $4)`, uuid.NewString(), topic, key, string(payload))
	return err
}

// Drain locks up to limit unpublished records, hands each to fn in creation
// order and marks the ones fn accepted. It stops at the first failure so
// per-key ordering is preserved.
func (r *Repo) Drain(ctx context.Context, limit int, fn func(context.Context, Record) error) (int, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, postgres.Translate(err, "outbox")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, topic, msg_key, payload, created_at FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return 0, postgres.Translate(err, "outbox")
	}
	var batch []Record
	for rows.Next() {
		var rec Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Topic, &rec.Key, &payload, &rec.CreatedAt); err != nil {
			rows.Close()
			return 0, postgres.Translate(err, "outbox")
		}
		rec.Payload = payload
		batch = append(batch, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, postgres.Translate(err, "outbox")
	}

	sent := make([]string, 0, len(batch))
	var sendErr error
	for _, rec := range batch {
		if sendErr = fn(ctx, rec); sendErr != nil {
			break
		}
		sent = append(sent, rec.ID)
	}

	if len(sent) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE outbox SET published_at=now() WHERE id = ANY($1::uuid[])`, sent); err != nil {
			return 0, postgres.Translate(err, "outbox")
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, postgres.Translate(err, "outbox")
	}
	return len(sent), sendErr
}
