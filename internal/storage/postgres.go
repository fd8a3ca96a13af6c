// Package storage provides the persistence backends behind the event store:
// Postgres for hosted deployments and plain JSON files for local use. Both
// mirror whole per-account collections, matching the store's replace-all
// persistence contract.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agbizu/agbizu/internal/database"
	"github.com/agbizu/agbizu/internal/models"
)

// ErrLoadFailed wraps any failure to read persisted data back. Callers treat
// it as recoverable and fall back to an empty collection.
var ErrLoadFailed = errors.New("failed to load persisted events")

type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) LoadAll(ctx context.Context, accountID int64) ([]models.Event, error) {
	rows, err := p.db.Pool.Query(ctx,
		`SELECT id, title, description, date, time, category, recurrence, series_id, is_recurring,
		 created_at, updated_at
		 FROM events WHERE account_id = $1
		 ORDER BY date ASC, time ASC, id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Category,
			&e.Recurrence, &e.SeriesID, &e.IsRecurring, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return events, nil
}

// ReplaceAll swaps the account's whole collection inside one transaction so
// concurrent readers never observe a half-written state.
func (p *Postgres) ReplaceAll(ctx context.Context, accountID int64, events []models.Event) error {
	tx, err := p.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(
			`INSERT INTO events (account_id, id, title, description, date, time, category,
			 recurrence, series_id, is_recurring, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			accountID, e.ID, e.Title, e.Description, e.Date, e.Time, e.Category,
			e.Recurrence, e.SeriesID, e.IsRecurring, e.CreatedAt, e.UpdatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadScale returns the account's saved work schedule, or nil if none was
// ever saved.
func (p *Postgres) LoadScale(ctx context.Context, accountID int64) (*models.ScheduleDefinition, error) {
	var raw []byte
	err := p.db.Pool.QueryRow(ctx,
		`SELECT scale FROM user_scales WHERE account_id = $1`, accountID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var def models.ScheduleDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return &def, nil
}

func (p *Postgres) SaveScale(ctx context.Context, accountID int64, def models.ScheduleDefinition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode scale: %w", err)
	}
	_, err = p.db.Pool.Exec(ctx,
		`INSERT INTO user_scales (account_id, scale, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (account_id) DO UPDATE SET scale = EXCLUDED.scale, updated_at = NOW()`,
		accountID, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save scale: %w", err)
	}
	return nil
}

// Accounts lists every account id with stored events or a saved scale, for
// the daily summary scheduler.
func (p *Postgres) Accounts(ctx context.Context) ([]int64, error) {
	rows, err := p.db.Pool.Query(ctx,
		`SELECT account_id FROM events
		 UNION
		 SELECT account_id FROM user_scales
		 ORDER BY account_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
