package database

import (
	"context"
	"database/sql"
	"fmt"
)

const globalConfigName = "global"

// SQLWatermarkRepository persists the crawl watermark: the post_time boundary
// below which articles are considered already processed.
type SQLWatermarkRepository struct {
	db *DB
}

var _ WatermarkRepository = (*SQLWatermarkRepository)(nil)

func NewWatermarkRepository(db *DB) *SQLWatermarkRepository {
	return &SQLWatermarkRepository{db: db}
}

func (r *SQLWatermarkRepository) GetWatermark(ctx context.Context) (int64, error) {
	var timestamp int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_update_timestamp FROM configs WHERE config_name = ?`,
		globalConfigName).Scan(&timestamp)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get watermark: %w", err)
	}
	return timestamp, nil
}

func (r *SQLWatermarkRepository) SetWatermark(ctx context.Context, timestamp int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO configs (config_name, last_update_timestamp)
		VALUES (?, ?)
		ON CONFLICT (config_name) DO UPDATE SET last_update_timestamp = excluded.last_update_timestamp
	`, globalConfigName, timestamp)
	if err != nil {
		return fmt.Errorf("failed to set watermark: %w", err)
	}
	return nil
}
