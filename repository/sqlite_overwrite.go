package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// sqliteOverwriteRepo, OverwriteRepository'nin SQLite implementasyonu.
//
// channel_overwrites tablosu 001_init.sql'de tanımlı:
//
//	PRIMARY KEY (channel_id, target_id) → her kanal-hedef çifti için tek overwrite
//	target_type INTEGER → 0 = role, 1 = user
type sqliteOverwriteRepo struct {
	db database.TxQuerier
}

// NewSQLiteOverwriteRepo, SQLite tabanlı OverwriteRepository oluşturur.
func NewSQLiteOverwriteRepo(db database.TxQuerier) OverwriteRepository {
	return &sqliteOverwriteRepo{db: db}
}

func (r *sqliteOverwriteRepo) GetByChannel(ctx context.Context, channelID models.Snowflake) ([]models.PermissionOverwrite, error) {
	query := `
		SELECT target_id, target_type, allow, deny
		FROM channel_overwrites WHERE channel_id = ? ORDER BY target_type, target_id`

	rows, err := r.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel overwrites: %w", err)
	}
	defer rows.Close()

	overwrites := []models.PermissionOverwrite{}
	for rows.Next() {
		var o models.PermissionOverwrite
		if err := rows.Scan(&o.TargetID, &o.TargetType, &o.Allow, &o.Deny); err != nil {
			return nil, fmt.Errorf("failed to scan channel overwrite row: %w", err)
		}
		overwrites = append(overwrites, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel overwrite rows: %w", err)
	}
	return overwrites, nil
}

func (r *sqliteOverwriteRepo) GetAll(ctx context.Context) ([]models.ChannelOverwrite, error) {
	query := `SELECT channel_id, target_id, target_type, allow, deny FROM channel_overwrites`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get overwrites: %w", err)
	}
	defer rows.Close()

	var overwrites []models.ChannelOverwrite
	for rows.Next() {
		var o models.ChannelOverwrite
		if err := rows.Scan(&o.ChannelID, &o.TargetID, &o.TargetType, &o.Allow, &o.Deny); err != nil {
			return nil, fmt.Errorf("failed to scan overwrite row: %w", err)
		}
		overwrites = append(overwrites, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overwrite rows: %w", err)
	}
	return overwrites, nil
}

func (r *sqliteOverwriteRepo) Set(ctx context.Context, channelID models.Snowflake, overwrite *models.PermissionOverwrite) error {
	// ON CONFLICT ... DO UPDATE: INSERT OR REPLACE satırı silip yeniden yazar,
	// bu sadece belirtilen sütunları günceller.
	query := `
		INSERT INTO channel_overwrites (channel_id, target_id, target_type, allow, deny)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (channel_id, target_id) DO UPDATE SET
			target_type = excluded.target_type,
			allow = excluded.allow,
			deny = excluded.deny`

	_, err := r.db.ExecContext(ctx, query,
		channelID, overwrite.TargetID, overwrite.TargetType, overwrite.Allow, overwrite.Deny,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}
	if err != nil {
		return fmt.Errorf("failed to set channel overwrite: %w", err)
	}
	return nil
}

func (r *sqliteOverwriteRepo) Delete(ctx context.Context, channelID, targetID models.Snowflake) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM channel_overwrites WHERE channel_id = ? AND target_id = ?`, channelID, targetID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete channel overwrite: %w", err)
	}
	return requireAffected(result, "channel overwrite")
}

func (r *sqliteOverwriteRepo) ReplaceAll(ctx context.Context, channelID models.Snowflake, overwrites []models.PermissionOverwrite) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM channel_overwrites WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("failed to clear channel overwrites: %w", err)
	}

	for i := range overwrites {
		if err := r.Set(ctx, channelID, &overwrites[i]); err != nil {
			return err
		}
	}
	return nil
}

// compile-time kontrol: *sql.DB ve *sql.Tx TxQuerier'ı karşılar.
var (
	_ database.TxQuerier = (*sql.DB)(nil)
	_ database.TxQuerier = (*sql.Tx)(nil)
)
