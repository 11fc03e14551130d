package repository

import (
	"context"
	"fmt"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
)

type sqliteGuildRepo struct {
	db database.TxQuerier
}

// NewSQLiteGuildRepo, SQLite tabanlı GuildRepository oluşturur.
func NewSQLiteGuildRepo(db database.TxQuerier) GuildRepository {
	return &sqliteGuildRepo{db: db}
}

func (r *sqliteGuildRepo) Upsert(ctx context.Context, guild *models.Guild) error {
	query := `
		INSERT INTO guilds (id, name, owner_id) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, guild.ID, guild.Name, guild.OwnerID); err != nil {
		return fmt.Errorf("failed to upsert guild: %w", err)
	}
	return nil
}

func (r *sqliteGuildRepo) Delete(ctx context.Context, id models.Snowflake) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM guilds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete guild: %w", err)
	}
	return requireAffected(result, "guild "+id.String())
}

func (r *sqliteGuildRepo) GetAll(ctx context.Context) ([]models.Guild, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, owner_id FROM guilds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get guilds: %w", err)
	}
	defer rows.Close()

	var guilds []models.Guild
	for rows.Next() {
		var g models.Guild
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan guild row: %w", err)
		}
		guilds = append(guilds, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guild rows: %w", err)
	}
	return guilds, nil
}
