package repository

import (
	"context"
	"fmt"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

type sqliteRoleRepo struct {
	db database.TxQuerier
}

// NewSQLiteRoleRepo, SQLite tabanlı RoleRepository oluşturur.
func NewSQLiteRoleRepo(db database.TxQuerier) RoleRepository {
	return &sqliteRoleRepo{db: db}
}

func (r *sqliteRoleRepo) Upsert(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, guild_id, name, color, position, permissions, managed, mentionable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			position = excluded.position,
			permissions = excluded.permissions,
			managed = excluded.managed,
			mentionable = excluded.mentionable`

	_, err := r.db.ExecContext(ctx, query,
		role.ID, role.GuildID, role.Name, role.Color, role.Position,
		role.Permissions, role.Managed, role.Mentionable,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, role.GuildID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert role: %w", err)
	}
	return nil
}

func (r *sqliteRoleRepo) Delete(ctx context.Context, guildID, roleID models.Snowflake) error {
	// Önce rolün overwrite'ları: target_id FK olmadığı için CASCADE çalışmaz
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM channel_overwrites
		WHERE target_id = ? AND target_type = ?
		  AND channel_id IN (SELECT id FROM channels WHERE guild_id = ?)`,
		roleID, models.OverwriteTargetRole, guildID,
	); err != nil {
		return fmt.Errorf("failed to delete role overwrites: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = ? AND guild_id = ?`, roleID, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return requireAffected(result, "role "+roleID.String())
}

func (r *sqliteRoleRepo) GetAll(ctx context.Context) ([]models.Role, error) {
	query := `
		SELECT id, guild_id, name, color, position, permissions, managed, mentionable
		FROM roles ORDER BY guild_id, position DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(
			&role.ID, &role.GuildID, &role.Name, &role.Color, &role.Position,
			&role.Permissions, &role.Managed, &role.Mentionable,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}
	return roles, nil
}
