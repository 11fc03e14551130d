package repository

import (
	"context"
	"fmt"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// sqliteMemberRepo, MemberRepository'nin SQLite implementasyonu.
//
// guild_members: (guild_id, user_id) → nick, joined_at
// member_roles:  (guild_id, user_id, role_id): @everyone burada tutulmaz
type sqliteMemberRepo struct {
	db database.TxQuerier
}

// NewSQLiteMemberRepo, SQLite tabanlı MemberRepository oluşturur.
func NewSQLiteMemberRepo(db database.TxQuerier) MemberRepository {
	return &sqliteMemberRepo{db: db}
}

func (r *sqliteMemberRepo) Upsert(ctx context.Context, profile *models.GuildProfile) error {
	query := `
		INSERT INTO guild_members (guild_id, user_id, nick, joined_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			nick = excluded.nick,
			joined_at = excluded.joined_at`

	_, err := r.db.ExecContext(ctx, query, profile.GuildID, profile.UserID, profile.Nick, profile.JoinedAt.UTC())
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: guild %s or user %s", pkg.ErrNotFound, profile.GuildID, profile.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert guild member: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM member_roles WHERE guild_id = ? AND user_id = ?`, profile.GuildID, profile.UserID,
	); err != nil {
		return fmt.Errorf("failed to clear member roles: %w", err)
	}

	argSets := make([][]any, 0, len(profile.RoleIDs))
	for _, roleID := range profile.RoleIDs {
		argSets = append(argSets, []any{profile.GuildID, profile.UserID, roleID})
	}
	err = execAll(ctx, r.db, `INSERT INTO member_roles (guild_id, user_id, role_id) VALUES (?, ?, ?)`, argSets)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: member references an unknown role", pkg.ErrBadRequest)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member role: %w", err)
	}

	return nil
}

func (r *sqliteMemberRepo) Delete(ctx context.Context, guildID, userID models.Snowflake) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM guild_members WHERE guild_id = ? AND user_id = ?`, guildID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete guild member: %w", err)
	}
	return requireAffected(result, "guild member")
}

func (r *sqliteMemberRepo) DeleteAllByUser(ctx context.Context, userID models.Snowflake) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM guild_members WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user memberships: %w", err)
	}
	return nil
}

func (r *sqliteMemberRepo) GetAll(ctx context.Context) ([]models.GuildProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT guild_id, user_id, nick, joined_at
		FROM guild_members ORDER BY guild_id, user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild members: %w", err)
	}
	defer rows.Close()

	type key struct{ guild, user models.Snowflake }
	var profiles []models.GuildProfile
	index := make(map[key]int)

	for rows.Next() {
		var p models.GuildProfile
		if err := rows.Scan(&p.GuildID, &p.UserID, &p.Nick, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild member row: %w", err)
		}
		index[key{p.GuildID, p.UserID}] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guild member rows: %w", err)
	}

	roleRows, err := r.db.QueryContext(ctx, `SELECT guild_id, user_id, role_id FROM member_roles ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}
	defer roleRows.Close()

	for roleRows.Next() {
		var guildID, userID, roleID models.Snowflake
		if err := roleRows.Scan(&guildID, &userID, &roleID); err != nil {
			return nil, fmt.Errorf("failed to scan member role row: %w", err)
		}
		if i, ok := index[key{guildID, userID}]; ok {
			profiles[i].RoleIDs = append(profiles[i].RoleIDs, roleID)
		}
	}
	if err := roleRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member role rows: %w", err)
	}

	return profiles, nil
}
