package repository

import (
	"context"
	"fmt"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

type sqliteChannelRepo struct {
	db database.TxQuerier
}

// NewSQLiteChannelRepo, SQLite tabanlı ChannelRepository oluşturur.
func NewSQLiteChannelRepo(db database.TxQuerier) ChannelRepository {
	return &sqliteChannelRepo{db: db}
}

func (r *sqliteChannelRepo) Upsert(ctx context.Context, channel *models.Channel) error {
	query := `
		INSERT INTO channels (id, guild_id, kind, parent_id, name, position, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			guild_id = excluded.guild_id,
			kind = excluded.kind,
			parent_id = excluded.parent_id,
			name = excluded.name,
			position = excluded.position,
			owner_id = excluded.owner_id`

	_, err := r.db.ExecContext(ctx, query,
		channel.ID, nullableID(channel.GuildID), channel.Kind, nullableID(channel.ParentID),
		channel.Name, channel.Position, nullableID(channel.OwnerID),
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, channel.GuildID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM channel_recipients WHERE channel_id = ?`, channel.ID); err != nil {
		return fmt.Errorf("failed to clear channel recipients: %w", err)
	}

	argSets := make([][]any, 0, len(channel.Recipients))
	for _, userID := range channel.Recipients {
		argSets = append(argSets, []any{channel.ID, userID})
	}
	if err := execAll(ctx, r.db,
		`INSERT OR IGNORE INTO channel_recipients (channel_id, user_id) VALUES (?, ?)`, argSets,
	); err != nil {
		return fmt.Errorf("failed to insert channel recipient: %w", err)
	}

	return nil
}

func (r *sqliteChannelRepo) Delete(ctx context.Context, id models.Snowflake) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if err := requireAffected(result, "channel "+id.String()); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE parent_id = ? AND kind IN (?, ?, ?)`,
		id, models.ChannelKindAnnouncementThread, models.ChannelKindPublicThread, models.ChannelKindPrivateThread,
	); err != nil {
		return fmt.Errorf("failed to delete child threads: %w", err)
	}
	return nil
}

func (r *sqliteChannelRepo) GetAll(ctx context.Context) ([]models.Channel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, guild_id, kind, parent_id, name, position, owner_id
		FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	index := make(map[models.Snowflake]int)
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(
			&ch.ID, &ch.GuildID, &ch.Kind, &ch.ParentID, &ch.Name, &ch.Position, &ch.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		index[ch.ID] = len(channels)
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	recipients, err := r.db.QueryContext(ctx, `SELECT channel_id, user_id FROM channel_recipients ORDER BY channel_id, user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel recipients: %w", err)
	}
	defer recipients.Close()

	for recipients.Next() {
		var channelID, userID models.Snowflake
		if err := recipients.Scan(&channelID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan recipient row: %w", err)
		}
		if i, ok := index[channelID]; ok {
			channels[i].Recipients = append(channels[i].Recipients, userID)
		}
	}
	if err := recipients.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipient rows: %w", err)
	}

	return channels, nil
}
