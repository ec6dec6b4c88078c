package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelinov/parley/internal/models"
)

type channelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepo{pool: pool}
}

func (r *channelRepo) Create(ctx context.Context, channel *models.Channel) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channels (id, guild_id, name, type, position, topic)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		channel.ID, channel.GuildID, channel.Name, channel.Type, channel.Position, channel.Topic,
	)
	return err
}

func (r *channelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	ch := &models.Channel{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, guild_id, name, type, position, topic
		 FROM channels WHERE id = $1`, id,
	).Scan(&ch.ID, &ch.GuildID, &ch.Name, &ch.Type, &ch.Position, &ch.Topic)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return ch, err
}

func (r *channelRepo) GetByGuildID(ctx context.Context, guildID int64) ([]models.Channel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, guild_id, name, type, position, topic
		 FROM channels WHERE guild_id = $1
		 ORDER BY position`, guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.GuildID, &ch.Name, &ch.Type, &ch.Position, &ch.Topic); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *channelRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}
