package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelinov/parley/internal/models"
)

type banRepo struct {
	pool *pgxpool.Pool
}

func NewBanRepository(pool *pgxpool.Pool) BanRepository {
	return &banRepo{pool: pool}
}

func (r *banRepo) Create(ctx context.Context, ban *models.Ban) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bans (guild_id, user_id, reason, banned_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (guild_id, user_id) DO UPDATE
		 SET reason = EXCLUDED.reason, banned_at = EXCLUDED.banned_at`,
		ban.GuildID, ban.UserID, ban.Reason, ban.BannedAt,
	)
	return err
}

func (r *banRepo) Get(ctx context.Context, guildID, userID int64) (*models.Ban, error) {
	b := &models.Ban{}
	err := r.pool.QueryRow(ctx,
		`SELECT guild_id, user_id, reason, banned_at
		 FROM bans WHERE guild_id = $1 AND user_id = $2`, guildID, userID,
	).Scan(&b.GuildID, &b.UserID, &b.Reason, &b.BannedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *banRepo) GetByGuildID(ctx context.Context, guildID int64) ([]models.Ban, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_id, user_id, reason, banned_at
		 FROM bans WHERE guild_id = $1
		 ORDER BY banned_at`, guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var b models.Ban
		if err := rows.Scan(&b.GuildID, &b.UserID, &b.Reason, &b.BannedAt); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}

func (r *banRepo) Delete(ctx context.Context, guildID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM bans WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID,
	)
	return err
}
