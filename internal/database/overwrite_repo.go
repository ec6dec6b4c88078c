package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelinov/parley/internal/models"
)

type overwriteRepo struct {
	pool *pgxpool.Pool
}

func NewChannelOverwriteRepository(pool *pgxpool.Pool) ChannelOverwriteRepository {
	return &overwriteRepo{pool: pool}
}

func (r *overwriteRepo) Upsert(ctx context.Context, o *models.ChannelOverwrite) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channel_overwrites (channel_id, target_id, target_type, allow_perms, deny_perms)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (channel_id, target_id)
		 DO UPDATE SET target_type = EXCLUDED.target_type,
		               allow_perms = EXCLUDED.allow_perms,
		               deny_perms  = EXCLUDED.deny_perms`,
		o.ChannelID, o.TargetID, o.TargetType, o.Allow, o.Deny,
	)
	return err
}

func (r *overwriteRepo) Get(ctx context.Context, channelID, targetID int64) (*models.ChannelOverwrite, error) {
	o := &models.ChannelOverwrite{}
	err := r.pool.QueryRow(ctx,
		`SELECT channel_id, target_id, target_type, allow_perms, deny_perms
		 FROM channel_overwrites WHERE channel_id = $1 AND target_id = $2`,
		channelID, targetID,
	).Scan(&o.ChannelID, &o.TargetID, &o.TargetType, &o.Allow, &o.Deny)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *overwriteRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelOverwrite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT channel_id, target_id, target_type, allow_perms, deny_perms
		 FROM channel_overwrites WHERE channel_id = $1`, channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overwrites []models.ChannelOverwrite
	for rows.Next() {
		var o models.ChannelOverwrite
		if err := rows.Scan(&o.ChannelID, &o.TargetID, &o.TargetType, &o.Allow, &o.Deny); err != nil {
			return nil, err
		}
		overwrites = append(overwrites, o)
	}
	return overwrites, rows.Err()
}

func (r *overwriteRepo) Delete(ctx context.Context, channelID, targetID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM channel_overwrites WHERE channel_id = $1 AND target_id = $2`,
		channelID, targetID,
	)
	return err
}
