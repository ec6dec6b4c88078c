package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelinov/parley/internal/models"
)

type guildRepo struct {
	pool *pgxpool.Pool
}

func NewGuildRepository(pool *pgxpool.Pool) GuildRepository {
	return &guildRepo{pool: pool}
}

func (r *guildRepo) CreateWithDefaults(ctx context.Context, guild *models.Guild, everyone *models.Role, channel *models.Channel, owner *models.Member) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning guild create tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO guilds (id, name, owner_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		guild.ID, guild.Name, guild.OwnerID, guild.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO roles (id, guild_id, name, color, permissions, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		everyone.ID, everyone.GuildID, everyone.Name, everyone.Color, everyone.Permissions, everyone.Position, everyone.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO channels (id, guild_id, name, type, position, topic)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		channel.ID, channel.GuildID, channel.Name, channel.Type, channel.Position, channel.Topic,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO members (guild_id, user_id, joined_at)
		 VALUES ($1, $2, $3)`,
		owner.GuildID, owner.UserID, owner.JoinedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *guildRepo) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	g := &models.Guild{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at
		 FROM guilds WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *guildRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM guilds WHERE id = $1`, id)
	return err
}

func (r *guildRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Guild, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.name, g.owner_id, g.created_at
		 FROM guilds g
		 INNER JOIN members m ON m.guild_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guilds []models.Guild
	for rows.Next() {
		var g models.Guild
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt); err != nil {
			return nil, err
		}
		guilds = append(guilds, g)
	}
	return guilds, rows.Err()
}
