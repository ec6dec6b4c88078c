package database

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/permissions"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique IDs across all tests in the package.
// Starts well above zero to avoid conflicts with any existing data.
var testIDCounter int64 = 500000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

func createTestUser(t *testing.T, repo UserRepository) *models.User {
	t.Helper()
	user := &models.User{
		ID:           nextID(),
		Username:     fmt.Sprintf("user-%d", nextID()),
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

// createTestGuild seeds a guild with its @everyone role, a #general channel
// and the owner's membership, mirroring what the guild service does.
func createTestGuild(t *testing.T, repo GuildRepository, ownerID int64) *models.Guild {
	t.Helper()
	now := time.Now().UTC()
	guild := &models.Guild{ID: nextID(), Name: "test guild", OwnerID: ownerID, CreatedAt: now}
	everyone := &models.Role{
		ID:          guild.ID,
		GuildID:     guild.ID,
		Name:        "@everyone",
		Permissions: int64(permissions.DefaultEveryonePerms),
		Position:    0,
		CreatedAt:   now,
	}
	channel := &models.Channel{ID: nextID(), GuildID: guild.ID, Name: "general", Type: models.ChannelTypeText}
	owner := &models.Member{GuildID: guild.ID, UserID: ownerID, JoinedAt: now}

	if err := repo.CreateWithDefaults(context.Background(), guild, everyone, channel, owner); err != nil {
		t.Fatalf("creating test guild: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), guild.ID) })
	return guild
}
