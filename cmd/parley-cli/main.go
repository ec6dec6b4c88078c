package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/permissions"
	"github.com/avelinov/parley/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		os.Exit(runMigrate())
	case "seed":
		os.Exit(runSeed())
	case "health":
		os.Exit(runHealth())
	case "version":
		fmt.Printf("parley-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: parley-cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations from the migrations/ directory")
	fmt.Println("  seed     Seed demo data (two users, a guild with roles and channels)")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  DATABASE_URL  PostgreSQL connection string (migrate, seed)")
	fmt.Println("  SERVER_URL    Server base URL for health (default: http://localhost:8080)")
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", upErr)
		return 1
	}

	v, dirty, _ := m.Version()
	if upErr == migrate.ErrNoChange {
		fmt.Printf("no new migrations (current version: %d)\n", v)
	} else {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	aliceHash, err := auth.HashPassword("password123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	bobHash, err := auth.HashPassword("password456")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}

	aliceID := sf.Generate().Int64()
	bobID := sf.Generate().Int64()
	guildID := sf.Generate().Int64()
	generalID := sf.Generate().Int64()
	modRoleID := sf.Generate().Int64()

	now := time.Now().UTC()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	fmt.Println("creating users...")
	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES ($1,$2,$3,$4), ($5,$6,$7,$8)`,
		aliceID, "alice", aliceHash, now,
		bobID, "bob", bobHash, now,
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating users: %v\n", err)
		return 1
	}

	fmt.Println("creating guild...")
	if _, err := tx.Exec(ctx,
		`INSERT INTO guilds (id, name, owner_id, created_at) VALUES ($1,$2,$3,$4)`,
		guildID, "Demo Server", aliceID, now,
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating guild: %v\n", err)
		return 1
	}

	// The @everyone role shares the guild's ID.
	fmt.Println("creating roles...")
	if _, err := tx.Exec(ctx,
		`INSERT INTO roles (id, guild_id, name, color, permissions, position, created_at)
		 VALUES ($1,$2,$3,0,$4,0,$5), ($6,$7,$8,$9,$10,1,$11)`,
		guildID, guildID, "@everyone", int64(permissions.DefaultEveryonePerms), now,
		modRoleID, guildID, "mods", 0x2ECC71,
		int64(permissions.DefaultEveryonePerms|permissions.PermManageMessages|permissions.PermKickMembers), now,
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating roles: %v\n", err)
		return 1
	}

	fmt.Println("creating channel...")
	if _, err := tx.Exec(ctx,
		`INSERT INTO channels (id, guild_id, name, type, position) VALUES ($1,$2,$3,0,0)`,
		generalID, guildID, "general",
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating channel: %v\n", err)
		return 1
	}

	fmt.Println("creating members...")
	if _, err := tx.Exec(ctx,
		`INSERT INTO members (guild_id, user_id, joined_at) VALUES ($1,$2,$3), ($4,$5,$6)`,
		guildID, aliceID, now,
		guildID, bobID, now,
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating members: %v\n", err)
		return 1
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO member_roles (guild_id, user_id, role_id) VALUES ($1,$2,$3)`,
		guildID, bobID, modRoleID,
	); err != nil {
		fmt.Fprintf(os.Stderr, "error: assigning role: %v\n", err)
		return 1
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing: %v\n", err)
		return 1
	}

	fmt.Printf("seeded: users alice/bob, guild %d, channel %d, role %d\n", guildID, generalID, modRoleID)
	return 0
}

func runHealth() int {
	base := envOr("SERVER_URL", "http://localhost:8080")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(base + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: server unreachable: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "error: unexpected status %d\n", resp.StatusCode)
		return 1
	}
	fmt.Println("ok")
	return 0
}
