package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avelinov/parley/internal/api"
	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/cache"
	"github.com/avelinov/parley/internal/config"
	"github.com/avelinov/parley/internal/database"
	"github.com/avelinov/parley/internal/events"
	"github.com/avelinov/parley/internal/service"
	"github.com/avelinov/parley/internal/snowflake"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		logger.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	sf, err := snowflake.NewGenerator(cfg.SnowflakeNode)
	if err != nil {
		logger.Error("snowflake init failed", "error", err)
		os.Exit(1)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	guilds := database.NewGuildRepository(pool)
	channels := database.NewChannelRepository(pool)
	roles := database.NewRoleRepository(pool)
	members := database.NewMemberRepository(pool)
	bans := database.NewBanRepository(pool)
	overwrites := database.NewChannelOverwriteRepository(pool)

	// --- Services ---

	permCache := cache.NewPermissionCache(rdb, cfg.PermCacheTTL)
	bus := events.NewRedisBus(rdb.Redis())

	roleSvc := service.NewRoleService(guilds, roles, members, channels, overwrites, sf)
	permSvc := service.NewPermissionService(roleSvc, permCache, bus, logger)
	guildSvc := service.NewGuildService(guilds, channels, permSvc, sf)
	memberSvc := service.NewMemberService(guilds, members, bans, permSvc)
	authSvc := service.NewAuthService(users, tokenSvc, rdb, sf)

	// Apply invalidations published by other replicas.
	invCtx, stopInvalidator := context.WithCancel(ctx)
	defer stopInvalidator()
	go func() {
		if err := events.RunInvalidator(invCtx, bus, permCache, logger); err != nil && invCtx.Err() == nil {
			logger.Error("invalidator stopped", "error", err)
		}
	}()

	// --- HTTP ---

	deps := &api.Dependencies{
		Auth:         api.NewAuthHandler(authSvc),
		Guilds:       api.NewGuildHandler(guildSvc),
		Members:      api.NewMemberHandler(memberSvc),
		Roles:        api.NewRoleHandler(permSvc),
		Permissions:  permSvc,
		TokenService: tokenSvc,
		Cache:        rdb,
	}

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("parley starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	logger.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
