package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/cache"
	"github.com/avelinov/parley/internal/permissions"
	"github.com/avelinov/parley/internal/service"
)

// Dependencies holds the handlers and middleware inputs for route wiring.
type Dependencies struct {
	Auth    *AuthHandler
	Guilds  *GuildHandler
	Members *MemberHandler
	Roles   *RoleHandler

	Permissions  *service.PermissionService
	TokenService *auth.TokenService
	Cache        *cache.Client
}

// SetupRouter registers all routes.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")

	// Auth routes: no token required, stricter rate limit.
	authGroup := v1.Group("/auth",
		RateLimitMiddleware(deps.Cache, 5, time.Minute),
	)
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/refresh", deps.Auth.Refresh)

	protected := v1.Group("",
		deps.TokenService.Middleware(),
		RateLimitMiddleware(deps.Cache, 50, time.Minute),
	)

	protected.POST("/auth/logout", deps.Auth.Logout)

	// Guilds and channels
	protected.POST("/guilds", deps.Guilds.CreateGuild)
	protected.GET("/guilds/:id", deps.Guilds.GetGuild)
	protected.DELETE("/guilds/:id", deps.Guilds.DeleteGuild)
	protected.GET("/users/@me/guilds", deps.Guilds.ListMyGuilds)
	protected.GET("/guilds/:id/channels", deps.Guilds.ListChannels)
	protected.POST("/guilds/:id/channels", deps.Guilds.CreateChannel,
		RequireGuildPermission(deps.Permissions, permissions.PermManageChannels))

	// Membership
	protected.PUT("/guilds/:id/members/@me", deps.Members.JoinGuild)
	protected.DELETE("/guilds/:id/members/@me", deps.Members.LeaveGuild)
	protected.GET("/guilds/:id/members", deps.Members.ListMembers)
	protected.DELETE("/guilds/:id/members/:user_id", deps.Members.KickMember,
		RequireGuildPermission(deps.Permissions, permissions.PermKickMembers))
	protected.GET("/guilds/:id/bans", deps.Members.ListBans,
		RequireGuildPermission(deps.Permissions, permissions.PermBanMembers))
	protected.PUT("/guilds/:id/bans/:user_id", deps.Members.BanMember,
		RequireGuildPermission(deps.Permissions, permissions.PermBanMembers))
	protected.DELETE("/guilds/:id/bans/:user_id", deps.Members.UnbanMember,
		RequireGuildPermission(deps.Permissions, permissions.PermBanMembers))

	// Roles
	manageRoles := RequireGuildPermission(deps.Permissions, permissions.PermManageRoles)
	protected.GET("/guilds/:id/roles", deps.Roles.ListRoles)
	protected.POST("/guilds/:id/roles", deps.Roles.CreateRole, manageRoles)
	protected.PATCH("/guilds/:id/roles", deps.Roles.ReorderRoles, manageRoles)
	protected.PATCH("/guilds/:id/roles/:role_id", deps.Roles.UpdateRole, manageRoles)
	protected.DELETE("/guilds/:id/roles/:role_id", deps.Roles.DeleteRole, manageRoles)
	protected.GET("/guilds/:id/members/:user_id/roles", deps.Roles.GetMemberRoles)
	protected.PUT("/guilds/:id/members/:user_id/roles/:role_id", deps.Roles.AssignRole, manageRoles)
	protected.DELETE("/guilds/:id/members/:user_id/roles/:role_id", deps.Roles.RemoveRole, manageRoles)

	// Channel permission overwrites
	protected.GET("/channels/:id/permissions/@me", deps.Roles.GetMyPermissions)
	protected.PUT("/channels/:id/permissions/:target_id", deps.Roles.SetChannelOverwrite,
		RequireChannelPermission(deps.Permissions, permissions.PermManageRoles))
	protected.DELETE("/channels/:id/permissions/:target_id", deps.Roles.DeleteChannelOverwrite,
		RequireChannelPermission(deps.Permissions, permissions.PermManageRoles))
}
