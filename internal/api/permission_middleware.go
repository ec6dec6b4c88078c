package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/permissions"
	"github.com/avelinov/parley/internal/service"
)

// RequireGuildPermission gates a route on the caller's base permissions in
// the guild named by the ":id" param.
func RequireGuildPermission(perms *service.PermissionService, perm permissions.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
			}

			userID := auth.GetUserID(c)
			if err := perms.RequireGuildPermission(c.Request().Context(), userID, guildID, perm); err != nil {
				return mapServiceError(c, err)
			}
			return next(c)
		}
	}
}

// RequireChannelPermission gates a route on the caller's effective
// permissions in the channel named by the ":id" param, overwrites included.
func RequireChannelPermission(perms *service.PermissionService, perm permissions.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
			}

			userID := auth.GetUserID(c)
			if err := perms.RequireChannelPermission(c.Request().Context(), userID, channelID, perm); err != nil {
				return mapServiceError(c, err)
			}
			return next(c)
		}
	}
}
