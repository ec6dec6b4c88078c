package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/service"
)

type GuildHandler struct {
	service *service.GuildService
}

func NewGuildHandler(svc *service.GuildService) *GuildHandler {
	return &GuildHandler{service: svc}
}

type createGuildRequest struct {
	Name string `json:"name"`
}

// CreateGuild handles POST /api/v1/guilds.
func (h *GuildHandler) CreateGuild(c echo.Context) error {
	var req createGuildRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	guild, err := h.service.CreateGuild(c.Request().Context(), auth.GetUserID(c), req.Name)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, guild)
}

// GetGuild handles GET /api/v1/guilds/:id.
func (h *GuildHandler) GetGuild(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	guild, err := h.service.GetGuild(c.Request().Context(), guildID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, guild)
}

// ListMyGuilds handles GET /api/v1/users/@me/guilds.
func (h *GuildHandler) ListMyGuilds(c echo.Context) error {
	guilds, err := h.service.ListUserGuilds(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, guilds)
}

// DeleteGuild handles DELETE /api/v1/guilds/:id.
func (h *GuildHandler) DeleteGuild(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	if err := h.service.DeleteGuild(c.Request().Context(), auth.GetUserID(c), guildID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListChannels handles GET /api/v1/guilds/:id/channels.
func (h *GuildHandler) ListChannels(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	channels, err := h.service.ListChannels(c.Request().Context(), guildID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, channels)
}

type createChannelRequest struct {
	Name string             `json:"name"`
	Type models.ChannelType `json:"type"`
}

// CreateChannel handles POST /api/v1/guilds/:id/channels.
func (h *GuildHandler) CreateChannel(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	channel, err := h.service.CreateChannel(c.Request().Context(), guildID, req.Name, req.Type)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, channel)
}
