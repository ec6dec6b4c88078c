package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/service"
)

type MemberHandler struct {
	service *service.MemberService
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// JoinGuild handles PUT /api/v1/guilds/:id/members/@me.
func (h *MemberHandler) JoinGuild(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	member, err := h.service.JoinGuild(c.Request().Context(), guildID, auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, member)
}

// LeaveGuild handles DELETE /api/v1/guilds/:id/members/@me.
func (h *MemberHandler) LeaveGuild(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	if err := h.service.LeaveGuild(c.Request().Context(), guildID, auth.GetUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMembers handles GET /api/v1/guilds/:id/members.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	members, err := h.service.ListMembers(c.Request().Context(), guildID, limit, offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// KickMember handles DELETE /api/v1/guilds/:id/members/:user_id.
func (h *MemberHandler) KickMember(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	if err := h.service.KickMember(c.Request().Context(), guildID, userID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type banRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// BanMember handles PUT /api/v1/guilds/:id/bans/:user_id.
func (h *MemberHandler) BanMember(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	var req banRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.BanMember(c.Request().Context(), guildID, userID, req.Reason); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnbanMember handles DELETE /api/v1/guilds/:id/bans/:user_id.
func (h *MemberHandler) UnbanMember(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	if err := h.service.UnbanMember(c.Request().Context(), guildID, userID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBans handles GET /api/v1/guilds/:id/bans.
func (h *MemberHandler) ListBans(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	bans, err := h.service.ListBans(c.Request().Context(), guildID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bans)
}
