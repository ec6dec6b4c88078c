package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/service"
)

// RoleHandler serves role, role-assignment and channel-overwrite endpoints.
// All writes go through the PermissionService so cached permissions are
// invalidated before the response is sent.
type RoleHandler struct {
	service *service.PermissionService
}

func NewRoleHandler(svc *service.PermissionService) *RoleHandler {
	return &RoleHandler{service: svc}
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Permissions int64  `json:"permissions,string"`
}

// CreateRole handles POST /api/v1/guilds/:id/roles.
func (h *RoleHandler) CreateRole(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	role, err := h.service.CreateRole(c.Request().Context(), guildID, req.Name, req.Permissions, req.Color)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, role)
}

// ListRoles handles GET /api/v1/guilds/:id/roles.
func (h *RoleHandler) ListRoles(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	roles, err := h.service.ListRoles(c.Request().Context(), guildID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}

type updateRoleRequest struct {
	Name        *string `json:"name,omitempty"`
	Color       *int    `json:"color,omitempty"`
	Permissions *int64  `json:"permissions,string,omitempty"`
}

// UpdateRole handles PATCH /api/v1/guilds/:id/roles/:role_id. The guild param
// scopes the lookup so the role must belong to the guild the caller was
// authorized against.
func (h *RoleHandler) UpdateRole(c echo.Context) error {
	guildID, roleID, ok := guildRoleParams(c)
	if !ok {
		return nil
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	role, err := h.service.UpdateRole(c.Request().Context(), guildID, roleID, req.Name, req.Permissions, req.Color)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// DeleteRole handles DELETE /api/v1/guilds/:id/roles/:role_id.
func (h *RoleHandler) DeleteRole(c echo.Context) error {
	guildID, roleID, ok := guildRoleParams(c)
	if !ok {
		return nil
	}

	if err := h.service.DeleteRole(c.Request().Context(), guildID, roleID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type reorderRolesRequest struct {
	Positions []service.RolePosition `json:"positions"`
}

// ReorderRoles handles PATCH /api/v1/guilds/:id/roles.
func (h *RoleHandler) ReorderRoles(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}

	var req reorderRolesRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.ReorderRoles(c.Request().Context(), guildID, req.Positions); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignRole handles PUT /api/v1/guilds/:id/members/:user_id/roles/:role_id.
func (h *RoleHandler) AssignRole(c echo.Context) error {
	guildID, userID, roleID, ok := memberRoleParams(c)
	if !ok {
		return nil
	}

	if err := h.service.AssignRole(c.Request().Context(), guildID, userID, roleID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveRole handles DELETE /api/v1/guilds/:id/members/:user_id/roles/:role_id.
func (h *RoleHandler) RemoveRole(c echo.Context) error {
	guildID, userID, roleID, ok := memberRoleParams(c)
	if !ok {
		return nil
	}

	if err := h.service.RemoveRole(c.Request().Context(), guildID, userID, roleID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetMemberRoles handles GET /api/v1/guilds/:id/members/:user_id/roles.
func (h *RoleHandler) GetMemberRoles(c echo.Context) error {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
	}
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	roles, err := h.service.GetMemberRoles(c.Request().Context(), guildID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}

type setOverwriteRequest struct {
	Type  models.OverwriteTarget `json:"type"`
	Allow int64                  `json:"allow,string"`
	Deny  int64                  `json:"deny,string"`
}

// SetChannelOverwrite handles PUT /api/v1/channels/:id/permissions/:target_id.
func (h *RoleHandler) SetChannelOverwrite(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}
	targetID, err := strconv.ParseInt(c.Param("target_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid target id")
	}

	var req setOverwriteRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	o, err := h.service.SetChannelOverwrite(c.Request().Context(), channelID, targetID, req.Type, req.Allow, req.Deny)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// DeleteChannelOverwrite handles DELETE /api/v1/channels/:id/permissions/:target_id.
func (h *RoleHandler) DeleteChannelOverwrite(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}
	targetID, err := strconv.ParseInt(c.Param("target_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid target id")
	}

	if err := h.service.DeleteChannelOverwrite(c.Request().Context(), channelID, targetID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type permissionsResponse struct {
	Permissions int64 `json:"permissions,string"`
}

// GetMyPermissions handles GET /api/v1/channels/:id/permissions/@me. It
// returns the caller's effective permission mask for the channel.
func (h *RoleHandler) GetMyPermissions(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	mask, err := h.service.GetPermissions(c.Request().Context(), auth.GetUserID(c), channelID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, permissionsResponse{Permissions: int64(mask)})
}

// guildRoleParams parses the :id and :role_id params. On a parse failure it
// writes the 400 response itself and reports false.
func guildRoleParams(c echo.Context) (guildID, roleID int64, ok bool) {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
		return 0, 0, false
	}
	roleID, err = strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		_ = errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
		return 0, 0, false
	}
	return guildID, roleID, true
}

// memberRoleParams parses the :id, :user_id and :role_id params. On a parse
// failure it writes the 400 response itself and reports false.
func memberRoleParams(c echo.Context) (guildID, userID, roleID int64, ok bool) {
	guildID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid guild id")
		return 0, 0, 0, false
	}
	userID, err = strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		_ = errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
		return 0, 0, 0, false
	}
	roleID, err = strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		_ = errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
		return 0, 0, 0, false
	}
	return guildID, userID, roleID, true
}
