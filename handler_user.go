package dlcf_library

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"github.com/IsraelDcoder/Dlcf-library/response"
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
)

// -------------------- user / auth endpoints --------------------

// GinHandleUserRegister registers an account
// @Summary Register
// @Description Create a student account with name, email and password
// @Tags user
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "registration fields"
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Failure 400 {object} response.Response "bad parameter"
// @Router /user/register [post]
func (c *LibraryEngine) GinHandleUserRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	user, err := c.UserService.Register(req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}

// GinHandleUserLogin logs in and returns a session token
// @Summary Login
// @Tags user
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "credentials"
// @Success 200 {object} response.Response{data=service.LoginResp}
// @Failure 401 {object} response.Response "bad credentials"
// @Router /user/login [post]
func (c *LibraryEngine) GinHandleUserLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := c.UserService.Login(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodePasswordError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleUserLogout revokes the current session token
// @Summary Logout
// @Tags user
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /user/logout [post]
func (c *LibraryEngine) GinHandleUserLogout(ctx *gin.Context) {
	token, _ := ctx.Get("token")
	tokenStr, _ := token.(string)
	if strings.TrimSpace(tokenStr) == "" {
		ctx.JSON(http.StatusOK, response.Success(nil))
		return
	}
	if err := c.AuthService.RevokeToken(ctx.Request.Context(), tokenStr); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleGetUserInfo returns the caller's profile
// @Summary My profile
// @Tags user
// @Produce json
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Security BearerAuth
// @Router /user/info [get]
func (c *LibraryEngine) GinHandleGetUserInfo(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	user, err := c.UserService.GetUser(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}

// GinHandleUpdateUserInfo updates profile fields
// @Summary Update profile
// @Tags user
// @Accept json
// @Produce json
// @Param req body service.UpdateUserReq true "fields to update (nil = keep)"
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Security BearerAuth
// @Router /user/update [post]
func (c *LibraryEngine) GinHandleUpdateUserInfo(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.UpdateUserReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	user, err := c.UserService.UpdateUser(uid, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}

// GinHandleUpdateUserPassword sets a new password
// @Summary Change password
// @Tags user
// @Accept json
// @Produce json
// @Param req body object true "new_password"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /user/password [post]
func (c *LibraryEngine) GinHandleUpdateUserPassword(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if err := c.UserService.UpdatePassword(uid, req.NewPassword); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// -------------------- admin endpoints --------------------

// GinHandleListUsers pages through accounts
// @Summary List users (admin)
// @Tags admin
// @Produce json
// @Param page query int false "page (default 1)"
// @Param per_page query int false "page size (default 20)"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Security BearerAuth
// @Router /admin/users [get]
func (c *LibraryEngine) GinHandleListUsers(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if !c.requireSiteAdmin(ctx, uid) {
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("per_page", "20"))

	users, total, err := c.UserService.ListUsers(page, perPage)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"items": users,
		"total": total,
	}))
}

// GinHandleSetSiteRole changes a user's site role
// @Summary Set site role (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param req body object true "user_id, role (student/teacher/admin)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not an admin"
// @Security BearerAuth
// @Router /admin/users/role [post]
func (c *LibraryEngine) GinHandleSetSiteRole(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		UserID uint64 `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if err := c.UserService.SetSiteRole(uid, req.UserID, req.Role); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleSetUserActive activates/deactivates an account
// @Summary Set account active flag (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param req body object true "user_id, active"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not an admin"
// @Security BearerAuth
// @Router /admin/users/active [post]
func (c *LibraryEngine) GinHandleSetUserActive(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		UserID uint64 `json:"user_id"`
		Active *bool  `json:"active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Active == nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "user_id and active are required"))
		return
	}
	if err := c.UserService.SetActive(ctx.Request.Context(), uid, req.UserID, *req.Active); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleRecentActivity returns the newest audit rows
// @Summary Recent activity (admin)
// @Tags admin
// @Produce json
// @Param limit query int false "rows (default 100)"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /admin/activity [get]
func (c *LibraryEngine) GinHandleRecentActivity(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if !c.requireSiteAdmin(ctx, uid) {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	entries, err := c.ActivityService.Recent(limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(entries))
}

// GinHandleUserHistory returns the caller's own activity trail
// @Summary My activity history
// @Tags user
// @Produce json
// @Param limit query int false "rows (default 50)"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /user/history [get]
func (c *LibraryEngine) GinHandleUserHistory(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	entries, err := c.ActivityService.ForUser(uid, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(entries))
}

// requireSiteAdmin writes a 403 and returns false unless the user holds the
// site admin role.
func (c *LibraryEngine) requireSiteAdmin(ctx *gin.Context, userID uint64) bool {
	user, err := c.UserService.GetUser(userID)
	if err != nil || !user.Role.AtLeast(models.RoleAdmin) {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "admin only"))
		return false
	}
	return true
}
