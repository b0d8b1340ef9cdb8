package dlcf_library

import (
	"net/http"
	"strconv"

	"github.com/IsraelDcoder/Dlcf-library/response"
	"github.com/gin-gonic/gin"
)

// -------------------- notification endpoints --------------------

// GinHandleListNotifications lists the caller's notifications
// @Summary List notifications
// @Tags notification
// @Produce json
// @Param limit query int false "max items (default 50, max 100)"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.items"
// @Security BearerAuth
// @Router /notification/list [get]
func (c *LibraryEngine) GinHandleListNotifications(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	items, err := c.NotificationService.List(uid, limit)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"items": items}))
}

// GinHandleMarkNotificationRead marks a single notification as read
// @Summary Mark notification read
// @Tags notification
// @Produce json
// @Param id path uint64 true "notification id"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /notification/{id}/read [post]
func (c *LibraryEngine) GinHandleMarkNotificationRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.NotificationService.MarkRead(uid, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type BroadcastNotificationReq struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// GinHandleBroadcastNotification sends a site-wide announcement (admin only)
// @Summary Broadcast announcement
// @Tags notification
// @Accept json
// @Produce json
// @Param req body BroadcastNotificationReq true "announcement"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.id"
// @Security BearerAuth
// @Router /notification/broadcast [post]
func (c *LibraryEngine) GinHandleBroadcastNotification(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req BroadcastNotificationReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	n, err := c.NotificationService.Broadcast(uid, req.Title, req.Message)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"id": n.ID}))
}
