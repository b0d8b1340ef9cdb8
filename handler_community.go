package dlcf_library

import (
	"net/http"
	"strconv"

	"github.com/IsraelDcoder/Dlcf-library/response"
	"github.com/gin-gonic/gin"
)

// -------------------- community endpoints --------------------

// GinHandleCreateCommunity creates a community
// @Summary Create community
// @Description Teacher or admin accounts only; the creator becomes its admin
// @Tags community
// @Accept json
// @Produce json
// @Param req body object true "name, description, is_private"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not a teacher"
// @Security BearerAuth
// @Router /community [post]
func (c *LibraryEngine) GinHandleCreateCommunity(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   *bool  `json:"is_private"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	community, err := c.CommunityService.Create(uid, req.Name, req.Description, isPrivate)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(community))
}

// GinHandleListCommunities lists all communities
// @Summary List communities
// @Tags community
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /community [get]
func (c *LibraryEngine) GinHandleListCommunities(ctx *gin.Context) {
	communities, err := c.CommunityService.List()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(communities))
}

// GinHandleMyCommunities lists the caller's communities with roles
// @Summary My communities
// @Tags community
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /community/mine [get]
func (c *LibraryEngine) GinHandleMyCommunities(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	communities, err := c.CommunityService.ForUser(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(communities))
}

// GinHandleJoinCommunity joins a public community
// @Summary Join community
// @Tags community
// @Produce json
// @Param id path uint64 true "community id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "community is private"
// @Security BearerAuth
// @Router /community/{id}/join [post]
func (c *LibraryEngine) GinHandleJoinCommunity(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CommunityService.Join(uid, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleLeaveCommunity leaves a community
// @Summary Leave community
// @Tags community
// @Produce json
// @Param id path uint64 true "community id"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /community/{id}/leave [post]
func (c *LibraryEngine) GinHandleLeaveCommunity(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CommunityService.Leave(uid, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleCommunityFeed returns posts plus the member list with mute state
// @Summary Community feed
// @Tags community
// @Produce json
// @Param id path uint64 true "community id"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response "not a member"
// @Security BearerAuth
// @Router /community/{id}/feed [get]
func (c *LibraryEngine) GinHandleCommunityFeed(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	posts, members, err := c.ModerationService.Feed(ctx.Request.Context(), id, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"posts":   posts,
		"members": members,
	}))
}

// GinHandleCreatePost adds a feed post
// @Summary Create post
// @Tags community
// @Accept json
// @Produce json
// @Param id path uint64 true "community id"
// @Param req body object true "title, body"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not a member"
// @Security BearerAuth
// @Router /community/{id}/posts [post]
func (c *LibraryEngine) GinHandleCreatePost(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	post, err := c.ModerationService.CreatePost(id, uid, req.Title, req.Body)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(post))
}

// GinHandleAddComment comments on a post
// @Summary Add comment
// @Tags community
// @Accept json
// @Produce json
// @Param post_id path uint64 true "post id"
// @Param req body object true "body"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not a member"
// @Security BearerAuth
// @Router /community/posts/{post_id}/comments [post]
func (c *LibraryEngine) GinHandleAddComment(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "post_id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	comment, err := c.ModerationService.AddComment(postID, uid, req.Body)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(comment))
}

// GinHandleTogglePin pins or unpins a post
// @Summary Toggle pin (teacher)
// @Tags community
// @Produce json
// @Param post_id path uint64 true "post id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "teacher role required"
// @Security BearerAuth
// @Router /community/posts/{post_id}/pin [post]
func (c *LibraryEngine) GinHandleTogglePin(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "post_id")
	if !ok {
		return
	}
	post, err := c.ModerationService.TogglePin(postID, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(post))
}

// GinHandleDeletePost soft-deletes a post
// @Summary Delete post (teacher)
// @Tags community
// @Produce json
// @Param post_id path uint64 true "post id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "teacher role required"
// @Security BearerAuth
// @Router /community/posts/{post_id} [delete]
func (c *LibraryEngine) GinHandleDeletePost(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "post_id")
	if !ok {
		return
	}
	if err := c.ModerationService.DeletePost(postID, uid); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleMuteMember mutes or unmutes a member
// @Summary Mute member (teacher)
// @Description seconds > 0 mutes for that long; seconds <= 0 lifts the mute
// @Tags community
// @Accept json
// @Produce json
// @Param id path uint64 true "community id"
// @Param req body object true "target_user_id, seconds"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response "teacher role required"
// @Security BearerAuth
// @Router /community/{id}/mute [post]
func (c *LibraryEngine) GinHandleMuteMember(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		TargetUserID uint64 `json:"target_user_id"`
		Seconds      int    `json:"seconds"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.TargetUserID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "target_user_id is required"))
		return
	}

	until, err := c.ModerationService.MuteMember(ctx.Request.Context(), id, uid, req.TargetUserID, req.Seconds)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	data := map[string]any{"muted": req.Seconds > 0}
	if until != nil {
		data["until"] = until.UTC()
	}
	ctx.JSON(http.StatusOK, response.Success(data))
}

// GinHandleSetMemberRole changes a member's community role
// @Summary Set member role (admin)
// @Tags community
// @Accept json
// @Produce json
// @Param id path uint64 true "community id"
// @Param req body object true "target_user_id, role"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "admin role required"
// @Security BearerAuth
// @Router /community/{id}/members/role [post]
func (c *LibraryEngine) GinHandleSetMemberRole(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		TargetUserID uint64 `json:"target_user_id"`
		Role         string `json:"role"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.TargetUserID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "target_user_id and role are required"))
		return
	}
	if err := c.ModerationService.SetRole(id, uid, req.TargetUserID, req.Role); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleRemoveMember removes a member
// @Summary Remove member (admin)
// @Tags community
// @Accept json
// @Produce json
// @Param id path uint64 true "community id"
// @Param req body object true "target_user_id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "admin role required"
// @Security BearerAuth
// @Router /community/{id}/members/remove [post]
func (c *LibraryEngine) GinHandleRemoveMember(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		TargetUserID uint64 `json:"target_user_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.TargetUserID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "target_user_id is required"))
		return
	}
	if err := c.ModerationService.RemoveMember(id, uid, req.TargetUserID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleManageMembers applies a bulk membership assignment
// @Summary Manage members (admin)
// @Description Desired members are upserted with their roles; current members absent from the map are removed
// @Tags community
// @Accept json
// @Produce json
// @Param id path uint64 true "community id"
// @Param req body object true "members: {user_id: role}"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "site admin only"
// @Security BearerAuth
// @Router /community/{id}/members [post]
func (c *LibraryEngine) GinHandleManageMembers(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if !c.requireSiteAdmin(ctx, uid) {
		return
	}
	var req struct {
		Members map[string]string `json:"members"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	desired := make(map[uint64]string, len(req.Members))
	for idStr, role := range req.Members {
		userID, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid user id "+idStr))
			return
		}
		desired[userID] = role
	}
	if err := c.MembershipService.ManageMembers(id, desired); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleChatHistory returns recent chat messages
// @Summary Chat history
// @Tags community
// @Produce json
// @Param id path uint64 true "community id"
// @Param limit query int false "messages (default 100)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not a member"
// @Security BearerAuth
// @Router /community/{id}/chat [get]
func (c *LibraryEngine) GinHandleChatHistory(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.MembershipService.RequireMember(uid, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	messages, err := c.ChatService.Recent(id, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(messages))
}
