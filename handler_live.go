package dlcf_library

import (
	"errors"
	"net/http"
	"time"

	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
)

// -------------------- live session endpoints --------------------
//
// These speak bare JSON shapes instead of the response envelope for interop
// with the existing live client.

// GinHandleStartLive opens a live session
// @Summary Start live session
// @Tags live
// @Accept json
// @Produce json
// @Param req body object false "title, description, community_id"
// @Success 200 {object} map[string]interface{} "id, started_at"
// @Failure 403 {object} map[string]interface{} "not a teacher"
// @Security BearerAuth
// @Router /live/start [post]
func (c *LibraryEngine) GinHandleStartLive(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		CommunityID *uint64 `json:"community_id"`
	}
	_ = ctx.ShouldBindJSON(&req) // all fields optional

	session, err := c.LiveService.Start(uid, service.StartParams{
		Title:       req.Title,
		Description: req.Description,
		CommunityID: req.CommunityID,
	})
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission-denied"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"id":         session.ID,
		"started_at": session.StartedAt.UTC().Format(time.RFC3339),
	})
}

// GinHandleLiveNow lists recent sessions
// @Summary Live directory
// @Tags live
// @Produce json
// @Success 200 {array} service.SessionInfo
// @Router /live/now [get]
func (c *LibraryEngine) GinHandleLiveNow(ctx *gin.Context) {
	sessions, err := c.LiveService.NowList()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

// GinHandleUploadRecording attaches a recording file to a session
// @Summary Upload recording
// @Tags live
// @Accept multipart/form-data
// @Produce json
// @Param id path uint64 true "session id"
// @Param recording formData file true "recording file"
// @Success 200 {object} map[string]interface{} "status, path"
// @Failure 400 {object} map[string]interface{} "no-file"
// @Security BearerAuth
// @Router /live/upload/{id} [post]
func (c *LibraryEngine) GinHandleUploadRecording(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("recording")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no-file"})
		return
	}

	stored := recordingFilename(id, file.Filename)
	if err := ctx.SaveUploadedFile(file, c.storagePath("live", stored)); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}

	if err := c.LiveService.AttachRecording(id, uid, stored, file.Size); err != nil {
		c.writeLiveError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "path": stored})
}

// GinHandleEndLive closes a session
// @Summary End live session
// @Tags live
// @Accept json
// @Produce json
// @Param id path uint64 true "session id"
// @Param req body object false "recording_path, recording_size, auto_publish, make_public"
// @Success 200 {object} map[string]interface{} "id, ended_at"
// @Failure 400 {object} map[string]interface{} "already-ended"
// @Security BearerAuth
// @Router /live/end/{id} [post]
func (c *LibraryEngine) GinHandleEndLive(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		RecordingPath string `json:"recording_path"`
		RecordingSize int64  `json:"recording_size"`
		AutoPublish   bool   `json:"auto_publish"`
		MakePublic    bool   `json:"make_public"`
	}
	_ = ctx.ShouldBindJSON(&req) // body optional

	session, err := c.LiveService.End(id, uid, service.EndParams{
		RecordingPath: req.RecordingPath,
		RecordingSize: req.RecordingSize,
		AutoPublish:   req.AutoPublish,
		MakePublic:    req.MakePublic,
	})
	if err != nil {
		if errors.Is(err, service.ErrAlreadyEnded) {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "already-ended"})
			return
		}
		c.writeLiveError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"id":       session.ID,
		"ended_at": session.EndedAt.UTC().Format(time.RFC3339),
	})
}

// GinHandleSaveLive publishes a session's recording to the library
// @Summary Save recording to library
// @Tags live
// @Accept json
// @Produce json
// @Param id path uint64 true "session id"
// @Param req body object false "make_public"
// @Success 200 {object} map[string]interface{} "content_id"
// @Failure 400 {object} map[string]interface{} "no-recording / already-saved"
// @Security BearerAuth
// @Router /live/save/{id} [post]
func (c *LibraryEngine) GinHandleSaveLive(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		MakePublic *bool `json:"make_public"`
	}
	_ = ctx.ShouldBindJSON(&req)
	makePublic := true
	if req.MakePublic != nil {
		makePublic = *req.MakePublic
	}

	content, err := c.LiveService.Save(id, uid, makePublic)
	if err != nil {
		c.writeLiveError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"content_id": content.ID})
}

// writeLiveError maps service errors onto the live endpoints' bare shapes.
func (c *LibraryEngine) writeLiveError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoRecording):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no-recording"})
	case errors.Is(err, service.ErrAlreadySaved):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "already-saved"})
	case errors.Is(err, service.ErrAlreadyEnded):
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "already-ended"})
	case errors.Is(err, service.ErrPermissionDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission-denied"})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not-found"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
	}
}
