package dlcf_library

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/IsraelDcoder/Dlcf-library/response"
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
)

// -------------------- content library endpoints --------------------

// GinHandleListContent browses the public library
// @Summary Browse library
// @Tags content
// @Produce json
// @Param type query string false "pdf/ebook/audio/video/live"
// @Param category_id query uint64 false "category filter"
// @Param q query string false "search in title/description/author"
// @Param page query int false "page (default 1)"
// @Param per_page query int false "page size (default 12, max 50)"
// @Success 200 {object} response.Response{data=service.Page}
// @Router /content [get]
func (c *LibraryEngine) GinHandleListContent(ctx *gin.Context) {
	params := service.ListParams{
		ContentType: ctx.Query("type"),
		Search:      ctx.Query("q"),
	}
	params.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	params.PerPage, _ = strconv.Atoi(ctx.DefaultQuery("per_page", "12"))
	if cidStr := ctx.Query("category_id"); cidStr != "" {
		cid, err := strconv.ParseUint(cidStr, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid category_id"))
			return
		}
		params.CategoryID = &cid
	}

	page, err := c.ContentService.List(params)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(page))
}

// GinHandleGetContent returns one library entry
// @Summary Content detail
// @Tags content
// @Produce json
// @Param id path uint64 true "content id"
// @Success 200 {object} response.Response
// @Router /content/{id} [get]
func (c *LibraryEngine) GinHandleGetContent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	content, err := c.ContentService.Get(id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(content))
}

// GinHandleSearchContent is the typeahead search
// @Summary Quick search
// @Tags content
// @Produce json
// @Param q query string true "term, at least 2 characters"
// @Success 200 {object} response.Response
// @Router /content/search [get]
func (c *LibraryEngine) GinHandleSearchContent(ctx *gin.Context) {
	items, err := c.ContentService.Search(ctx.Query("q"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(items))
}

// GinHandleUploadContent stores a file and creates its library entry
// @Summary Upload content
// @Description Multipart upload; teacher or admin accounts only
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "the file"
// @Param title formData string true "title"
// @Param content_type formData string true "pdf/ebook/audio/video"
// @Param author formData string false "author"
// @Param description formData string false "description"
// @Param category_id formData uint64 false "category"
// @Param tags formData string false "comma separated tags"
// @Param is_public formData bool false "default true"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not a teacher"
// @Security BearerAuth
// @Router /content/upload [post]
func (c *LibraryEngine) GinHandleUploadContent(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "file is required"))
		return
	}
	contentType := ctx.PostForm("content_type")
	if !allowedFile(file.Filename, contentType) {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "file type not allowed for "+contentType))
		return
	}

	stored := uniqueFilename(file.Filename)
	params := service.CreateParams{
		Title:       ctx.PostForm("title"),
		Author:      ctx.PostForm("author"),
		Description: ctx.PostForm("description"),
		ContentType: contentType,
		FilePath:    stored,
		FileSize:    file.Size,
		IsPublic:    ctx.DefaultPostForm("is_public", "true") == "true",
	}
	if tags := strings.TrimSpace(ctx.PostForm("tags")); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}
	if cidStr := ctx.PostForm("category_id"); cidStr != "" {
		cid, err := strconv.ParseUint(cidStr, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid category_id"))
			return
		}
		params.CategoryID = &cid
	}

	// write the file only once the form has parsed; a failed library insert
	// still removes it so rejected uploads leave nothing behind
	dest := c.storagePath(contentType, stored)
	if err := ctx.SaveUploadedFile(file, dest); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	content, err := c.ContentService.Create(uid, params)
	if err != nil {
		_ = os.Remove(dest)
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(content))
}

// GinHandleViewContent streams a file inline and counts the view
// @Summary View content
// @Tags content
// @Param id path uint64 true "content id"
// @Security BearerAuth
// @Router /content/{id}/view [get]
func (c *LibraryEngine) GinHandleViewContent(ctx *gin.Context) {
	c.serveContentFile(ctx, false)
}

// GinHandleDownloadContent sends a file as attachment and counts the download
// @Summary Download content
// @Tags content
// @Param id path uint64 true "content id"
// @Security BearerAuth
// @Router /content/{id}/download [get]
func (c *LibraryEngine) GinHandleDownloadContent(ctx *gin.Context) {
	c.serveContentFile(ctx, true)
}

func (c *LibraryEngine) serveContentFile(ctx *gin.Context, download bool) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	content, err := c.ContentService.Get(id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if !content.IsPublic && content.UploadedBy != uid {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "content is not public"))
		return
	}

	if download {
		_ = c.ContentService.IncrementDownload(id, uid, ctx.ClientIP())
		ctx.FileAttachment(c.storagePath(content.ContentType, content.FilePath), content.FilePath)
		return
	}
	_ = c.ContentService.IncrementView(id, uid, ctx.ClientIP())
	ctx.File(c.storagePath(content.ContentType, content.FilePath))
}

// GinHandleToggleContentVisibility flips public/hidden
// @Summary Toggle visibility
// @Tags content
// @Produce json
// @Param id path uint64 true "content id"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response "not the uploader"
// @Security BearerAuth
// @Router /content/{id}/visibility [post]
func (c *LibraryEngine) GinHandleToggleContentVisibility(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	isPublic, err := c.ContentService.ToggleVisibility(id, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"is_public": isPublic}))
}

// GinHandleContentStats returns library-wide counters for the dashboard
// @Summary Library stats (admin)
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=service.Stats}
// @Security BearerAuth
// @Router /admin/stats [get]
func (c *LibraryEngine) GinHandleContentStats(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if !c.requireSiteAdmin(ctx, uid) {
		return
	}
	stats, err := c.ContentService.GetStats()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(stats))
}

// GinHandleListCategories lists categories with entry counts
// @Summary Categories
// @Tags content
// @Produce json
// @Success 200 {object} response.Response
// @Router /content/categories [get]
func (c *LibraryEngine) GinHandleListCategories(ctx *gin.Context) {
	cats, err := c.ContentService.Categories()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(cats))
}

// GinHandleCreateCategory adds a category
// @Summary Create category (admin)
// @Tags content
// @Accept json
// @Produce json
// @Param req body object true "name, description"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "not an admin"
// @Security BearerAuth
// @Router /content/categories [post]
func (c *LibraryEngine) GinHandleCreateCategory(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	cat, err := c.ContentService.CreateCategory(uid, req.Name, req.Description)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(cat))
}
