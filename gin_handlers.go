package dlcf_library

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/IsraelDcoder/Dlcf-library/response"
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/gin-gonic/gin"
)

/*
	The Gin handlers below are optional glue: host apps are free to write
	their own controllers against the services and only reuse the engine's
	websocket hub. These cover the full surface for apps that want the
	batteries included.
*/

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(ctx *gin.Context) (uint64, bool) {
	uidAny, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	uid, ok := uidAny.(uint64)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	return uid, true
}

// writeServiceError maps the service error taxonomy onto the envelope.
// Permission failures get HTTP 403; everything else rides HTTP 200 with a
// business code, matching the middleware/business split.
func writeServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, err.Error()))
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrMuted):
		ctx.JSON(http.StatusOK, response.Error(response.CodeMuted, err.Error()))
	default:
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
	}
}

// pathID parses a numeric path parameter; writes the param error itself.
func pathID(ctx *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid "+name))
		return 0, false
	}
	return id, true
}
