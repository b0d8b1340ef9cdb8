package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response is the uniform JSON envelope.
type Response struct {
	Code int         `json:"code" example:"0"`                    // business status code
	Msg  string      `json:"msg" example:"success"`               // human readable message
	Data interface{} `json:"data,omitempty" swaggertype:"object"` // payload
}

// Business status codes. Middleware-level failures use HTTP status codes
// (401/403/500); business-level failures ride HTTP 200 with a code here.
// The live endpoints are the exception: they speak their own bare JSON
// shapes for interop with the original client.
const (
	CodeSuccess        = 0     // ok
	CodeParamError     = 10001 // bad or missing parameter
	CodeUserNotFound   = 10002 // no such user
	CodePasswordError  = 10003 // login failed
	CodeTokenInvalid   = 10004 // token missing/expired
	CodePermissionDeny = 10005 // caller lacks the required role
	CodeNotFound       = 10006 // no such resource
	CodeMuted          = 10007 // caller is muted in this community
	CodeInternalError  = 99999 // internal error
)

// Success wraps data with code 0. An optional message overrides "success".
func Success(data interface{}, args ...string) *Response {
	msg := "success"
	for _, arg := range args {
		msg = arg
	}
	return &Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	}
}

// Error builds an error envelope.
func Error(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

// WriteJSON writes the envelope with HTTP 200.
func (r *Response) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(r); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// WriteJSONWithStatus writes the envelope with an explicit HTTP status,
// used by middleware for auth failures.
func (r *Response) WriteJSONWithStatus(w http.ResponseWriter, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(r); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
