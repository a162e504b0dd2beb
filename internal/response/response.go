package response

import "github.com/keyurgolani/BabyNest-sub006/internal"

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse struct {
	Data  any                `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data any, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

func BadRequest(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(400, msg)}
}

func Forbidden(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(403, msg)}
}

func NotFound(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(404, msg)}
}

func InternalError(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(500, msg)}
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}
