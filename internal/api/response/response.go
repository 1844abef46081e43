package response

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

const internalErrorMessage = "Internal server error."

// Response 所有 api 回應的共同格式
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func SuccessJSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	render.Status(r, status)
	render.JSON(w, r, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorJSON 將 error 轉成 http 回應
// 非 AppError 或 InternalErrorCode 一律回 500, 細節只寫 log
func ErrorJSON(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errs.As(err)
	if !ok || appErr.Code == errs.InternalErrorCode {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("url", r.URL.String()).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, internalErrorMessage, nil)
		return
	}

	var data any
	switch {
	case len(appErr.Fields) > 0:
		data = appErr.Fields
	case appErr.Data != nil:
		data = appErr.Data
	}
	message := appErr.Message
	if message == "" {
		message = errs.ErrStrMap[appErr.Code]
	}
	writeError(w, r, appErr.Code.HTTPStatus(), message, data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	render.Status(r, status)
	render.JSON(w, r, Response{
		Success: false,
		Message: message,
		Data:    data,
	})
}
