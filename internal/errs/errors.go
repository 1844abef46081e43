package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode int

const (
	InternalErrorCode ErrorCode = iota
	ValidationErrorCode
	InvalidProductCode
	InsufficientStockCode
	NoOpTransitionCode
	IllegalTransitionCode
	UnauthorizedCode
	ForbiddenCode
	NotFoundCode
	ConflictCode
	TooManyRequestsCode
	UnavailableCode
)

var ErrStrMap = map[ErrorCode]string{
	InternalErrorCode:     "internal error",
	ValidationErrorCode:   "validation error",
	InvalidProductCode:    "invalid product",
	InsufficientStockCode: "insufficient stock",
	NoOpTransitionCode:    "no-op transition",
	IllegalTransitionCode: "illegal transition",
	UnauthorizedCode:      "unauthorized",
	ForbiddenCode:         "forbidden",
	NotFoundCode:          "not found",
	ConflictCode:          "conflict",
	TooManyRequestsCode:   "too many requests",
	UnavailableCode:       "unavailable",
}

var httpStatusMap = map[ErrorCode]int{
	InternalErrorCode:     http.StatusInternalServerError,
	ValidationErrorCode:   http.StatusBadRequest,
	InvalidProductCode:    http.StatusBadRequest,
	InsufficientStockCode: http.StatusBadRequest,
	NoOpTransitionCode:    http.StatusBadRequest,
	IllegalTransitionCode: http.StatusBadRequest,
	UnauthorizedCode:      http.StatusUnauthorized,
	ForbiddenCode:         http.StatusForbidden,
	NotFoundCode:          http.StatusNotFound,
	ConflictCode:          http.StatusConflict,
	TooManyRequestsCode:   http.StatusTooManyRequests,
	UnavailableCode:       http.StatusServiceUnavailable,
}

// HTTPStatus 將錯誤代碼轉為 http status, 未知代碼一律 500
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusMap[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (c ErrorCode) String() string {
	return ErrStrMap[c]
}

// FieldError 單一欄位的驗證錯誤
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockShortage 庫存不足時回傳給呼叫端的細節
type StockShortage struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

type AppError struct {
	Code    ErrorCode
	Message string
	Fields  []FieldError
	Data    any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 只比對錯誤代碼, 讓 errors.Is(err, errs.NotFoundError) 可以運作
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// sentinel, 僅用於 errors.Is 比對
var (
	ValidationError        = &AppError{Code: ValidationErrorCode}
	InvalidProductError    = &AppError{Code: InvalidProductCode}
	InsufficientStockError = &AppError{Code: InsufficientStockCode}
	NoOpTransitionError    = &AppError{Code: NoOpTransitionCode}
	IllegalTransitionError = &AppError{Code: IllegalTransitionCode}
	UnauthorizedError      = &AppError{Code: UnauthorizedCode}
	ForbiddenError         = &AppError{Code: ForbiddenCode}
	NotFoundError          = &AppError{Code: NotFoundCode}
	ConflictError          = &AppError{Code: ConflictCode}
	TooManyRequestsError   = &AppError{Code: TooManyRequestsCode}
	InternalError          = &AppError{Code: InternalErrorCode}
)

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 保留底層錯誤, message 為可以回給使用者的內容
func Wrap(code ErrorCode, err error, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation 建立帶有完整欄位錯誤清單的驗證錯誤
func Validation(fields ...FieldError) *AppError {
	message := "Validation error occurred."
	if len(fields) > 1 {
		message = "Multiple validation errors occurred."
	}
	return &AppError{Code: ValidationErrorCode, Message: message, Fields: fields}
}

func InsufficientStock(shortage StockShortage) *AppError {
	return &AppError{
		Code:    InsufficientStockCode,
		Message: fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", shortage.Name, shortage.Available, shortage.Requested),
		Data:    shortage,
	}
}

// As 取出 *AppError, 非 AppError 時回傳 false
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf 非 AppError 視為 InternalErrorCode
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return InternalErrorCode
}
