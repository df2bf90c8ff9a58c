package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"
	ErrCodeUpload         ErrorCode = "UPLOAD_ERROR"
	ErrCodeInvalidRoomKey ErrorCode = "INVALID_ROOM_KEY"
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы sentinel-ошибки
// находились через errors.Is даже после Wrap.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func Database(err error, message string) *AppError {
	return Wrap(err, ErrCodeDatabaseError, message)
}

func Upload(err error, message string) *AppError {
	return Wrap(err, ErrCodeUpload, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidRoomKey:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUpload:
		return http.StatusBadGateway
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrCodeUnauthorized
}

func IsInvalidRoomKey(err error) bool {
	return CodeOf(err) == ErrCodeInvalidRoomKey
}

func IsUpload(err error) bool {
	return CodeOf(err) == ErrCodeUpload
}

func IsDatabase(err error) bool {
	return CodeOf(err) == ErrCodeDatabaseError
}

var (
	ErrReportNotFound       = New(ErrCodeNotFound, "объявление не найдено")
	ErrRoomNotFound         = New(ErrCodeNotFound, "чат не найден")
	ErrMessageNotFound      = New(ErrCodeNotFound, "сообщение не найдено")
	ErrNotificationNotFound = New(ErrCodeNotFound, "уведомление не найдено")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidRoomKey       = New(ErrCodeInvalidRoomKey, "некорректный идентификатор чата")
	ErrReportStatusChanged  = New(ErrCodeValidation, "статус объявления уже изменён")
)
