package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Domain   string      `json:"domain"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает по коду, чтобы errors.Is(err, ErrSessionExpired) работал
// и для копий с деталями.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New - базовый конструктор
func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap - оборачивает существующую ошибку в AppError
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// WithDetails возвращает копию с деталями. Предопределённые ошибки
// разделяются между горутинами, поэтому оригинал не трогаем.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError возвращает копию с причиной.
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// MarshalJSON - для кастомного вывода JSON
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Domain  string      `json:"domain"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Domain:  e.Domain,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// --- ОБЩИЕ ХЕЛПЕРЫ ---

// InternalError оборачивает неизвестную системную ошибку
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Internal error", http.StatusInternalServerError)
}

// ValidationError создает ошибку валидации с деталями
func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", http.StatusBadRequest).WithDetails(details)
}

// NewValidationMessage - ошибка валидации с человекочитаемым текстом
// (например "Please select at least one plan to delete.")
func NewValidationMessage(message string) *AppError {
	return New(CodeValidationFailed, "validation", message, http.StatusBadRequest)
}

// NetworkFailure - запрос не дошёл до сервера или ответ не был получен
func NetworkFailure(err error, op string) *AppError {
	return Wrap(err, CodeNetworkFailure, "network", "Network error during "+op+". Please try again.", 0)
}

// ServerError - сервер ответил не-2xx
func ServerError(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	code := CodeServerError
	if status == http.StatusNotFound {
		code = CodeNotFound
	}
	if status == http.StatusForbidden {
		code = CodeForbidden
	}
	return New(code, "server", message, status)
}

// DecodeFailed - сервер ответил 2xx, но тело не соответствует контракту
func DecodeFailed(err error, op string) *AppError {
	return Wrap(err, CodeDecodeFailed, "server", "Unexpected response for "+op, http.StatusBadGateway)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf раскладывает любую ошибку по таксономии UI.
func KindOf(err error) Kind {
	appErr, ok := AsAppError(err)
	if !ok {
		return KindInternal
	}
	switch appErr.Code {
	case CodeNetworkFailure:
		return KindNetworkFailure
	case CodeSessionExpired, CodeUnauthorized:
		return KindSessionExpired
	case CodeValidationFailed, CodeNoPendingAction, CodeActionInProgress:
		return KindValidationFailure
	case CodeServerError, CodeNotFound, CodeForbidden, CodeDecodeFailed,
		CodeInvalidCredentials, CodeBatchPartialFailure:
		return KindServerError
	default:
		return KindInternal
	}
}
