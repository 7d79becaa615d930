package apperrors

import (
	"fmt"
	"net/http"
)

/*
Предопределённые ошибки клиента: сессия, жизненный цикл действия,
пакетное удаление.
*/

// ErrSessionExpired - сервер ответил 401 или истёк срок токена.
// Побочный эффект обязателен: сессия очищается, UI возвращается на вход.
var ErrSessionExpired = New(
	CodeSessionExpired,
	"auth",
	"Your session has expired. Please log in again.",
	http.StatusUnauthorized,
)

// ErrNotAuthenticated - действие требует входа, а сессии нет.
var ErrNotAuthenticated = New(
	CodeUnauthorized,
	"auth",
	"Please log in first",
	http.StatusUnauthorized,
)

// ErrInvalidCredentials - неверный email или пароль (сервер ответил 401 на логин).
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrAdminRequired - экран доступен только администратору.
var ErrAdminRequired = New(
	CodeForbidden,
	"auth",
	"Admin access required",
	http.StatusForbidden,
)

// ErrActionInProgress - повторная отправка, пока действие ждёт подтверждения или в полёте.
var ErrActionInProgress = New(
	CodeActionInProgress,
	"action",
	"Another action is already pending",
	http.StatusConflict,
)

// ErrNoPendingAction - Confirm/Cancel без запрошенного действия.
var ErrNoPendingAction = New(
	CodeNoPendingAction,
	"action",
	"There is no action awaiting confirmation",
	http.StatusBadRequest,
)

// ErrEmptySelection - пакетное удаление без выбранных элементов.
var ErrEmptySelection = New(
	CodeValidationFailed,
	"validation",
	"Please select at least one plan to delete.",
	http.StatusBadRequest,
)

// ErrScreenClosed - экран закрыт, результат запроса отброшен.
var ErrScreenClosed = New(
	CodeScreenClosed,
	"screen",
	"Screen was closed",
	0,
)

// BatchPartialFailure - часть DELETE-запросов пакета завершилась ошибкой.
// failed: id -> причина.
func BatchPartialFailure(failed map[int64]error) *AppError {
	details := make(map[string]string, len(failed))
	for id, err := range failed {
		details[fmt.Sprint(id)] = err.Error()
	}
	return New(
		CodeBatchPartialFailure,
		"action",
		fmt.Sprintf("Failed to delete %d of the selected item(s)", len(failed)),
		http.StatusMultiStatus,
	).WithDetails(details)
}
