package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие коды ошибок
const (
	// Системные и неизвестные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeUnknownError  ErrorCode = "UNKNOWN_ERROR"

	// Удалённый вызов
	CodeNetworkFailure ErrorCode = "NETWORK_FAILURE"
	CodeServerError    ErrorCode = "SERVER_ERROR"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeDecodeFailed   ErrorCode = "DECODE_FAILED"

	// Валидация (клиентская, до отправки запроса)
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Аутентификация
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeSessionExpired     ErrorCode = "SESSION_EXPIRED"

	// Жизненный цикл мутирующего действия
	CodeActionInProgress    ErrorCode = "ACTION_IN_PROGRESS"
	CodeNoPendingAction     ErrorCode = "NO_PENDING_ACTION"
	CodeBatchPartialFailure ErrorCode = "BATCH_PARTIAL_FAILURE"
	CodeScreenClosed        ErrorCode = "SCREEN_CLOSED"
)

// Kind - укрупнённая категория ошибки, по которой UI решает, что делать.
type Kind string

const (
	KindNetworkFailure    Kind = "network_failure"
	KindServerError       Kind = "server_error"
	KindValidationFailure Kind = "validation_failure"
	KindSessionExpired    Kind = "session_expired"
	KindInternal          Kind = "internal"
)
