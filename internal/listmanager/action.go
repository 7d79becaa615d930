package listmanager

// State - состояние одного мутирующего действия
type State string

const (
	StateIdle                State = "idle"
	StatePendingConfirmation State = "pending_confirmation"
	StateConfirmed           State = "confirmed"
	StateInFlight            State = "in_flight"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
	StateCancelled           State = "cancelled"
)

type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Action - запрошенное, но ещё не подтверждённое действие
type Action[P any] struct {
	Kind    Kind
	ID      int64   // update
	IDs     []int64 // delete, снимок выбора на момент запроса
	Payload P       // create/update
}

// Confirmation - то, что показывает окно подтверждения.
// Имена разрешаются по id в момент вызова Confirmation, а не выбора.
type Confirmation struct {
	Kind  Kind
	IDs   []int64
	Names []string
}

// Result - итог подтверждённого действия
type Result[T any] struct {
	Kind    Kind
	Entity  T       // create/update: ответ сервера
	Deleted []int64 // delete: подтверждённые сервером
	Failed  []int64 // delete: не удалённые, остаются выбранными
}
