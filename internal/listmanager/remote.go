package listmanager

import (
	"context"
	"net/http"

	"subscription_console/pkg/apperrors"
)

// Fetcher читает всю коллекцию
type Fetcher[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// Remote - удалённый ресурс-список: чтение и три вида записи.
// Create/Update возвращают сущность так, как её сохранил сервер.
type Remote[T, P any] interface {
	Fetcher[T]
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int64, payload P) (T, error)
	Delete(ctx context.Context, id int64) error
}

// ErrReadOnly - список без операций записи (например, пользователи в админке)
var ErrReadOnly = apperrors.New(
	apperrors.CodeForbidden,
	"list",
	"This list is read-only",
	http.StatusMethodNotAllowed,
)

type readOnly[T any] struct {
	Fetcher[T]
}

// ReadOnly превращает Fetcher в Remote, у которого любая запись - ErrReadOnly
func ReadOnly[T any](f Fetcher[T]) Remote[T, struct{}] {
	return readOnly[T]{Fetcher: f}
}

func (r readOnly[T]) Create(context.Context, struct{}) (T, error) {
	var zero T
	return zero, ErrReadOnly
}

func (r readOnly[T]) Update(context.Context, int64, struct{}) (T, error) {
	var zero T
	return zero, ErrReadOnly
}

func (r readOnly[T]) Delete(context.Context, int64) error {
	return ErrReadOnly
}
