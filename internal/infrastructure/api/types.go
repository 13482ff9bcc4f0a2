// internal/infrastructure/api/types.go
package api

import "fmt"

// Result - результат запроса к внешнему API.
// Value всегда пригоден к использованию: при ошибке это пустое значение по умолчанию.
type Result[T any] struct {
	Value T
	Err   error
}

// OK оборачивает успешный результат
func OK[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Fail возвращает значение по умолчанию вместе с причиной
func Fail[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Err: err}
}

// Failed сообщает, был ли запрос неуспешным
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// StatusError - HTTP ответ с неожиданным статусом
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.Code, e.Body)
}
