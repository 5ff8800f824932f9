package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, повторная
	// запись согласия для той же версии документа).
	ErrConflict = errors.New("resource state conflict")

	// ErrLocked используется, когда координационный замок задания занят
	// другим запуском.
	ErrLocked = errors.New("job lock is held by another run")
)
