package repository

import "time"

// CacheRepository интерфейс для кеша и координационных замков
type CacheRepository interface {
	// Set сохраняет значение с TTL
	Set(key string, value interface{}, expiration time.Duration) error

	// Get получает значение или apperrors.ErrNotFound
	Get(key string) (string, error)

	// Delete удаляет значение
	Delete(key string) error

	// AcquireLock пытается атомарно захватить замок на ttl.
	// Возвращает false, если замок уже занят другим запуском.
	AcquireLock(key string, ttl time.Duration) (bool, error)

	// ReleaseLock освобождает замок
	ReleaseLock(key string) error
}
