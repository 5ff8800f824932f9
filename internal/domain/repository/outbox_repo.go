package repository

import (
	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// OutboxRepository интерфейс для работы с очередью исходящих событий синхронизации
type OutboxRepository interface {
	// Enqueue вставляет событие в транзакции вызывающего.
	// Если необработанное событие с тем же ключом дедупликации уже есть,
	// вставка молча игнорируется (INSERT ... ON CONFLICT DO NOTHING).
	Enqueue(tx *gorm.DB, event *entity.OutboxEvent) error

	// FindPending возвращает необработанные события с retry_count < maxRetry,
	// старые вперед (по occurred_at), не более batchSize штук
	FindPending(batchSize, maxRetry int) ([]*entity.OutboxEvent, error)

	// SaveOutcomes сохраняет результаты обработки всей пачки одной транзакцией
	SaveOutcomes(events []*entity.OutboxEvent) error

	// CountPending возвращает число событий, ожидающих обработки
	CountPending(maxRetry int) (int64, error)

	// CountAbandoned возвращает число событий, исчерпавших попытки
	CountAbandoned(maxRetry int) (int64, error)
}
