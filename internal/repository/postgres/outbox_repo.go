package postgres

import (
	"fmt"
	"log"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// OutboxRepo реализует repository.OutboxRepository
type OutboxRepo struct {
	db *gorm.DB
}

// NewOutboxRepo создает новый репозиторий очереди событий
func NewOutboxRepo(db *gorm.DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

// Enqueue вставляет событие в транзакции вызывающего.
// Частичный уникальный индекс по (deduplication_key) WHERE processed_at IS NULL
// превращает повторную постановку того же необработанного эффекта в no-op.
func (r *OutboxRepo) Enqueue(tx *gorm.DB, event *entity.OutboxEvent) error {
	if err := event.BeforeCreate(tx); err != nil {
		return err
	}
	result := tx.Exec(`
		INSERT INTO groupware_sync_outbox
			(id, event_type, team_id, user_id, occurred_at, retry_count, deduplication_key)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT (deduplication_key) WHERE processed_at IS NULL DO NOTHING
	`, event.ID, event.EventType, event.TeamID, event.UserID, event.OccurredAt, event.DeduplicationKey)
	if result.Error != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("[OutboxRepo] Событие с ключом %s уже в очереди, вставка пропущена", event.DeduplicationKey)
	}
	return nil
}

// FindPending возвращает необработанные события, старые вперед
func (r *OutboxRepo) FindPending(batchSize, maxRetry int) ([]*entity.OutboxEvent, error) {
	var events []*entity.OutboxEvent
	err := r.db.
		Where("processed_at IS NULL AND retry_count < ?", maxRetry).
		Order("occurred_at ASC").
		Limit(batchSize).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending outbox events: %w", err)
	}
	return events, nil
}

// SaveOutcomes сохраняет результаты обработки пачки одной транзакцией.
// Единый коммит в конце пачки: либо все исходы записаны, либо ни один.
func (r *OutboxRepo) SaveOutcomes(events []*entity.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			err := tx.Model(&entity.OutboxEvent{}).
				Where("id = ?", event.ID).
				Updates(map[string]interface{}{
					"processed_at": event.ProcessedAt,
					"retry_count":  event.RetryCount,
					"last_error":   event.LastError,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to save outcome for event %s: %w", event.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save outbox outcomes: %w", err)
	}
	return nil
}

// CountPending возвращает число событий, ожидающих обработки
func (r *OutboxRepo) CountPending(maxRetry int) (int64, error) {
	var count int64
	err := r.db.Model(&entity.OutboxEvent{}).
		Where("processed_at IS NULL AND retry_count < ?", maxRetry).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending events: %w", err)
	}
	return count, nil
}

// CountAbandoned возвращает число событий, исчерпавших попытки
func (r *OutboxRepo) CountAbandoned(maxRetry int) (int64, error) {
	var count int64
	err := r.db.Model(&entity.OutboxEvent{}).
		Where("processed_at IS NULL AND retry_count >= ?", maxRetry).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count abandoned events: %w", err)
	}
	return count, nil
}
