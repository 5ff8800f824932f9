package postgres

import (
	"fmt"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// AuditLogRepo реализует repository.AuditLogRepository
type AuditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepo создает новый репозиторий журнала аудита
func NewAuditLogRepo(db *gorm.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Create добавляет запись в транзакции вызывающего
func (r *AuditLogRepo) Create(tx *gorm.DB, entry *entity.AuditLogEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

// GetByEntity возвращает записи по сущности, новые вперед
func (r *AuditLogRepo) GetByEntity(entityType string, entityID uint, limit int) ([]*entity.AuditLogEntry, error) {
	var entries []*entity.AuditLogEntry
	err := r.db.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	return entries, nil
}
