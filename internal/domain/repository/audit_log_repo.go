package repository

import (
	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// AuditLogRepository интерфейс для журнала аудита.
// Записи никогда не изменяются и не удаляются.
type AuditLogRepository interface {
	// Create добавляет запись в транзакции вызывающего: запись коммитится
	// атомарно с бизнес-изменением, которое документирует
	Create(tx *gorm.DB, entry *entity.AuditLogEntry) error

	// GetByEntity возвращает записи по сущности, новые вперед
	GetByEntity(entityType string, entityID uint, limit int) ([]*entity.AuditLogEntry, error)
}
