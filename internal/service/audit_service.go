package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	"gorm.io/gorm"
)

// AuditService записывает журнал аудита в транзакции вызывающего.
// Сервис никогда не коммитит сам: запись сохраняется атомарно с
// бизнес-изменением, которое она документирует. Нет закоммиченного
// изменения без записи аудита и наоборот.
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService создает новый сервис аудита
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log добавляет запись от имени автоматического задания или другого
// неадминистративного актора; actorName — имя задания
func (s *AuditService) Log(
	tx *gorm.DB,
	action entity.AuditAction,
	entityType string,
	entityID uint,
	description string,
	actorName string,
	now time.Time,
	relatedEntityID *uint,
	relatedEntityType *string,
) error {
	entry := &entity.AuditLogEntry{
		Action:            action,
		EntityType:        entityType,
		EntityID:          entityID,
		Description:       description,
		OccurredAt:        now,
		ActorUserID:       nil,
		ActorName:         actorName,
		RelatedEntityID:   relatedEntityID,
		RelatedEntityType: relatedEntityType,
	}

	if err := s.auditRepo.Create(tx, entry); err != nil {
		return err
	}

	log.Printf("[AuditService] %s on %s %d by %s: %s", action, entityType, entityID, actorName, description)
	return nil
}

// LogAdmin добавляет запись от имени человека-администратора.
// ActorName денормализуется с префиксом "Admin:" и переживает удаление актора.
func (s *AuditService) LogAdmin(
	tx *gorm.DB,
	action entity.AuditAction,
	entityType string,
	entityID uint,
	description string,
	actorUserID uint,
	actorDisplayName string,
	now time.Time,
	relatedEntityID *uint,
	relatedEntityType *string,
) error {
	actorName := fmt.Sprintf("Admin: %s", actorDisplayName)
	entry := &entity.AuditLogEntry{
		Action:            action,
		EntityType:        entityType,
		EntityID:          entityID,
		Description:       description,
		OccurredAt:        now,
		ActorUserID:       &actorUserID,
		ActorName:         actorName,
		RelatedEntityID:   relatedEntityID,
		RelatedEntityType: relatedEntityType,
	}

	if err := s.auditRepo.Create(tx, entry); err != nil {
		return err
	}

	log.Printf("[AuditService] %s on %s %d by %s: %s", action, entityType, entityID, actorName, description)
	return nil
}
