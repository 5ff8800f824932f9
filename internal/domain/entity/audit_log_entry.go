package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction — закрытый набор действий, попадающих в журнал аудита
type AuditAction string

const (
	AuditTeamMemberAdded      AuditAction = "team_member_added"
	AuditTeamMemberRemoved    AuditAction = "team_member_removed"
	AuditConsentReminderSent  AuditAction = "consent_reminder_sent"
	AuditMemberMarkedInactive AuditAction = "member_marked_inactive"
	AuditOutboxEventRequeued  AuditAction = "outbox_event_requeued"
	AuditBoardDigestSent      AuditAction = "board_digest_sent"
	AuditConsentRecorded      AuditAction = "consent_recorded"
	AuditProfileSuspended     AuditAction = "profile_suspended"
)

// Теги причины запуска — только диагностический контекст в описаниях,
// логика от них никогда не ветвится
const (
	TriggerScheduledSync = "scheduled sync"
	TriggerManualSync    = "manual sync"
)

// AuditLogEntry — неизменяемая запись журнала аудита.
// Коммитится атомарно с бизнес-изменением, которое документирует.
// ActorName денормализован и переживает удаление пользователя-актора.
type AuditLogEntry struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	Action AuditAction `gorm:"size:50;not null" json:"action"`

	EntityType string `gorm:"size:50;not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   uint   `gorm:"not null;index:idx_audit_entity,priority:2" json:"entity_id"`

	Description string `gorm:"type:text;not null" json:"description"`

	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`

	// ActorUserID заполнен только для действий людей; системные задания
	// оставляют NULL и пишут свое имя в ActorName
	ActorUserID *uint  `json:"actor_user_id,omitempty"`
	ActorName   string `gorm:"size:150;not null" json:"actor_name"`

	RelatedEntityID   *uint   `json:"related_entity_id,omitempty"`
	RelatedEntityType *string `gorm:"size:50" json:"related_entity_type,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}

// BeforeCreate генерирует uuid для новой записи
func (e *AuditLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
