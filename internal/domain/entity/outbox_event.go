package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы событий синхронизации с внешней groupware-системой
const (
	OutboxEventAddUserToTeamResources      = "add_user_to_team_resources"
	OutboxEventRemoveUserFromTeamResources = "remove_user_from_team_resources"
)

// MaxLastErrorLength — предел длины сохраняемого текста ошибки
const MaxLastErrorLength = 4000

// OutboxEvent — durable-запись о внешнем побочном эффекте (transactional outbox).
// Создается в той же транзакции, что и бизнес-изменение; внешняя система
// вызывается позже, воркером дренажа. Доставка at-least-once.
type OutboxEvent struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	EventType string `gorm:"size:100;not null" json:"event_type"`
	TeamID    uint   `gorm:"not null" json:"team_id"`
	UserID    uint   `gorm:"not null" json:"user_id"`

	OccurredAt time.Time `gorm:"not null;index:idx_outbox_processed_occurred,priority:2" json:"occurred_at"`

	// ProcessedAt — момент успешной обработки. NULL = событие в очереди.
	ProcessedAt *time.Time `gorm:"index:idx_outbox_processed_occurred,priority:1" json:"processed_at,omitempty"`

	// RetryCount увеличивается при каждой неудачной попытке; по достижении
	// предела событие исключается из выборки, но строка сохраняется
	RetryCount int `gorm:"not null;default:0" json:"retry_count"`

	// DeduplicationKey гарантирует не более одного необработанного события
	// на логический побочный эффект. Уникальность обеспечивает частичный
	// индекс в миграции: UNIQUE (deduplication_key) WHERE processed_at IS NULL.
	DeduplicationKey string `gorm:"size:200;not null;index" json:"deduplication_key"`

	// LastError — текст последней ошибки, обрезанный до MaxLastErrorLength
	LastError *string `gorm:"size:4000" json:"last_error,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (OutboxEvent) TableName() string {
	return "groupware_sync_outbox"
}

// BeforeCreate генерирует uuid для нового события
func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// OutboxDedupKey строит ключ дедупликации вида {eventType}:{teamId}:{userId} —
// не более одного ожидающего add и одного remove на пару (team, user)
func OutboxDedupKey(eventType string, teamID, userID uint) string {
	return fmt.Sprintf("%s:%d:%d", eventType, teamID, userID)
}

// MarkProcessed отмечает событие успешно обработанным
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.ProcessedAt = &now
	e.LastError = nil
}

// MarkFailed фиксирует неудачную попытку: счетчик растет, текст ошибки
// обрезается до предела, ProcessedAt остается NULL
func (e *OutboxEvent) MarkFailed(err error) {
	e.RetryCount++
	msg := err.Error()
	if len(msg) > MaxLastErrorLength {
		msg = msg[:MaxLastErrorLength]
	}
	e.LastError = &msg
}
