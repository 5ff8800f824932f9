package entity

import "time"

// Profile хранит флаги членства пользователя.
// IsApproved и IsSuspended влияют на статус, но не участвуют в логике ролей и согласий.
type Profile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`

	// IsApproved — заявка пользователя одобрена (до одобрения статус Pending)
	IsApproved bool `gorm:"not null;default:false" json:"is_approved"`

	// IsSuspended — пользователь заблокирован администратором
	IsSuspended bool `gorm:"not null;default:false" json:"is_suspended"`

	// LastConsentReminderSentAt — когда в последний раз отправляли напоминание
	// о повторном согласии (троттлинг рассылки)
	LastConsentReminderSentAt *time.Time `json:"last_consent_reminder_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Profile) TableName() string {
	return "profiles"
}
