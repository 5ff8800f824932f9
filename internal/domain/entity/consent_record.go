package entity

import "time"

// ConsentRecord — неизменяемая запись о согласии пользователя с версией документа.
// Таблица append-only: обновления и удаления запрещены триггером в БД.
// В нормальной работе не более одной записи на пару (user, document_version).
type ConsentRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index;uniqueIndex:idx_consent_user_version" json:"user_id"`
	DocumentVersionID uint      `gorm:"not null;uniqueIndex:idx_consent_user_version" json:"document_version_id"`
	ConsentedAt       time.Time `gorm:"not null" json:"consented_at"`

	// ExplicitConsent — пользователь явно поставил галочку.
	// Только явные согласия учитываются при вычислении статуса.
	ExplicitConsent bool `gorm:"not null;default:false" json:"explicit_consent"`

	// IPAddress и UserAgent фиксируются для соответствия GDPR
	IPAddress string `gorm:"size:50" json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`

	// ContentHash — хеш текста документа на момент согласия (для верификации)
	ContentHash string `gorm:"size:128" json:"content_hash,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (ConsentRecord) TableName() string {
	return "consent_records"
}
