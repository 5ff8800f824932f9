package entity

import "time"

// LegalDocument — юридический документ с версиями (устав, политика конфиденциальности и т.п.).
// Scope документа задается через TeamID: документ обязателен для участников этой команды.
// Глобальные документы привязаны к системной команде Volunteers.
type LegalDocument struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:200;not null" json:"title"`
	Slug  string `gorm:"size:100;not null;unique" json:"slug"`

	// TeamID — команда, для участников которой документ обязателен
	TeamID uint `gorm:"not null;index" json:"team_id"`

	// IsRequired — без согласия с этим документом членство неполно
	IsRequired bool `gorm:"not null;default:false" json:"is_required"`

	// IsActive — документ действует; неактивные документы не проверяются
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// GracePeriodDays — сколько дней после вступления версии в силу
	// отсутствие согласия еще не считается просроченным
	GracePeriodDays int `gorm:"not null;default:0" json:"grace_period_days"`

	Versions []DocumentVersion `gorm:"foreignKey:LegalDocumentID" json:"versions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (LegalDocument) TableName() string {
	return "legal_documents"
}

// DocumentVersion — конкретная версия юридического документа.
// EffectiveFrom строго возрастает в пределах одного документа,
// поэтому "текущая" версия определяется однозначно.
type DocumentVersion struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	LegalDocumentID uint          `gorm:"not null;index" json:"legal_document_id"`
	LegalDocument   LegalDocument `gorm:"foreignKey:LegalDocumentID" json:"-"`

	VersionNumber string `gorm:"size:20;not null" json:"version_number"`

	// CommitSha — коммит в git-репозитории документов, из которого синхронизирована версия
	CommitSha string `gorm:"size:64" json:"commit_sha,omitempty"`

	Content string `gorm:"type:text" json:"content,omitempty"`

	// EffectiveFrom — момент вступления версии в силу
	EffectiveFrom time.Time `gorm:"not null" json:"effective_from"`

	// RequiresReConsent — версия требует повторного согласия от уже согласившихся
	RequiresReConsent bool `gorm:"not null;default:false" json:"requires_re_consent"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (DocumentVersion) TableName() string {
	return "document_versions"
}

// ConsentDeadline возвращает момент, после которого отсутствие согласия
// считается просроченным: EffectiveFrom + грейс-период документа.
func (v *DocumentVersion) ConsentDeadline() time.Time {
	return v.EffectiveFrom.AddDate(0, 0, v.LegalDocument.GracePeriodDays)
}

// ConsentExpiredAt сообщает, истек ли дедлайн согласия к моменту now
func (v *DocumentVersion) ConsentExpiredAt(now time.Time) bool {
	return !v.ConsentDeadline().After(now)
}
