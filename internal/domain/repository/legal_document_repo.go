package repository

import (
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
)

// LegalDocumentRepository интерфейс для чтения юридических документов
type LegalDocumentRepository interface {
	// GetRequiredCurrentVersions возвращает по одной "текущей" версии на каждый
	// активный обязательный документ команды teamID: версию с наибольшим
	// EffectiveFrom <= now. LegalDocument подгружен у каждой версии.
	GetRequiredCurrentVersions(teamID uint, now time.Time) ([]entity.DocumentVersion, error)
}
