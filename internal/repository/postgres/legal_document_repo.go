package postgres

import (
	"fmt"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// LegalDocumentRepo реализует repository.LegalDocumentRepository
type LegalDocumentRepo struct {
	db *gorm.DB
}

// NewLegalDocumentRepo создает новый репозиторий документов
func NewLegalDocumentRepo(db *gorm.DB) *LegalDocumentRepo {
	return &LegalDocumentRepo{db: db}
}

// GetRequiredCurrentVersions возвращает текущую версию каждого активного
// обязательного документа команды: версию с наибольшим effective_from <= now.
// DISTINCT ON опирается на строго возрастающий effective_from внутри документа.
func (r *LegalDocumentRepo) GetRequiredCurrentVersions(teamID uint, now time.Time) ([]entity.DocumentVersion, error) {
	var versionIDs []uint
	err := r.db.Raw(`
		SELECT DISTINCT ON (dv.legal_document_id) dv.id
		FROM document_versions dv
		JOIN legal_documents d ON d.id = dv.legal_document_id
		WHERE d.is_required = TRUE
		  AND d.is_active = TRUE
		  AND d.team_id = ?
		  AND dv.effective_from <= ?
		ORDER BY dv.legal_document_id, dv.effective_from DESC
	`, teamID, now).Pluck("id", &versionIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select current required versions: %w", err)
	}

	if len(versionIDs) == 0 {
		return nil, nil
	}

	var versions []entity.DocumentVersion
	err = r.db.Preload("LegalDocument").
		Where("id IN ?", versionIDs).
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load required versions: %w", err)
	}
	return versions, nil
}
