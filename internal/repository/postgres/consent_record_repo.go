package postgres

import (
	"errors"
	"fmt"

	"github.com/yourusername/membership-api/internal/domain/entity"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// ConsentRecordRepo реализует repository.ConsentRecordRepository.
// Таблица append-only, поэтому здесь нет Update и Delete;
// неизменяемость дополнительно гарантирует триггер в БД.
type ConsentRecordRepo struct {
	db *gorm.DB
}

// NewConsentRecordRepo создает новый репозиторий согласий
func NewConsentRecordRepo(db *gorm.DB) *ConsentRecordRepo {
	return &ConsentRecordRepo{db: db}
}

// Create сохраняет новую запись согласия в транзакции вызывающего
func (r *ConsentRecordRepo) Create(tx *gorm.DB, record *entity.ConsentRecord) error {
	if err := tx.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create consent record: %w", err)
	}
	return nil
}

// GetConsentedVersionIDs возвращает ID версий, с которыми пользователь явно согласился
func (r *ConsentRecordRepo) GetConsentedVersionIDs(userID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := r.db.Model(&entity.ConsentRecord{}).
		Where("user_id = ? AND explicit_consent = ?", userID, true).
		Pluck("document_version_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get consented versions: %w", err)
	}

	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// GetConsentMapForUsers возвращает согласия для многих пользователей одним запросом.
// Каждый запрошенный пользователь присутствует в результате, даже с пустым множеством —
// так вызывающему не нужно различать "нет согласий" и "нет записи".
func (r *ConsentRecordRepo) GetConsentMapForUsers(userIDs []uint) (map[uint]map[uint]struct{}, error) {
	result := make(map[uint]map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		result[id] = make(map[uint]struct{})
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		UserID            uint
		DocumentVersionID uint
	}
	err := r.db.Model(&entity.ConsentRecord{}).
		Select("user_id", "document_version_id").
		Where("user_id IN ? AND explicit_consent = ?", userIDs, true).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get consent map: %w", err)
	}

	for _, row := range rows {
		result[row.UserID][row.DocumentVersionID] = struct{}{}
	}
	return result, nil
}
