package repository

import (
	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// ConsentRecordRepository интерфейс для работы с записями согласий.
// Таблица append-only: интерфейс намеренно не содержит Update и Delete.
type ConsentRecordRepository interface {
	// Create сохраняет новую запись согласия в транзакции вызывающего.
	// Повторное согласие с той же версией -> apperrors.ErrConflict.
	Create(tx *gorm.DB, record *entity.ConsentRecord) error

	// GetConsentedVersionIDs возвращает ID версий документов, с которыми
	// пользователь явно согласился
	GetConsentedVersionIDs(userID uint) (map[uint]struct{}, error)

	// GetConsentMapForUsers возвращает согласия сразу для многих пользователей
	// одним запросом: userID -> множество versionID. Каждый запрошенный
	// пользователь присутствует в результате, даже если согласий нет.
	GetConsentMapForUsers(userIDs []uint) (map[uint]map[uint]struct{}, error)
}
