package repository

import (
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// ProfileRepository интерфейс для работы с профилями членства
type ProfileRepository interface {
	// GetByUserID возвращает профиль пользователя или apperrors.ErrNotFound
	GetByUserID(userID uint) (*entity.Profile, error)

	// GetApprovedUserIDs возвращает ID всех одобренных и не заблокированных пользователей
	GetApprovedUserIDs() ([]uint, error)

	// CountPendingApproval возвращает число профилей, ожидающих одобрения
	CountPendingApproval() (int64, error)

	// SetReminderSentAt записывает момент отправки напоминания о согласии
	// в транзакции вызывающего
	SetReminderSentAt(tx *gorm.DB, userID uint, sentAt time.Time) error
}
