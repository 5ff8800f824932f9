package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// ProfileRepo реализует repository.ProfileRepository
type ProfileRepo struct {
	db *gorm.DB
}

// NewProfileRepo создает новый репозиторий профилей
func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByUserID возвращает профиль пользователя
func (r *ProfileRepo) GetByUserID(userID uint) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// GetApprovedUserIDs возвращает ID одобренных и не заблокированных пользователей
func (r *ProfileRepo) GetApprovedUserIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.Profile{}).
		Where("is_approved = ? AND is_suspended = ?", true, false).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get approved user ids: %w", err)
	}
	return ids, nil
}

// CountPendingApproval возвращает число профилей, ожидающих одобрения
func (r *ProfileRepo) CountPendingApproval() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Profile{}).
		Where("is_approved = ? AND is_suspended = ?", false, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending profiles: %w", err)
	}
	return count, nil
}

// SetReminderSentAt записывает момент отправки напоминания в транзакции вызывающего
func (r *ProfileRepo) SetReminderSentAt(tx *gorm.DB, userID uint, sentAt time.Time) error {
	err := tx.Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Update("last_consent_reminder_sent_at", sentAt).Error
	if err != nil {
		return fmt.Errorf("failed to set reminder sent at: %w", err)
	}
	return nil
}
