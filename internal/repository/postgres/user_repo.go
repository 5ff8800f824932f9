package postgres

import (
	"errors"
	"fmt"

	"github.com/yourusername/membership-api/internal/domain/entity"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByIDs возвращает пользователей по списку ID одним запросом
func (r *UserRepo) GetByIDs(ids []uint) ([]*entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*entity.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return users, nil
}

// GetDisplayNames возвращает отображаемые имена пользователей одним запросом
func (r *UserRepo) GetDisplayNames(ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID          uint
		DisplayName string
	}
	err := r.db.Model(&entity.User{}).
		Select("id", "display_name").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get display names: %w", err)
	}

	for _, row := range rows {
		names[row.ID] = row.DisplayName
	}
	return names, nil
}
