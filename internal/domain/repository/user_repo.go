package repository

import "github.com/yourusername/membership-api/internal/domain/entity"

// UserRepository интерфейс для чтения пользователей
type UserRepository interface {
	// GetByID возвращает пользователя по ID
	GetByID(id uint) (*entity.User, error)

	// GetByIDs возвращает пользователей по списку ID одним запросом
	GetByIDs(ids []uint) ([]*entity.User, error)

	// GetDisplayNames возвращает отображаемые имена пользователей одним запросом.
	// Отсутствующие пользователи просто не попадают в результат.
	GetDisplayNames(ids []uint) (map[uint]string, error)
}
