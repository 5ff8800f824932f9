package postgres

import (
	"fmt"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// RoleAssignmentRepo реализует repository.RoleAssignmentRepository
type RoleAssignmentRepo struct {
	db *gorm.DB
}

// NewRoleAssignmentRepo создает новый репозиторий назначений ролей
func NewRoleAssignmentRepo(db *gorm.DB) *RoleAssignmentRepo {
	return &RoleAssignmentRepo{db: db}
}

// HasActiveRole сообщает, есть ли у пользователя активная роль в момент now
func (r *RoleAssignmentRepo) HasActiveRole(userID uint, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&entity.RoleAssignment{}).
		Where("user_id = ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", userID, now, now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check active roles: %w", err)
	}
	return count > 0, nil
}

// GetActiveUserIDs возвращает ID всех пользователей с активной ролью в момент now
func (r *RoleAssignmentRepo) GetActiveUserIDs(now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.RoleAssignment{}).
		Distinct("user_id").
		Where("valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", now, now).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get users with active roles: %w", err)
	}
	return ids, nil
}

// GetActiveUserIDsByRole возвращает ID пользователей с активной ролью roleName
func (r *RoleAssignmentRepo) GetActiveUserIDsByRole(roleName string, now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.RoleAssignment{}).
		Distinct("user_id").
		Where("role_name = ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", roleName, now, now).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get users with role %s: %w", roleName, err)
	}
	return ids, nil
}
