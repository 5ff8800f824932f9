package repository

import "time"

// RoleAssignmentRepository интерфейс для чтения назначений ролей.
// Все выборки принимают явный now: активность роли — функция времени.
type RoleAssignmentRepository interface {
	// HasActiveRole сообщает, есть ли у пользователя хотя бы одна роль,
	// действующая в момент now
	HasActiveRole(userID uint, now time.Time) (bool, error)

	// GetActiveUserIDs возвращает ID всех пользователей с хотя бы одной
	// активной ролью в момент now
	GetActiveUserIDs(now time.Time) ([]uint, error)

	// GetActiveUserIDsByRole возвращает ID пользователей с активной ролью roleName
	GetActiveUserIDsByRole(roleName string, now time.Time) ([]uint, error)
}
