package repository

import (
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"gorm.io/gorm"
)

// TeamRepository интерфейс для работы с командами и их участниками
type TeamRepository interface {
	// GetSystemTeam возвращает системную команду указанного типа вместе
	// с активными участниками (LeftAt IS NULL) или apperrors.ErrNotFound
	GetSystemTeam(systemType entity.SystemTeamType) (*entity.Team, error)

	// GetLeadUserIDsOfRegularTeams возвращает ID пользователей, являющихся
	// лидами хотя бы одной обычной (несистемной) команды
	GetLeadUserIDsOfRegularTeams() ([]uint, error)

	// CreateMember добавляет строку участия в транзакции вызывающего
	CreateMember(tx *gorm.DB, member *entity.TeamMember) error

	// MarkMemberLeft проставляет LeftAt у существующей строки участия.
	// Повторное вступление создает новую строку, старая не воскрешается.
	MarkMemberLeft(tx *gorm.DB, memberID uint, leftAt time.Time) error

	// TouchUpdatedAt обновляет метку изменения команды в транзакции вызывающего
	TouchUpdatedAt(tx *gorm.DB, teamID uint, now time.Time) error
}
