package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// TeamRepo реализует repository.TeamRepository
type TeamRepo struct {
	db *gorm.DB
}

// NewTeamRepo создает новый репозиторий команд
func NewTeamRepo(db *gorm.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

// GetSystemTeam возвращает системную команду с активными участниками
func (r *TeamRepo) GetSystemTeam(systemType entity.SystemTeamType) (*entity.Team, error) {
	var team entity.Team
	err := r.db.
		Preload("Members", "left_at IS NULL").
		Where("system_team_type = ?", systemType).
		First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get system team %s: %w", systemType, err)
	}
	return &team, nil
}

// GetLeadUserIDsOfRegularTeams возвращает ID лидов обычных команд
func (r *TeamRepo) GetLeadUserIDsOfRegularTeams() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.TeamMember{}).
		Distinct("team_members.user_id").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.left_at IS NULL AND team_members.role = ? AND teams.system_team_type = ?",
			entity.TeamMemberRoleLead, entity.SystemTeamNone).
		Pluck("team_members.user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get lead user ids: %w", err)
	}
	return ids, nil
}

// CreateMember добавляет строку участия в транзакции вызывающего
func (r *TeamRepo) CreateMember(tx *gorm.DB, member *entity.TeamMember) error {
	if err := tx.Create(member).Error; err != nil {
		return fmt.Errorf("failed to create team member: %w", err)
	}
	return nil
}

// MarkMemberLeft проставляет LeftAt у строки участия
func (r *TeamRepo) MarkMemberLeft(tx *gorm.DB, memberID uint, leftAt time.Time) error {
	result := tx.Model(&entity.TeamMember{}).
		Where("id = ? AND left_at IS NULL", memberID).
		Update("left_at", leftAt)
	if result.Error != nil {
		return fmt.Errorf("failed to mark member left: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// TouchUpdatedAt обновляет метку изменения команды
func (r *TeamRepo) TouchUpdatedAt(tx *gorm.DB, teamID uint, now time.Time) error {
	err := tx.Model(&entity.Team{}).
		Where("id = ?", teamID).
		Update("updated_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to touch team updated_at: %w", err)
	}
	return nil
}
