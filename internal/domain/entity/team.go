package entity

import "time"

// SystemTeamType помечает команды, состав которых вычисляется системой.
// Закрытый набор; пустая строка означает обычную команду с ручным составом.
type SystemTeamType string

const (
	// SystemTeamNone — обычная команда, состав редактируется вручную
	SystemTeamNone SystemTeamType = ""

	// SystemTeamVolunteers — все пользователи со всеми обязательными согласиями
	SystemTeamVolunteers SystemTeamType = "volunteers"

	// SystemTeamBoard — все пользователи с активной ролью Board
	SystemTeamBoard SystemTeamType = "board"

	// SystemTeamTeamLeads — лиды всех обычных команд
	SystemTeamTeamLeads SystemTeamType = "team_leads"
)

// Роли участника внутри команды
const (
	TeamMemberRoleMember = "member"
	TeamMemberRoleLead   = "lead"
)

// Team — команда сообщества. Для системных команд состав пересчитывается
// движком синхронизации, ручные правки перезаписываются.
type Team struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;not null;unique" json:"slug"`

	SystemTeamType SystemTeamType `gorm:"size:30;not null;default:'';index" json:"system_team_type"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Team) TableName() string {
	return "teams"
}

// TeamMember — участие пользователя в команде. История сохраняется через LeftAt:
// строки никогда не удаляются, повторное вступление создает новую строку.
type TeamMember struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TeamID uint   `gorm:"not null;index:idx_team_members_team_left" json:"team_id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Role   string `gorm:"size:20;not null;default:'member'" json:"role"`

	JoinedAt time.Time `gorm:"not null" json:"joined_at"`

	// LeftAt — момент выхода из команды. NULL = участник активен.
	// Поле монотонно: однажды установленное, оно не сбрасывается.
	LeftAt *time.Time `gorm:"index:idx_team_members_team_left" json:"left_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (TeamMember) TableName() string {
	return "team_members"
}

// IsActive сообщает, состоит ли участник в команде сейчас
func (tm *TeamMember) IsActive() bool {
	return tm.LeftAt == nil
}
