package entity

import "time"

// Имена системных ролей
const (
	RoleBoard     = "Board"
	RoleVolunteer = "Volunteer"
)

// RoleAssignment — назначение роли пользователю на временной интервал.
// Допускается несколько одновременно действующих назначений.
type RoleAssignment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	RoleName string `gorm:"size:50;not null;index" json:"role_name"`

	// ValidFrom — начало действия роли (включительно)
	ValidFrom time.Time `gorm:"not null" json:"valid_from"`

	// ValidTo — конец действия роли (исключительно). NULL = бессрочно.
	ValidTo *time.Time `json:"valid_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (RoleAssignment) TableName() string {
	return "role_assignments"
}

// IsActiveAt сообщает, действует ли назначение в момент now.
// Интервал полуоткрытый: ValidFrom <= now < ValidTo.
func (ra *RoleAssignment) IsActiveAt(now time.Time) bool {
	if now.Before(ra.ValidFrom) {
		return false
	}
	if ra.ValidTo != nil && !now.Before(*ra.ValidTo) {
		return false
	}
	return true
}
