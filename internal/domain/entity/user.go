package entity

import "time"

// User представляет пользователя сообщества.
// Аутентификация живет во внешнем сервисе, здесь храним только идентичность.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:50;not null;unique" json:"username"`
	Email       string    `gorm:"size:100;not null;unique" json:"email"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}
