package entity

// MembershipStatus — вычисляемый статус членства пользователя.
// Статус нигде не хранится: он выводится из профиля, ролей и согласий
// на конкретный момент времени.
type MembershipStatus string

const (
	// MembershipStatusNone — профиля нет или нет ни одной активной роли
	MembershipStatusNone MembershipStatus = "none"

	// MembershipStatusPending — заявка подана, но еще не одобрена
	MembershipStatusPending MembershipStatus = "pending"

	// MembershipStatusActive — полноправный участник
	MembershipStatusActive MembershipStatus = "active"

	// MembershipStatusInactive — членство приостановлено из-за просроченного
	// согласия с обязательным документом; восстанавливается согласием
	MembershipStatusInactive MembershipStatus = "inactive"

	// MembershipStatusSuspended — заблокирован администратором
	MembershipStatusSuspended MembershipStatus = "suspended"
)
