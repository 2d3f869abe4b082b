package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 綁定外部 OAuth 身分 (OpenID)。
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OpenID            string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"openId"`
	Name              *string   `gorm:"type:text" json:"name"`
	Email             *string   `gorm:"type:varchar(320)" json:"email"`
	LoginMethod       *string   `gorm:"type:varchar(64)" json:"loginMethod"`
	Role              Role      `gorm:"type:varchar(16);not null;default:user" json:"role"`
	PreferredLanguage *string   `gorm:"type:varchar(8)" json:"preferredLanguage"`
	StripeCustomerID  *string   `gorm:"type:varchar(255)" json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	LastSignedIn      time.Time `json:"lastSignedIn"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) DisplayName() string {
	if u == nil || u.Name == nil {
		return ""
	}
	return *u.Name
}

func (u *User) EmailAddress() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}
