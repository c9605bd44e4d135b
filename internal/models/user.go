package models

// User represents a registered traveller.
type User struct {
	BaseModel
	Username     *string `gorm:"uniqueIndex" json:"username"`
	Email        *string `gorm:"uniqueIndex" json:"email"`
	Phone        string  `gorm:"uniqueIndex;not null" json:"phone"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Orders       []Order `json:"orders,omitempty"`
}

// DisplayUsername returns the username or an empty string when unset.
func (u *User) DisplayUsername() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
