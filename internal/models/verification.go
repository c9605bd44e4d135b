package models

import "time"

// VerificationType is the purpose a one-time code was issued for.
type VerificationType string

const (
	VerificationLogin    VerificationType = "login"
	VerificationRegister VerificationType = "register"
)

// Valid reports whether t is a known verification purpose.
func (t VerificationType) Valid() bool {
	return t == VerificationLogin || t == VerificationRegister
}

// VerificationCode keeps track of one-time codes sent to phones.
// Used only ever flips from false to true.
type VerificationCode struct {
	BaseModel
	Phone     string           `gorm:"index:idx_verification_lookup;not null" json:"phone"`
	Code      string           `gorm:"index:idx_verification_lookup;size:6;not null" json:"-"`
	Type      VerificationType `gorm:"index:idx_verification_lookup;size:16;not null" json:"type"`
	ExpiresAt time.Time        `gorm:"not null" json:"expires_at"`
	Used      bool             `gorm:"not null;default:false" json:"used"`
}

// RegistrationTicket records that a phone passed the first registration
// step. It is consumed exactly once by the second step.
type RegistrationTicket struct {
	BaseModel
	Phone     string     `gorm:"index;not null" json:"phone"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
