package services

import "errors"

var (
	ErrTooManyRequests    = errors.New("too many verification codes requested, try again later")
	ErrInvalidCode        = errors.New("verification code is invalid or expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPhoneRegistered    = errors.New("phone number is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrUnknownCodeType    = errors.New("unknown verification code type")
	ErrPhoneNotRegistered = errors.New("phone number is not registered")
	ErrInvalidTicket      = errors.New("registration ticket is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderForbidden     = errors.New("order belongs to another user")
	ErrIllegalTransition  = errors.New("order status does not allow this operation")
	ErrDownloadFailed     = errors.New("failed to render order download")
	ErrInvalidOrder       = errors.New("order input is invalid")
)
