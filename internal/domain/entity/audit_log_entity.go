package entity

import "time"

// Audit actions written by the credential flow.
const (
	AuditRegister                   = "register"
	AuditLoginSuccessful            = "login_successful"
	AuditLoginFailedUserNotFound    = "login_failed_user_not_found"
	AuditLoginFailedInvalidPassword = "login_failed_invalid_password"
)

// AuditLog is an insert-only record of a security relevant event.
// UserID is nil when the subject could not be resolved.
type AuditLog struct {
	ID        string
	Action    string
	IPAddress string
	UserAgent string
	UserID    *string
	CreatedAt time.Time
}
