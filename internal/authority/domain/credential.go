package domain

import "time"

// Credential is a locally stored login record. Records are provisioned out
// of band and read-only to the session authority; only the password-change
// flow rewrites one.
type Credential struct {
	ID                 string
	Email              string
	SecretHash         string // argon2id encoded
	DisplayName        string
	RoleLabel          string // human-readable, mapped via MapLocalRoleLabel
	TenantID           string
	TenantName         string
	MustChangePassword bool
	TOTPSecret         string // base32 encoded; empty when MFA is not enrolled
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
