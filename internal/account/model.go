package account

import "time"

// Role is the coarse authorization level embedded in access tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is the durable user record, keyed by canonical key. One row per
// federated identity (or per local email for password accounts).
//
// CurrentRefreshToken holds the single active refresh token string; empty
// means no refresh session. Replacing it invalidates the previous refresh
// token, which is the whole revocation mechanism for reissue.
type Account struct {
	ID                  string
	CanonicalKey        string
	Email               string
	DisplayName         string
	AvatarURL           string
	Role                Role
	PasswordHash        string
	CurrentRefreshToken string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// Withdrawn reports whether the account has been soft-deleted.
func (a *Account) Withdrawn() bool {
	return a.DeletedAt != nil
}
