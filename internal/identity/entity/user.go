package entity

import "time"

// User is a service user. Credentials live in the identity provider.
type User struct {
	ID             string
	KeycloakID     string
	Username       string
	Name           string
	Email          string
	CPF            string
	Phone          string
	RoleID         string
	Establishments []Establishment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EstablishmentIDs returns the ids of the user establishments.
func (u User) EstablishmentIDs() []string {
	ids := make([]string, len(u.Establishments))
	for i, e := range u.Establishments {
		ids[i] = e.ID
	}
	return ids
}

// Establishment is a tenant unit a user may act on.
type Establishment struct {
	ID   string
	Name string
}

// ResetToken is a pending password reset. Only the token hash is stored.
type ResetToken struct {
	ID        int64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t ResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// UserPatch carries an update. Nil RoleID or Establishments keep the current value.
type UserPatch struct {
	ID             string
	Username       string
	Name           string
	Email          string
	CPF            string
	Phone          string
	RoleID         *string
	Establishments []string
}

// UserListFilter selects a page of users.
type UserListFilter struct {
	Search string
	Limit  int
	Offset int
}
