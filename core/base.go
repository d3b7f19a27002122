package core

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Base carries the system-generated identity of a persisted document.
type Base struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Account is the shared base of all credential-bearing principals.
type Account struct {
	Base
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Role         string `json:"role" db:"role"`
	PasswordHash []byte `json:"-" db:"password_hash"`

	// UI state
	FirstLogin bool `json:"first_login" db:"first_login"`
	DarkMode   bool `json:"dark_mode" db:"dark_mode"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// SetPasswordHash carries over an already-hashed password verbatim.
// Used on tutor demotion; re-hashing a hash would lock the account out.
func (a *Account) SetPasswordHash(hash []byte) {
	a.PasswordHash = hash
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}
