package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

// ErrAccountNotFound reports a username with no staff account.
var ErrAccountNotFound = errors.New("account not found")

// Account is one staff login identity.
type Account struct {
	StaffID      string
	Username     string
	PasswordHash string
	DisplayName  string
	Role         club.Role
}

// AccountStore resolves and persists staff accounts.
type AccountStore interface {
	GetAccountByUsername(ctx context.Context, username string) (Account, error)
	InsertAccount(ctx context.Context, account Account) (Account, error)
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
