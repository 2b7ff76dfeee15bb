package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

type stubAccounts struct {
	accounts map[string]Account
}

func (store *stubAccounts) GetAccountByUsername(_ context.Context, username string) (Account, error) {
	account, found := store.accounts[username]
	if !found {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (store *stubAccounts) InsertAccount(_ context.Context, account Account) (Account, error) {
	store.accounts[account.Username] = account
	return account, nil
}

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	hash, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	accounts := &stubAccounts{accounts: map[string]Account{
		"staff1": {
			StaffID:      "S001",
			Username:     "staff1",
			PasswordHash: hash,
			DisplayName:  "Zhang San",
			Role:         club.RoleStaff,
		},
	}}
	sessions, err := NewSessions(accounts, Config{
		SigningKey: []byte("test-signing-key"),
		Issuer:     "clubdesk",
		TokenTTL:   time.Hour,
	})
	if err != nil {
		t.Fatalf("sessions init failed: %v", err)
	}
	return sessions
}

func TestLoginIssuesValidToken(t *testing.T) {
	t.Parallel()
	sessions := newTestSessions(t)

	session, err := sessions.Login(context.Background(), "staff1", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Identity.StaffID != "S001" || session.Identity.Role != club.RoleStaff {
		t.Fatalf("unexpected identity: %+v", session.Identity)
	}

	identity, err := sessions.Validate(session.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if identity.StaffID != "S001" || identity.DisplayName != "Zhang San" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	actor, err := identity.Actor()
	if err != nil {
		t.Fatalf("actor failed: %v", err)
	}
	if actor.Role != club.RoleStaff {
		t.Fatalf("unexpected actor role: %s", actor.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	sessions := newTestSessions(t)

	if _, err := sessions.Login(context.Background(), "staff1", "wrong"); !errors.Is(err, club.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := sessions.Login(context.Background(), "nobody", "123456"); !errors.Is(err, club.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()
	sessions := newTestSessions(t)

	session, err := sessions.Login(context.Background(), "staff1", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	sessions.Logout(session.Identity.TokenID)
	if _, err := sessions.Validate(session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	sessions := newTestSessions(t)

	session, err := sessions.Login(context.Background(), "staff1", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	sessions.nowFn = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := sessions.Validate(session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	t.Parallel()
	sessions := newTestSessions(t)
	other := newTestSessions(t)
	other.signingKey = []byte("different-key")

	session, err := other.Login(context.Background(), "staff1", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := sessions.Validate(session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
