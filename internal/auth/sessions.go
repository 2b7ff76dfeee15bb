package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

const defaultTokenTTL = 12 * time.Hour

// ErrInvalidToken reports a token that is malformed, expired, or revoked.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the JWT payload carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// Identity is the authenticated caller extracted from a valid token.
type Identity struct {
	StaffID     string
	DisplayName string
	Role        club.Role
	TokenID     string
}

// Actor converts the identity into a domain actor.
func (identity Identity) Actor() (club.Actor, error) {
	staffID, err := club.NewStaffID(identity.StaffID)
	if err != nil {
		return club.Actor{}, err
	}
	return club.Actor{StaffID: staffID, Role: identity.Role}, nil
}

// Session is the result of a successful login.
type Session struct {
	Token    string
	Identity Identity
}

// Config carries session-signing parameters.
type Config struct {
	SigningKey []byte
	Issuer     string
	TokenTTL   time.Duration
}

// Sessions issues, validates, and revokes staff session tokens.
type Sessions struct {
	accounts   AccountStore
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	nowFn      func() time.Time

	mutex   sync.Mutex
	revoked map[string]time.Time
}

// NewSessions returns a session manager backed by the given account store.
func NewSessions(accounts AccountStore, cfg Config) (*Sessions, error) {
	if accounts == nil {
		return nil, fmt.Errorf("%w: account store is nil", club.ErrInvalidServiceConfig)
	}
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("%w: empty signing key", club.ErrInvalidServiceConfig)
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &Sessions{
		accounts:   accounts,
		signingKey: cfg.SigningKey,
		issuer:     cfg.Issuer,
		tokenTTL:   tokenTTL,
		nowFn:      func() time.Time { return time.Now().UTC() },
		revoked:    map[string]time.Time{},
	}, nil
}

// Login verifies the credentials and issues a signed session token.
// Unknown usernames and wrong passwords produce the same error.
func (sessions *Sessions) Login(ctx context.Context, username string, password string) (Session, error) {
	account, err := sessions.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Session{}, club.ErrInvalidCredentials
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return Session{}, club.ErrInvalidCredentials
	}

	now := sessions.nowFn()
	expiresAt := now.Add(sessions.tokenTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.StaffID,
			Issuer:    sessions.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name: account.DisplayName,
		Role: account.Role.String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sessions.signingKey)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token: signed,
		Identity: Identity{
			StaffID:     account.StaffID,
			DisplayName: account.DisplayName,
			Role:        account.Role,
			TokenID:     claims.ID,
		},
	}, nil
}

// Validate parses the token and returns the caller identity.
func (sessions *Sessions) Validate(token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return sessions.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(sessions.nowFn))
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if sessions.issuer != "" && claims.Issuer != sessions.issuer {
		return Identity{}, ErrInvalidToken
	}
	if sessions.isRevoked(claims.ID) {
		return Identity{}, ErrInvalidToken
	}
	role, err := club.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		StaffID:     claims.Subject,
		DisplayName: claims.Name,
		Role:        role,
		TokenID:     claims.ID,
	}, nil
}

// Logout revokes the token id until its natural expiry.
func (sessions *Sessions) Logout(tokenID string) {
	if tokenID == "" {
		return
	}
	sessions.mutex.Lock()
	defer sessions.mutex.Unlock()
	sessions.revoked[tokenID] = sessions.nowFn().Add(sessions.tokenTTL)
}

func (sessions *Sessions) isRevoked(tokenID string) bool {
	sessions.mutex.Lock()
	defer sessions.mutex.Unlock()
	now := sessions.nowFn()
	for id, expiry := range sessions.revoked {
		if expiry.Before(now) {
			delete(sessions.revoked, id)
		}
	}
	_, revoked := sessions.revoked[tokenID]
	return revoked
}
