// Package session issues and validates the signed admin session token carried
// in the admin cookie, and verifies the single admin credential.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCookieName = "admin_session"
	DefaultTTL        = 12 * time.Hour

	issuer           = "event-registration"
	revokedKeyPrefix = "session:revoked:"
)

var (
	ErrInvalidSession = errors.New("session: invalid or expired session")
	ErrRevoked        = errors.New("session: session has been revoked")
)

// RevocationStore remembers revoked token IDs until they would have expired.
type RevocationStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"adm"`
}

type Config struct {
	Secret string
	TTL    time.Duration
}

type Manager struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

func NewManager(cfg Config, revocations RevocationStore) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session: secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	return &Manager{
		secret:      []byte(cfg.Secret),
		ttl:         cfg.TTL,
		revocations: revocations,
		now:         time.Now,
	}, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new admin session for subject.
func (m *Manager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Admin: true,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Validate checks signature, expiry, the admin flag and the revocation list.
func (m *Manager) Validate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || !claims.Admin {
		return nil, ErrInvalidSession
	}

	if m.revocations != nil {
		revoked, err := m.revocations.Get(ctx, revokedKeyPrefix+claims.ID)
		if err != nil {
			return nil, fmt.Errorf("session: revocation lookup: %w", err)
		}
		if revoked != "" {
			return nil, ErrRevoked
		}
	}

	return claims, nil
}

// Revoke blocks the token until its natural expiry.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revocations == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}

	return m.revocations.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl)
}

// Authenticator verifies the single admin credential. The configured password
// may be plain text or a bcrypt hash.
type Authenticator struct {
	username     string
	passwordHash []byte
}

func NewAuthenticator(username, password string) (*Authenticator, error) {
	if username == "" || password == "" {
		return nil, errors.New("session: admin username and password are required")
	}

	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("session: hash admin password: %w", err)
		}
	}

	return &Authenticator{username: username, passwordHash: hash}, nil
}

func (a *Authenticator) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
