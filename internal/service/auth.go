package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitrinehq/vitrine/internal/config"
	"github.com/vitrinehq/vitrine/internal/store"
)

var (
	// ErrInvalidCredentials covers every login failure: unknown email, wrong
	// password, disabled account. Callers must not distinguish between them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for any bearer token that does not verify:
	// malformed, expired, bad signature. Verification is total and never panics.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnknownIdentity is returned when a verified token's email resolves to
	// no known administrator.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrNotConfigured is returned when no primary admin is configured. The
	// gate fails fast with a server error instead of guessing at deny/allow.
	ErrNotConfigured = errors.New("admin credentials not configured")
)

// Identity is a resolved administrator. The primary admin comes from static
// configuration and is always a super admin; secondary admins are rows in the
// admins table.
type Identity struct {
	Email        string
	IsSuperAdmin bool
}

// Session is the result of a successful login.
type Session struct {
	Token        string `json:"token"`
	Email        string `json:"email"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthService owns the bearer-token codec and the admin access gate. Tokens
// are stateless HMAC-signed JWTs binding to an admin email; there is no
// server-side session table and no revocation list.
type AuthService struct {
	store    *store.Store
	cfg      config.AuthConfig
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates an AuthService from the immutable auth configuration.
func NewAuthService(st *store.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:    st,
		cfg:      cfg,
		secret:   []byte(cfg.TokenSecret),
		tokenTTL: cfg.TokenTTLOrDefault(),
	}
}

// Configured reports whether a primary admin is configured. When it is not,
// every guarded request must fail with a server-misconfigured error.
func (s *AuthService) Configured() bool {
	return s.cfg.AdminEmail != "" && s.cfg.AdminPassword != ""
}

// TokenTTL returns the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed bearer token binding to the given admin email.
func (s *AuthService) IssueToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "vitrine",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks a bearer token's signature and expiry and returns the
// email claim. Any malformed input yields ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenStr string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// ResolveIdentity maps a claimed email to an administrator identity. The
// configured primary admin resolves without touching storage; anyone else
// must be an active row in the admins table.
func (s *AuthService) ResolveIdentity(ctx context.Context, email string) (*Identity, error) {
	if s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail {
		return &Identity{Email: email, IsSuperAdmin: true}, nil
	}

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, ErrUnknownIdentity
	}
	if !admin.IsActive {
		return nil, ErrUnknownIdentity
	}
	return &Identity{Email: admin.Email, IsSuperAdmin: admin.IsSuperAdmin}, nil
}

// Login authenticates an email/password pair and issues a session token.
// The primary admin pair is compared in constant time; secondary admins are
// verified against their stored bcrypt hash.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	if email == s.cfg.AdminEmail {
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) != 1 {
			return nil, ErrInvalidCredentials
		}
		return s.newSession(email, true)
	}

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	_ = s.store.UpdateAdminLastLogin(ctx, admin.ID)
	return s.newSession(admin.Email, admin.IsSuperAdmin)
}

func (s *AuthService) newSession(email string, super bool) (*Session, error) {
	token, err := s.IssueToken(email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:        token,
		Email:        email,
		IsSuperAdmin: super,
		ExpiresIn:    int(s.tokenTTL.Seconds()),
	}, nil
}

// HashPassword returns the bcrypt hash used for stored admin passwords.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
