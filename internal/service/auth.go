package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/config"
	"github.com/artfeed/backend/internal/db"
	"github.com/artfeed/backend/internal/model"
)

const DefaultSessionLifetime = 24 * time.Hour

var (
	ErrDuplicateLogin      = errors.New("login already taken")
	ErrIncorrectLogin      = errors.New("login not found")
	ErrOldPasswordMismatch = errors.New("old password mismatch")
	ErrSamePassword        = errors.New("new password equals the old one")

	ErrMalformedHeader = errors.New("malformed authorization header")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")

	ErrMisconfigured = errors.New("auth config invalid")
)

// UserStore is the credential store adapter the lifecycle runs against.
type UserStore interface {
	CreateUser(ctx context.Context, login, passwordHash, description string) error
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	UserExists(ctx context.Context, login string) (bool, error)
	CredentialsValid(ctx context.Context, login, passwordHash string) (bool, error)
	UpdatePassword(ctx context.Context, login, passwordHash string) error
	GetAuthorInfo(ctx context.Context, login string) (*model.AuthorInfo, error)
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	store      UserStore
	hasher     PasswordHasher
	jwtSecret  []byte
	sessionTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(store UserStore, hasher PasswordHasher, cfg config.AuthConfig, log zerolog.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if alg := cfg.JWTAlgorithm; alg != "" && alg != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("%w: unsupported JWT_ALGORITHM %q", ErrMisconfigured, alg)
	}

	ttl := DefaultSessionLifetime
	if cfg.JWTTTL != "" {
		parsed, err := time.ParseDuration(cfg.JWTTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JWT_TTL", ErrMisconfigured)
		}
		ttl = parsed
	}

	return &AuthService{
		store:      store,
		hasher:     hasher,
		jwtSecret:  []byte(cfg.JWTSecret),
		sessionTTL: ttl,
		log:        log.With().Str("component", "auth").Logger(),
	}, nil
}

// Register inserts a new user with the hashed password. A second insert
// with the same login fails with ErrDuplicateLogin and mutates nothing.
func (s *AuthService) Register(ctx context.Context, login, password, description string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	if err := s.store.CreateUser(ctx, login, hash, description); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLogin
		}
		s.log.Error().Err(err).Str("op", "register").Str("login", login).Msg("user insert failed")
		return err
	}
	return nil
}

func (s *AuthService) LoginExists(ctx context.Context, login string) (bool, error) {
	return s.store.UserExists(ctx, login)
}

// Authenticate reports whether the login exists and the password matches.
// Absence of the user is a false result, not an error.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (bool, error) {
	if s.hasher.Deterministic() {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return false, err
		}
		return s.store.CredentialsValid(ctx, login, hash)
	}

	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		s.log.Error().Err(err).Str("op", "authenticate").Str("login", login).Msg("user lookup failed")
		return false, err
	}
	return s.hasher.Verify(password, user.PasswordHash), nil
}

// ChangePassword re-derives the user's state from the store and applies
// the checks in order, short-circuiting on the first failure: unknown
// login, old-password mismatch, new password equal to the old one.
func (s *AuthService) ChangePassword(ctx context.Context, login, oldPassword, newPassword string) error {
	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrIncorrectLogin
		}
		s.log.Error().Err(err).Str("op", "change_password").Str("login", login).Msg("user lookup failed")
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return ErrOldPasswordMismatch
	}

	// Raw string comparison on purpose: the check runs before the new
	// password is ever hashed, and bcrypt digests of equal inputs differ.
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, login, hash); err != nil {
		return err
	}
	return nil
}

func (s *AuthService) AuthorInfo(ctx context.Context, login string) (*model.AuthorInfo, error) {
	info, err := s.store.GetAuthorInfo(ctx, login)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrIncorrectLogin
		}
		s.log.Error().Err(err).Str("op", "author_info").Str("login", login).Msg("user lookup failed")
		return nil, err
	}
	return info, nil
}

// IssueSession signs a token binding the login for the configured lifetime.
func (s *AuthService) IssueSession(login string) (string, error) {
	return s.IssueSessionFor(login, s.sessionTTL)
}

func (s *AuthService) IssueSessionFor(login string, lifetime time.Duration) (string, error) {
	claims := sessionClaims{
		Username: login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifySession gates every protected route. The header must carry
// "Bearer <token>" (scheme case-insensitive); the returned subject is
// the verified login and the only identity handlers may trust.
func (s *AuthService) VerifySession(header string) (string, error) {
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrMalformedHeader
	}
	return s.ParseToken(token)
}

// ParseToken checks signature, algorithm and expiry, and returns the
// subject claim. Verification is stateless; there is no revocation.
func (s *AuthService) ParseToken(tokenStr string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
