// Package auth signs staff in, resolves bearer tokens back to profiles and
// decides which back-office pages each role may open.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("too many sign-in attempts")
)

// LoginLimiter reports whether another sign-in attempt for key is allowed.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Options struct {
	Secret     string
	SessionTTL time.Duration
	Limiter    LoginLimiter
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	users    repository.UserRepository
	secret   []byte
	ttl      time.Duration
	limiter  LoginLimiter
	cost     int
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(users repository.UserRepository, opts Options, logger *slog.Logger) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		secret:   []byte(opts.Secret),
		ttl:      opts.SessionTTL,
		limiter:  opts.Limiter,
		cost:     cost,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.logger.Warn("login limiter unavailable", "error", err)
		} else if !ok {
			return nil, ErrRateLimited
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidInput) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.UID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user signed in", "uid", user.UID, "role", user.Role)
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Resolve validates a bearer token and loads the profile it names. A
// missing profile or an unknown role is treated as signed out.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetByUID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: profile not found", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if !user.Role.Valid() {
		return nil, fmt.Errorf("%w: unrecognized role %q", ErrUnauthorized, user.Role)
	}
	return user, nil
}

type NewUserInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     models.Role `json:"role" validate:"required"`
}

func (s *Service) CreateUser(ctx context.Context, in NewUserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", repository.ErrInvalidInput, in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UID:          uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap ADMIN account unless the email is
// already registered.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	user, err := s.CreateUser(ctx, NewUserInput{Email: email, Password: password, Role: models.RoleAdmin})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", "uid", user.UID, "email", user.Email)
	return nil
}

type ctxKey struct{}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*models.User)
	return user, ok && user != nil
}
