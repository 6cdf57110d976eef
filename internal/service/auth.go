package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Claims is the JWT payload attached to a session token.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Auth implements signup, login, and token verification.
type Auth struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

// NewAuth constructs an Auth service.
func NewAuth(users UserStore, secret string, ttl time.Duration) *Auth {
	return &Auth{users: users, secret: []byte(secret), ttl: ttl}
}

// SignUp registers a new account with the given role.
func (a *Auth) SignUp(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !isValidEmail(email) {
		return nil, apperror.New(apperror.Validation, "email is not a valid email address")
	}
	if len(password) < 8 {
		return nil, apperror.New(apperror.Validation, "password must be at least 8 characters")
	}
	if !role.Valid() {
		return nil, apperror.Newf(apperror.Validation, "role must be %q or %q", model.RoleUser, model.RoleLister)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, PasswordHash: string(hash), Role: role}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LogIn verifies credentials and returns a signed session token. Bad email
// and bad password are indistinguishable to the caller.
func (a *Auth) LogIn(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.NotFound) {
			return "", nil, apperror.New(apperror.Authorization, "invalid email or password")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperror.New(apperror.Authorization, "invalid email or password")
	}

	now := time.Now()
	claims := &Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ParseToken verifies a session token and returns the identity it carries.
func (a *Auth) ParseToken(tokenStr string) (*model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, apperror.New(apperror.Authorization, "invalid or expired token")
	}
	return &model.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
