package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

var ErrBadCreds = errs.Unauthenticated("invalid email or password")

type AuthService struct {
	Users     *repos.UserRepo
	JWTSecret string
	TokenTTL  time.Duration
	Timeout   time.Duration
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, errs.Validation("invalid email address")
	}
	if !validate.Password(in.Password) {
		return nil, errs.Validation("password does not meet requirements")
	}
	first, ok := validate.Name(in.FirstName)
	if !ok {
		return nil, errs.Validation("first name is required")
	}
	last, ok := validate.Name(in.LastName)
	if !ok {
		return nil, errs.Validation("last name is required")
	}
	if in.Role != domain.RoleCustomer && in.Role != domain.RoleCraftsman {
		return nil, errs.Validation("role must be customer or craftsman")
	}

	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, errs.Validation("email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Transient("check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		Hash:           string(hash),
		Role:           in.Role,
		FirstName:      first,
		LastName:       last,
		Phone:          in.Phone,
		CategoriesJSON: "[]",
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, errs.Transient("create user", err)
	}
	return u, nil
}

// Login verifies credentials, binds the session and issues a bearer token
// for API clients.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, string, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, "", errs.Transient("bind session", err)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()
	return s.Users.SessionUser(ctx, sid)
}

func (s *AuthService) issueToken(u *domain.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// UserFromToken resolves a bearer token to its user.
func (s *AuthService) UserFromToken(ctx context.Context, tokenString string) (*domain.User, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errs.Unauthenticated("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errs.Unauthenticated("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, errs.Unauthenticated("invalid token claims")
	}
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, errs.Unauthenticated("unknown user")
	}
	return u, nil
}
