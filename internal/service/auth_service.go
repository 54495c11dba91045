package service

import (
	"adaudit/internal/model"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ownerNamespace scopes the name-based owner ids so they stay stable across logins
var ownerNamespace = uuid.MustParse("6f1b3c52-7d0e-4e0b-9a57-2f4c8b1de3a1")

const tokenLifetime = 7 * 24 * time.Hour

// AuthService issues and validates owner tokens
type AuthService struct {
	users     map[string]string
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new auth service for the given user:password table
func NewAuthService(secret string, users map[string]string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
		now:       time.Now,
	}
}

// OwnerID returns the stable owner id for a username
func OwnerID(username string) string {
	return uuid.NewSHA1(ownerNamespace, []byte(username)).String()
}

// Login validates credentials and returns an owner token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	want, ok := s.users[username]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	ownerID := OwnerID(username)
	token, err := s.GenerateToken(ownerID, username)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:   token,
		OwnerID: ownerID,
	}, nil
}

// GenerateToken signs an owner token
func (s *AuthService) GenerateToken(ownerID, username string) (string, error) {
	now := s.now()
	claims := &model.OwnerClaims{
		OwnerID:  ownerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates an owner JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OwnerClaims)
	if !ok || !token.Valid || claims.OwnerID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
