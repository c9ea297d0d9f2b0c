package service

import (
	"log/slog"
	"time"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/lib/logger/sl"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload of a session credential.
type TokenClaims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	DoctorID int64  `json:"doctorId,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger
}

func NewAuthService(secret string, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// IdentityFromToken validates the signature and expiry of a bearer token
// and extracts the connection identity. Every failure collapses to a
// generic unauthorized error; callers never learn why a credential was
// rejected.
func (s *AuthService) IdentityFromToken(tokenString string) (domain.Identity, error) {
	if tokenString == "" {
		return domain.Identity{}, ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil {
		s.log.Debug("token rejected", sl.Err(err))
		return domain.Identity{}, ErrUnauthorized
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, ErrUnauthorized
	}

	return domain.NewIdentity(claims.Email, domain.Role(claims.Role), claims.DoctorID), nil
}

// GenerateToken signs a session credential for the given identity.
func (s *AuthService) GenerateToken(email string, role domain.Role, doctorID int64) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		Email:    email,
		Role:     string(role),
		DoctorID: doctorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "medicall",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
