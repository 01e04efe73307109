package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "starprint"

// Station roles
const (
	RoleClerk = "clerk"
	RoleAdmin = "admin"
)

// StationClaims identifies the counter terminal that is allowed to print.
type StationClaims struct {
	Station string `json:"station"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles station token generation and validation
type JWTManager struct {
	secretKey []byte
	expiry    time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secret),
		expiry:    expiry,
	}
}

// GenerateStationToken issues a token for a counter station.
func (m *JWTManager) GenerateStationToken(station, role string) (string, error) {
	if station == "" {
		return "", errors.New("station is required")
	}
	if role == "" {
		role = RoleClerk
	}

	now := time.Now()
	claims := &StationClaims{
		Station: station,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   station,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateStationToken validates a station token and returns its claims
func (m *JWTManager) ValidateStationToken(tokenString string) (*StationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*StationClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Station == "" {
		return nil, errors.New("token has no station")
	}

	return claims, nil
}
