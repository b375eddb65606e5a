package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	SessionToken TokenType = "session"
)

// JWTManager issues anonymous session tokens. A token only proves that the
// bearer owns a session ID; there are no user accounts.
type JWTManager struct {
	secretKey   string
	expiryHours int
}

type Claims struct {
	SessionID string    `json:"session_id"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

type SessionTokenResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewJWTManager(secretKey string, expiryHours int) *JWTManager {
	return &JWTManager{
		secretKey:   secretKey,
		expiryHours: expiryHours,
	}
}

// NewSession creates a fresh session ID and a token for it.
func (j *JWTManager) NewSession() (*SessionTokenResponse, error) {
	return j.GenerateToken(uuid.NewString())
}

func (j *JWTManager) GenerateToken(sessionID string) (*SessionTokenResponse, error) {
	now := time.Now()
	expiryTime := now.Add(time.Hour * time.Duration(j.expiryHours))

	claims := &Claims{
		SessionID: sessionID,
		TokenType: SessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiryTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return nil, err
	}

	return &SessionTokenResponse{
		SessionID: sessionID,
		Token:     signed,
		ExpiresAt: expiryTime.UTC(),
	}, nil
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != SessionToken || claims.SessionID == "" {
		return nil, errors.New("invalid token type: expected session token")
	}

	return claims, nil
}
