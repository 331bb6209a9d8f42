package middleware

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// secretKey is read per call, not at init, so a JWT_SECRET loaded from .env
// during startup is picked up.
func secretKey() []byte {
	if val := os.Getenv("JWT_SECRET"); val != "" {
		return []byte(val)
	}
	return []byte("supersecret") // fallback
}

// GenerateToken issues the HS256 token returned on login. Nothing checks it
// on later requests; the client apps only keep it for display state.
func GenerateToken(userID string, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and verifies a token produced by GenerateToken.
func ValidateToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secretKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
