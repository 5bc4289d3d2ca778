package utils

import (
	"fmt"
	"os"

	"github.com/dgrijalva/jwt-go"
)

// ValidateToken parses and verifies a bearer token and returns its claims.
func ValidateToken(tokenString string) (jwt.MapClaims, error) {
	secretKey := os.Getenv("JWT_SECRET")
	if secretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("error parsing token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ExtractUsernameFromToken returns the username claim of a verified token.
func ExtractUsernameFromToken(tokenString string) (string, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	username, exists := claims["username"]
	if !exists {
		return "", fmt.Errorf("username claim not found in token")
	}

	name, ok := username.(string)
	if !ok {
		return "", fmt.Errorf("username claim is not a string")
	}
	return name, nil
}
