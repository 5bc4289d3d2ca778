package utils

import (
	"os"
	"testing"

	"github.com/dgrijalva/jwt-go"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestExtractUsernameFromToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	tokenString := signToken(t, "test-secret", jwt.MapClaims{"username": "jdoe"})

	username, err := ExtractUsernameFromToken(tokenString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "jdoe" {
		t.Errorf("username = %q, want jdoe", username)
	}
}

func TestExtractUsernameRejectsWrongSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	tokenString := signToken(t, "another-secret", jwt.MapClaims{"username": "jdoe"})

	if _, err := ExtractUsernameFromToken(tokenString); err == nil {
		t.Errorf("token signed with the wrong secret was accepted")
	}
}

func TestExtractUsernameRequiresClaim(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	tokenString := signToken(t, "test-secret", jwt.MapClaims{"sub": "123"})

	if _, err := ExtractUsernameFromToken(tokenString); err == nil {
		t.Errorf("token without a username claim was accepted")
	}
}

func TestValidateTokenRequiresSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	if _, err := ValidateToken("whatever"); err == nil {
		t.Errorf("validation succeeded without JWT_SECRET set")
	}
}
