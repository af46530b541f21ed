package utils

import (
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/pizzeria/config"
)

func TestRefreshTokenRoundTrip(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	id := uuid.New()

	access, refresh, err := GenerateTokens(id, []string{"admin"})
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	got, err := ParseRefreshToken(refresh)
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if got != id {
		t.Errorf("expected %s, got %s", id, got)
	}

	if _, err := ParseRefreshToken(access); err == nil {
		t.Error("access token must not pass as a refresh token")
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("margherita")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("margherita")) != nil {
		t.Error("hash does not verify")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("salami")) == nil {
		t.Error("wrong password verified")
	}
}
