package utils

import (
    "testing"
)

const testSecret = "test-secret-0123456789"

func TestAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken(testSecret, 42, "player@example.com", "player", 30)
    if err != nil {
        t.Fatalf("NewAccessToken failed: %v", err)
    }
    claims, err := VerifyToken(testSecret, tok.Token)
    if err != nil {
        t.Fatalf("VerifyToken failed: %v", err)
    }
    if claims.UserID != 42 {
        t.Errorf("UserID = %d, want 42", claims.UserID)
    }
    if claims.Email != "player@example.com" {
        t.Errorf("Email = %q", claims.Email)
    }
    if claims.Role != "player" {
        t.Errorf("Role = %q", claims.Role)
    }
    if claims.Type != TokenTypeAccess {
        t.Errorf("Type = %q, want %q", claims.Type, TokenTypeAccess)
    }
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
    tok, err := NewRefreshToken(testSecret, 7, 7)
    if err != nil {
        t.Fatalf("NewRefreshToken failed: %v", err)
    }
    claims, err := VerifyToken(testSecret, tok.Token)
    if err != nil {
        t.Fatalf("VerifyToken failed: %v", err)
    }
    if claims.Type != TokenTypeRefresh {
        t.Errorf("Type = %q, want %q", claims.Type, TokenTypeRefresh)
    }
    if claims.Role != "" || claims.Email != "" {
        t.Errorf("refresh token should not carry role/email, got role=%q email=%q", claims.Role, claims.Email)
    }
}

func TestVerifyTokenExpired(t *testing.T) {
    tok, err := NewAccessToken(testSecret, 1, "a@b.c", "player", -1)
    if err != nil {
        t.Fatalf("NewAccessToken failed: %v", err)
    }
    if _, err := VerifyToken(testSecret, tok.Token); err != ErrTokenExpired {
        t.Errorf("err = %v, want ErrTokenExpired", err)
    }
}

func TestVerifyTokenWrongSecret(t *testing.T) {
    tok, err := NewAccessToken(testSecret, 1, "a@b.c", "player", 5)
    if err != nil {
        t.Fatalf("NewAccessToken failed: %v", err)
    }
    if _, err := VerifyToken("another-secret", tok.Token); err != ErrTokenInvalid {
        t.Errorf("err = %v, want ErrTokenInvalid", err)
    }
}

func TestVerifyTokenGarbage(t *testing.T) {
    if _, err := VerifyToken(testSecret, "not.a.jwt"); err != ErrTokenInvalid {
        t.Errorf("err = %v, want ErrTokenInvalid", err)
    }
}
