package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/google/uuid"
)

func testManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "a-test-secret-that-is-long-enough-for-hs256",
		AccessTokenTTL:  ttl,
		RefreshTokenTTL: time.Hour,
		Issuer:          "pharmaflow-test",
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := testManager(time.Minute)
	in := &domain.Claims{
		UserID:   uuid.New(),
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Role:     domain.RolePharmacist,
	}

	pair, err := m.GenerateTokenPair(in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q", pair.TokenType)
	}

	got, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if *got != *in {
		t.Errorf("claims = %+v, want %+v", got, in)
	}

	if _, err := m.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Errorf("validate refresh: %v", err)
	}
}

func TestPasswordStampOnlyOnRefresh(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleCashier, PasswordStamp: 1700000000123})
	if err != nil {
		t.Fatal(err)
	}
	access, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if access.PasswordStamp != 0 {
		t.Errorf("access token carries stamp %d", access.PasswordStamp)
	}
	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if refresh.PasswordStamp != 1700000000123 {
		t.Errorf("refresh stamp = %d", refresh.PasswordStamp)
	}
}

func TestTokenValidationFailures(t *testing.T) {
	m := testManager(time.Minute)
	claims := &domain.Claims{UserID: uuid.New(), Role: domain.RoleCustomer}
	pair, err := m.GenerateTokenPair(claims)
	if err != nil {
		t.Fatal(err)
	}

	expired, err := testManager(-time.Minute).GenerateTokenPair(claims)
	if err != nil {
		t.Fatal(err)
	}

	other := NewJWTManager(config.JWTConfig{
		Secret:          "a-completely-different-secret-value-123",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "pharmaflow-test",
	})

	tests := []struct {
		name     string
		validate func() error
		want     error
	}{
		{"refresh used as access", func() error { _, err := m.ValidateAccessToken(pair.RefreshToken); return err }, ErrTokenTypeMismatch},
		{"access used as refresh", func() error { _, err := m.ValidateRefreshToken(pair.AccessToken); return err }, ErrTokenTypeMismatch},
		{"expired", func() error { _, err := m.ValidateAccessToken(expired.AccessToken); return err }, ErrTokenExpired},
		{"wrong secret", func() error { _, err := other.ValidateAccessToken(pair.AccessToken); return err }, ErrTokenInvalid},
		{"garbage", func() error { _, err := m.ValidateAccessToken("not.a.jwt"); return err }, ErrTokenInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.validate(); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
