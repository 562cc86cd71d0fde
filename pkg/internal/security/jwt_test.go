package security

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestIssueAndParseToken(t *testing.T) {
	viper.Set("security.jwt_secret", "test-secret")
	viper.Set("security.jwt_expiration_ms", 3_600_000)

	token, expiresAt, err := IssueToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > 61*time.Minute {
		t.Fatalf("expiry should be about an hour out, got %v", until)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Username != "alice" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject should carry the account id, got %q", claims.Subject)
	}
	if claims.Issuer != "pulso" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	viper.Set("security.jwt_secret", "test-secret")
	viper.Set("security.jwt_expiration_ms", 3_600_000)

	token, _, err := IssueToken(1, "alice", "viewer")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	viper.Set("security.jwt_secret", "another-secret")
	t.Cleanup(func() { viper.Set("security.jwt_secret", "test-secret") })

	if _, err := ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret should be rejected")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	viper.Set("security.jwt_secret", "test-secret")

	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatalf("garbage should be rejected")
	}
}
