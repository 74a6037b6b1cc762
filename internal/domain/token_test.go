package domain_test

import (
	"testing"
	"time"

	"github.com/talgatov/auth-api/internal/domain"
)

func TestAccessTokenUsable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := map[string]struct {
		token domain.AccessToken
		want  bool
	}{
		"fresh, no expiry":    {domain.AccessToken{}, true},
		"unexpired":           {domain.AccessToken{ExpiresAt: &future}, true},
		"expired":             {domain.AccessToken{ExpiresAt: &past}, false},
		"expires exactly now": {domain.AccessToken{ExpiresAt: &now}, false},
		"revoked":             {domain.AccessToken{RevokedAt: &past}, false},
		"revoked and expired": {domain.AccessToken{RevokedAt: &past, ExpiresAt: &past}, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.token.Usable(now); got != tc.want {
				t.Errorf("Usable() = %v, want %v", got, tc.want)
			}
		})
	}
}
