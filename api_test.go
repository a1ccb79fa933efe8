package tracker

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestValidateAPIToken(t *testing.T) {
	const secret = "api-secret-for-tests"
	future := time.Now().Add(time.Hour)

	valid := signToken(t, jwt.SigningMethodHS256, secret, "operator", future)
	if err := validateAPIToken("Bearer "+valid, []byte(secret)); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}

	bad := map[string]string{
		"empty header":    "",
		"no bearer":       valid,
		"basic auth":      "Basic " + valid,
		"garbage":         "Bearer not.a.token",
		"expired":         "Bearer " + signToken(t, jwt.SigningMethodHS256, secret, "operator", time.Now().Add(-time.Hour)),
		"missing expiry":  "Bearer " + signToken(t, jwt.SigningMethodHS256, secret, "operator", time.Time{}),
		"wrong subject":   "Bearer " + signToken(t, jwt.SigningMethodHS256, secret, "intruder", future),
		"wrong secret":    "Bearer " + signToken(t, jwt.SigningMethodHS256, "other-secret", "operator", future),
		"wrong algorithm": "Bearer " + signToken(t, jwt.SigningMethodHS512, secret, "operator", future),
	}
	for name, authz := range bad {
		if err := validateAPIToken(authz, []byte(secret)); err == nil {
			t.Errorf("%s: token accepted, want rejection", name)
		}
	}
}
