package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-for-unit-tests-32ch!"

func testConfig() TokenConfig {
	return TokenConfig{
		Issuer:   "staff-accounts",
		Audience: "staff-accounts-clients",
		Secret:   testSecret,
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func registered(sub string, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestNewTokenValidator_RejectsWeakConfig(t *testing.T) {
	_, err := NewTokenValidator(TokenConfig{})
	assert.Error(t, err)

	_, err = NewTokenValidator(TokenConfig{Secret: "short"})
	assert.Error(t, err)

	_, err = NewTokenValidator(TokenConfig{Secret: testSecret, ValidateIssuer: true})
	assert.Error(t, err)

	_, err = NewTokenValidator(TokenConfig{Secret: testSecret, ValidateAudience: true})
	assert.Error(t, err)

	_, err = NewTokenValidator(testConfig())
	assert.NoError(t, err)
}

func TestIssueAndAuthenticate_RoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.ValidateIssuer = true
	cfg.ValidateAudience = true

	issuer, err := NewTokenIssuer(cfg)
	require.NoError(t, err)
	validator, err := NewTokenValidator(cfg)
	require.NoError(t, err)

	admin := &models.Account{ID: uuid.New(), DisplayName: "Root", Initials: "ADM", IsAdmin: true, IsActive: true}
	token, expiresAt, err := issuer.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), expiresAt, 5*time.Second)

	id := validator.Authenticate("Bearer " + token)
	assert.True(t, id.Authenticated)
	assert.Equal(t, admin.ID.String(), id.Subject)
	assert.True(t, id.HasRole(models.RoleAdmin))

	member := &models.Account{ID: uuid.New(), DisplayName: "Bob", Initials: "BOB", IsActive: true}
	token, _, err = issuer.Issue(member)
	require.NoError(t, err)

	id = validator.Authenticate("Bearer " + token)
	assert.True(t, id.Authenticated)
	assert.False(t, id.HasRole(models.RoleAdmin))
}

func TestAuthenticate_Failures(t *testing.T) {
	validator, err := NewTokenValidator(testConfig())
	require.NoError(t, err)

	valid := signClaims(t, jwt.SigningMethodHS256, &Claims{RegisteredClaims: registered("42", time.Now().Add(time.Hour))}, testSecret)
	expired := signClaims(t, jwt.SigningMethodHS256, &Claims{RegisteredClaims: registered("42", time.Now().Add(-time.Minute))}, testSecret)
	wrongSecret := signClaims(t, jwt.SigningMethodHS256, &Claims{RegisteredClaims: registered("42", time.Now().Add(time.Hour))}, "another-secret-that-is-32-chars!!")
	noExpiry := signClaims(t, jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}}, testSecret)
	noSubject := signClaims(t, jwt.SigningMethodHS256, &Claims{RegisteredClaims: registered("", time.Now().Add(time.Hour))}, testSecret)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: registered("42", time.Now().Add(time.Hour))}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic " + valid},
		{"bearer without token", "Bearer "},
		{"token without scheme", valid},
		{"malformed token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired},
		{"bad signature", "Bearer " + wrongSecret},
		{"missing exp", "Bearer " + noExpiry},
		{"missing subject", "Bearer " + noSubject},
		{"alg none", "Bearer " + unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := validator.Authenticate(tt.header)
			assert.Equal(t, Anonymous(), id)
		})
	}

	assert.True(t, validator.Authenticate("bearer "+valid).Authenticated, "scheme is case-insensitive")
}

func TestAuthenticate_IssuerAndAudienceChecksAreOptIn(t *testing.T) {
	claims := &Claims{RegisteredClaims: registered("42", time.Now().Add(time.Hour))}
	claims.Issuer = "someone-else"
	claims.Audience = jwt.ClaimStrings{"other-audience"}
	token := signClaims(t, jwt.SigningMethodHS256, claims, testSecret)

	lenient, err := NewTokenValidator(testConfig())
	require.NoError(t, err)
	assert.True(t, lenient.Authenticate("Bearer "+token).Authenticated)

	cfg := testConfig()
	cfg.ValidateIssuer = true
	strictIssuer, err := NewTokenValidator(cfg)
	require.NoError(t, err)
	assert.False(t, strictIssuer.Authenticate("Bearer "+token).Authenticated)

	cfg = testConfig()
	cfg.ValidateAudience = true
	strictAudience, err := NewTokenValidator(cfg)
	require.NoError(t, err)
	assert.False(t, strictAudience.Authenticate("Bearer "+token).Authenticated)
}

func TestAuthenticate_RoleClaimShapes(t *testing.T) {
	validator, err := NewTokenValidator(testConfig())
	require.NoError(t, err)

	stringRole := signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"role": "Admin",
	}, testSecret)
	arrayRoles := signClaims(t, jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":   "2",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"Viewer", "Admin"},
	}, testSecret)
	dotnetRole := signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "4",
		"exp":       time.Now().Add(time.Hour).Unix(),
		msRoleClaim: "Admin",
	}, testSecret)
	dotnetRoles := signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "5",
		"exp":       time.Now().Add(time.Hour).Unix(),
		msRoleClaim: []string{"Viewer", "Admin"},
	}, testSecret)
	badRole := signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "3",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"role": 7,
	}, testSecret)

	assert.True(t, validator.Authenticate("Bearer "+stringRole).HasRole("Admin"))

	id := validator.Authenticate("Bearer " + arrayRoles)
	assert.True(t, id.HasRole("Admin"))
	assert.True(t, id.HasRole("Viewer"))

	assert.True(t, validator.Authenticate("Bearer "+dotnetRole).HasRole("Admin"))
	assert.True(t, validator.Authenticate("Bearer "+dotnetRoles).HasRole("Admin"))

	assert.False(t, validator.Authenticate("Bearer "+badRole).Authenticated)
}

func TestAuthenticate_LeewayAllowsRecentExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.Leeway = time.Minute
	validator, err := NewTokenValidator(cfg)
	require.NoError(t, err)

	token := signClaims(t, jwt.SigningMethodHS256, &Claims{RegisteredClaims: registered("42", time.Now().Add(-10*time.Second))}, testSecret)
	assert.True(t, validator.Authenticate("Bearer "+token).Authenticated)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = BearerToken("Bearer")
	assert.False(t, ok)
}
