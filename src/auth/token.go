package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/khabaroff/staff-accounts/src/models"
)

// MinSecretLength is the shortest HMAC signing secret accepted
const MinSecretLength = 32

// DefaultTokenTTL is used when TokenConfig.TTL is zero
const DefaultTokenTTL = 24 * time.Hour

// TokenConfig controls how bearer tokens are signed and validated.
// Issuer and audience checks are opt-in so that disabling them is an
// explicit configuration choice.
type TokenConfig struct {
	Issuer           string
	Audience         string
	Secret           string
	ValidateIssuer   bool
	ValidateAudience bool
	Leeway           time.Duration
	TTL              time.Duration
}

func (c TokenConfig) validate() error {
	if c.Secret == "" {
		return errors.New("JWT secret cannot be empty")
	}
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters long", MinSecretLength)
	}
	if c.ValidateIssuer && c.Issuer == "" {
		return errors.New("issuer validation enabled but no issuer configured")
	}
	if c.ValidateAudience && c.Audience == "" {
		return errors.New("audience validation enabled but no audience configured")
	}
	return nil
}

// roleList accepts a role claim encoded either as a string or as an array of strings
type roleList []string

func (r *roleList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = roleList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("role claim must be a string or array of strings: %w", err)
	}
	*r = many
	return nil
}

// msRoleClaim is the role claim type written by ASP.NET Core identity
const msRoleClaim = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

// Claims represents JWT claims for account tokens
type Claims struct {
	Role     roleList `json:"role,omitempty"`
	Roles    roleList `json:"roles,omitempty"`
	MSRole   roleList `json:"http://schemas.microsoft.com/ws/2008/06/identity/claims/role,omitempty"`
	Name     string   `json:"name,omitempty"`
	Initials string   `json:"initials,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) roles() []string {
	out := make([]string, 0, len(c.Role)+len(c.Roles)+len(c.MSRole))
	out = append(out, c.Role...)
	out = append(out, c.Roles...)
	out = append(out, c.MSRole...)
	return out
}

// TokenValidator turns bearer tokens into identities
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenValidator creates a validator for HMAC-signed tokens
func NewTokenValidator(cfg TokenConfig) (*TokenValidator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.ValidateIssuer {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.ValidateAudience {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &TokenValidator{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// ParseToken verifies signature, expiry and the configured issuer/audience
func (v *TokenValidator) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}

	return claims, nil
}

// Authenticate validates an Authorization header value. Any failure yields
// the anonymous identity; it never returns an error.
func (v *TokenValidator) Authenticate(authHeader string) Identity {
	tokenString, ok := BearerToken(authHeader)
	if !ok {
		return Anonymous()
	}

	claims, err := v.ParseToken(tokenString)
	if err != nil {
		return Anonymous()
	}

	return Identity{
		Subject:       claims.Subject,
		Authenticated: true,
		Roles:         claims.roles(),
	}
}

// BearerToken extracts the token from a "Bearer <token>" header value
func BearerToken(authHeader string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// TokenIssuer signs tokens for authenticated accounts
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer creates an HS256 token issuer
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// Issue creates a signed token for the account and returns its expiry
func (ti *TokenIssuer) Issue(account *models.Account) (string, time.Time, error) {
	now := ti.now()
	expiresAt := now.Add(ti.cfg.TTL)

	claims := Claims{
		Name:     account.DisplayName,
		Initials: account.Initials,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Issuer:    ti.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if ti.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{ti.cfg.Audience}
	}
	if account.IsAdmin {
		claims.Role = roleList{models.RoleAdmin}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}
