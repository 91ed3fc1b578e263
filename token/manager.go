package token

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the signature algorithm for both token types.
type SigningMethod string

const (
	MethodEd25519 SigningMethod = "ed25519"
	MethodHS256   SigningMethod = "hs256"
)

// ErrInvalidToken is returned for any token that fails signature, expiry,
// issuer, or type-claim validation. Callers get no finer detail.
var ErrInvalidToken = errors.New("invalid token")

// Config holds signing material and lifetimes. Access tokens live minutes,
// refresh tokens live days; neither value is hardcoded here.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration

	// Clock is the time source used for expiry validation. Nil means
	// time.Now. Issue timestamps are passed explicitly by the caller.
	Clock func() time.Time
}

// Claims is the principal snapshot carried by a token. Access tokens embed
// the full set; refresh tokens drop Permissions and keep only identity,
// kind, and tenant.
type Claims struct {
	PrincipalID string
	Kind        string
	TenantID    string
	Permissions []string
}

// Manager issues and validates access and refresh tokens. Both are
// stateless bearer tokens: validity is entirely signature plus expiry, the
// engine holds no server-side session table.
type Manager struct {
	config Config
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type tokenClaims struct {
	Kind        string   `json:"knd"`
	TenantID    string   `json:"tid,omitempty"`
	Permissions []string `json:"prm,omitempty"`
	TokenType   string   `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess mints a short-lived access token carrying the full claims
// snapshot, valid from now.
func (m *Manager) IssueAccess(c Claims, now time.Time) (string, error) {
	return m.issue(c, typeAccess, now, m.config.AccessTTL, true)
}

// IssueRefresh mints a longer-lived refresh token. Permissions are
// deliberately omitted: the refresh token identifies the principal, it does
// not authorize anything by itself.
func (m *Manager) IssueRefresh(c Claims, now time.Time) (string, error) {
	return m.issue(c, typeRefresh, now, m.config.RefreshTTL, false)
}

func (m *Manager) issue(c Claims, typ string, now time.Time, ttl time.Duration, includePerms bool) (string, error) {
	claims := tokenClaims{
		Kind:      c.Kind,
		TenantID:  c.TenantID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.PrincipalID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	if includePerms {
		claims.Permissions = c.Permissions
	}

	token := jwt.NewWithClaims(m.signingMethod(), claims)

	signKey, err := m.signKey()
	if err != nil {
		return "", err
	}

	return token.SignedString(signKey)
}

// ParseAccess validates an access token and returns its claims snapshot.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, typeAccess)
}

// ParseRefresh validates a refresh token and returns its claims snapshot.
// Access tokens are rejected here: a short-lived access token must never be
// replayed as a refresh credential.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, typeRefresh)
}

func (m *Manager) parse(tokenStr, wantType string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signingMethod().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Clock != nil {
		options = append(options, jwt.WithTimeFunc(m.config.Clock))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.verifyKey()
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}

	return &Claims{
		PrincipalID: claims.Subject,
		Kind:        claims.Kind,
		TenantID:    claims.TenantID,
		Permissions: claims.Permissions,
	}, nil
}

func (m *Manager) signingMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (m *Manager) signKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(m.config.PrivateKey)
	}
}

func (m *Manager) verifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPublicKey(m.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
