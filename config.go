package authcore

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Instances are configured
// during initialization and then treated as immutable.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Lockout  LockoutConfig
	Audit    AuditConfig
	Store    StoreConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds JWT signing material and lifetimes for both token
// types.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the argon2id parameters used for hashing and the
// upgrade-on-login switch.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// KindLockout is the lockout policy for one principal kind. MaxAttempts of
// zero disables locking for that kind.
type KindLockout struct {
	MaxAttempts uint32
	Duration    time.Duration
}

// LockoutConfig holds one independently tunable policy per principal kind.
type LockoutConfig struct {
	SuperAdmin  KindLockout
	TenantAdmin KindLockout
	TeamMember  KindLockout
	Client      KindLockout
}

// ForKind returns the policy configured for k. Unknown kinds get a zero
// policy, which never locks.
func (c LockoutConfig) ForKind(k PrincipalKind) KindLockout {
	switch k {
	case KindSuperAdmin:
		return c.SuperAdmin
	case KindTenantAdmin:
		return c.TenantAdmin
	case KindTeamMember:
		return c.TeamMember
	case KindClient:
		return c.Client
	}
	return KindLockout{}
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls the Redis key namespace.
type StoreConfig struct {
	KeyPrefix string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// The default lockout policy (30 attempts, 60 second lock) is a development
// posture: loose enough that a tester hammering one account never locks
// themselves out for long. Deployments are expected to tighten it per kind
// through configuration, not by editing these numbers.
func defaultConfig() Config {
	devLockout := KindLockout{
		MaxAttempts: 30,
		Duration:    60 * time.Second,
	}

	return Config{
		Token: TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "ed25519",
			Issuer:        "authcore",
			Leeway:        30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Lockout: LockoutConfig{
			SuperAdmin:  devLockout,
			TenantAdmin: devLockout,
			TeamMember:  devLockout,
			Client:      devLockout,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Store: StoreConfig{
			KeyPrefix: "cp",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. It is called
// by the builder before any component is constructed.
func (c *Config) Validate() error {
	// Token
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must be >= AccessTTL")
	}

	if c.Token.SigningMethod != "ed25519" && c.Token.SigningMethod != "hs256" {
		return errors.New("unsupported Token signing method")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.PrivateKey) < 32 {
		return errors.New("hs256 requires PrivateKey of at least 32 bytes")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Lockout
	for _, kl := range []struct {
		name   string
		policy KindLockout
	}{
		{"SuperAdmin", c.Lockout.SuperAdmin},
		{"TenantAdmin", c.Lockout.TenantAdmin},
		{"TeamMember", c.Lockout.TeamMember},
		{"Client", c.Lockout.Client},
	} {
		if kl.policy.MaxAttempts > 0 && kl.policy.Duration <= 0 {
			return errors.New("Lockout " + kl.name + " Duration must be > 0 when MaxAttempts is set")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Store
	if c.Store.KeyPrefix == "" {
		return errors.New("Store KeyPrefix must not be empty")
	}

	return nil
}
