package authcore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

/*
====================================
FILE LOADING
====================================
*/

// yamlDuration decodes Go duration strings ("15m", "60s") from YAML.
type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", raw, err)
	}
	*d = yamlDuration(parsed)
	return nil
}

type fileLockout struct {
	MaxAttempts *uint32 `yaml:"max_attempts"`
	DurationMS  *int64  `yaml:"duration_ms"`
}

type fileConfig struct {
	Token struct {
		AccessTTL      yamlDuration `yaml:"access_ttl"`
		RefreshTTL     yamlDuration `yaml:"refresh_ttl"`
		SigningMethod  string       `yaml:"signing_method"`
		PrivateKeyFile string       `yaml:"private_key_file"`
		PublicKeyFile  string       `yaml:"public_key_file"`
		Issuer         string       `yaml:"issuer"`
		Leeway         yamlDuration `yaml:"leeway"`
	} `yaml:"token"`
	Password struct {
		MemoryKB       uint32 `yaml:"memory_kb"`
		Time           uint32 `yaml:"time"`
		Parallelism    uint8  `yaml:"parallelism"`
		SaltLength     uint32 `yaml:"salt_length"`
		KeyLength      uint32 `yaml:"key_length"`
		UpgradeOnLogin *bool  `yaml:"upgrade_on_login"`
	} `yaml:"password"`
	Lockout struct {
		SuperAdmin  fileLockout `yaml:"super_admin"`
		TenantAdmin fileLockout `yaml:"tenant_admin"`
		TeamMember  fileLockout `yaml:"team_member"`
		Client      fileLockout `yaml:"client"`
	} `yaml:"lockout"`
	Audit struct {
		Enabled    *bool `yaml:"enabled"`
		BufferSize int   `yaml:"buffer_size"`
		DropIfFull *bool `yaml:"drop_if_full"`
	} `yaml:"audit"`
	Store struct {
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"store"`
}

// LoadConfigFile reads a YAML configuration file and applies it over the
// defaults. Unset fields keep their default values; signing keys may be
// referenced by file path and are read eagerly.
func LoadConfigFile(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if fc.Token.AccessTTL > 0 {
		cfg.Token.AccessTTL = time.Duration(fc.Token.AccessTTL)
	}
	if fc.Token.RefreshTTL > 0 {
		cfg.Token.RefreshTTL = time.Duration(fc.Token.RefreshTTL)
	}
	if fc.Token.SigningMethod != "" {
		cfg.Token.SigningMethod = fc.Token.SigningMethod
	}
	if fc.Token.Issuer != "" {
		cfg.Token.Issuer = fc.Token.Issuer
	}
	if fc.Token.Leeway > 0 {
		cfg.Token.Leeway = time.Duration(fc.Token.Leeway)
	}
	if fc.Token.PrivateKeyFile != "" {
		key, err := os.ReadFile(fc.Token.PrivateKeyFile)
		if err != nil {
			return cfg, fmt.Errorf("read private key: %w", err)
		}
		cfg.Token.PrivateKey = key
	}
	if fc.Token.PublicKeyFile != "" {
		key, err := os.ReadFile(fc.Token.PublicKeyFile)
		if err != nil {
			return cfg, fmt.Errorf("read public key: %w", err)
		}
		cfg.Token.PublicKey = key
	}

	if fc.Password.MemoryKB > 0 {
		cfg.Password.Memory = fc.Password.MemoryKB
	}
	if fc.Password.Time > 0 {
		cfg.Password.Time = fc.Password.Time
	}
	if fc.Password.Parallelism > 0 {
		cfg.Password.Parallelism = fc.Password.Parallelism
	}
	if fc.Password.SaltLength > 0 {
		cfg.Password.SaltLength = fc.Password.SaltLength
	}
	if fc.Password.KeyLength > 0 {
		cfg.Password.KeyLength = fc.Password.KeyLength
	}
	if fc.Password.UpgradeOnLogin != nil {
		cfg.Password.UpgradeOnLogin = *fc.Password.UpgradeOnLogin
	}

	applyFileLockout(&cfg.Lockout.SuperAdmin, fc.Lockout.SuperAdmin)
	applyFileLockout(&cfg.Lockout.TenantAdmin, fc.Lockout.TenantAdmin)
	applyFileLockout(&cfg.Lockout.TeamMember, fc.Lockout.TeamMember)
	applyFileLockout(&cfg.Lockout.Client, fc.Lockout.Client)

	if fc.Audit.Enabled != nil {
		cfg.Audit.Enabled = *fc.Audit.Enabled
	}
	if fc.Audit.BufferSize > 0 {
		cfg.Audit.BufferSize = fc.Audit.BufferSize
	}
	if fc.Audit.DropIfFull != nil {
		cfg.Audit.DropIfFull = *fc.Audit.DropIfFull
	}

	if fc.Store.KeyPrefix != "" {
		cfg.Store.KeyPrefix = fc.Store.KeyPrefix
	}

	return cfg, nil
}

func applyFileLockout(dst *KindLockout, src fileLockout) {
	if src.MaxAttempts != nil {
		dst.MaxAttempts = *src.MaxAttempts
	}
	if src.DurationMS != nil && *src.DurationMS >= 0 {
		dst.Duration = time.Duration(*src.DurationMS) * time.Millisecond
	}
}

/*
====================================
ENVIRONMENT OVERRIDES
====================================
*/

// ApplyEnvOverrides layers per-kind lockout tuning from the environment on
// top of cfg. Recognized variables, per kind prefix SUPER_ADMIN,
// TENANT_ADMIN, TEAM_MEMBER, and CLIENT:
//
//	<KIND>_MAX_LOGIN_ATTEMPTS
//	<KIND>_LOCKOUT_DURATION_MS
//
// Unset or malformed values leave the existing setting untouched.
func ApplyEnvOverrides(cfg Config) Config {
	applyEnvLockout(&cfg.Lockout.SuperAdmin, "SUPER_ADMIN")
	applyEnvLockout(&cfg.Lockout.TenantAdmin, "TENANT_ADMIN")
	applyEnvLockout(&cfg.Lockout.TeamMember, "TEAM_MEMBER")
	applyEnvLockout(&cfg.Lockout.Client, "CLIENT")
	return cfg
}

func applyEnvLockout(dst *KindLockout, prefix string) {
	if raw := os.Getenv(prefix + "_MAX_LOGIN_ATTEMPTS"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
			dst.MaxAttempts = uint32(v)
		}
	}
	if raw := os.Getenv(prefix + "_LOCKOUT_DURATION_MS"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
			dst.Duration = time.Duration(v) * time.Millisecond
		}
	}
}
