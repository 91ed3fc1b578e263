package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements PrincipalStore and TenantStore on Redis hashes. Each
// principal kind is its own collection (key namespace) with a lowercase
// email index; tenants add domain and admin-email indexes. Failure counters
// are plain hash fields bumped with HINCRBY, which is what makes the
// increment atomic without application-side read-modify-write.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed store with the given key prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "cp"
	}
	return &Redis{client: client, prefix: prefix}
}

// NormalizeIdentity lowercases and trims a login identity. Every identity
// comparison and every stored identity goes through this.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func (r *Redis) principalKey(kind Kind, id string) string {
	return r.prefix + ":p:" + string(kind) + ":" + id
}

func (r *Redis) emailKey(kind Kind, email string) string {
	return r.prefix + ":e:" + string(kind) + ":" + email
}

func (r *Redis) tenantKey(id string) string {
	return r.prefix + ":t:" + id
}

func (r *Redis) domainKey(domain string) string {
	return r.prefix + ":d:" + domain
}

func (r *Redis) adminEmailKey(email string) string {
	return r.prefix + ":ta:" + email
}

// FindByLoginIdentity resolves a live principal for the claimed kind. The
// tenant-admin path routes through the tenant's admin-email index and
// synthesizes the principal from the tenant record.
func (r *Redis) FindByLoginIdentity(ctx context.Context, kind Kind, identity string) (*Principal, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	identity = NormalizeIdentity(identity)

	if kind == KindTenantAdmin {
		tenant, err := r.FindByAdminEmail(ctx, identity)
		if err != nil {
			return nil, err
		}
		return tenant.AdminPrincipal(), nil
	}

	id, err := r.client.Get(ctx, r.emailKey(kind, identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return r.FindByID(ctx, kind, id)
}

// FindByID fetches a live record by primary key, filtering soft-deleted
// records.
func (r *Redis) FindByID(ctx context.Context, kind Kind, id string) (*Principal, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}

	if kind == KindTenantAdmin {
		tenant, err := r.findTenant(ctx, id)
		if err != nil {
			return nil, err
		}
		return tenant.AdminPrincipal(), nil
	}

	fields, err := r.client.HGetAll(ctx, r.principalKey(kind, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	p, err := principalFromFields(kind, fields)
	if err != nil {
		return nil, err
	}
	if p.Deleted() {
		return nil, ErrNotFound
	}
	return p, nil
}

// Save persists the full principal record. Tenant-admin saves write the
// admin credential fields back onto the owning tenant hash.
func (r *Redis) Save(ctx context.Context, p *Principal) error {
	if p == nil || !p.Kind.Valid() {
		return ErrUnknownKind
	}

	if p.Kind == KindTenantAdmin {
		err := r.client.HSet(ctx, r.tenantKey(p.TenantID), map[string]interface{}{
			"admin_email":           NormalizeIdentity(p.Email),
			"admin_password_hash":   p.PasswordHash,
			"admin_first_name":      p.FirstName,
			"admin_last_name":       p.LastName,
			"admin_failed_attempts": int64(p.FailedAttempts),
			"admin_locked_until":    encodeTime(p.LockedUntil),
			"admin_last_login":      encodeTime(p.LastLogin),
		}).Err()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	}

	if err := r.client.HSet(ctx, r.principalKey(p.Kind, p.ID), principalFields(p)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IncrementFailedAttempts atomically bumps the failure counter and returns
// the new value.
func (r *Redis) IncrementFailedAttempts(ctx context.Context, kind Kind, id string) (uint32, error) {
	key, field := r.counterLocation(kind, id)
	if key == "" {
		return 0, ErrUnknownKind
	}

	count, err := r.client.HIncrBy(ctx, key, field, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count < 0 {
		count = 0
	}
	return uint32(count), nil
}

// SetLockedUntil records the lock deadline on the principal.
func (r *Redis) SetLockedUntil(ctx context.Context, kind Kind, id string, until time.Time) error {
	key, field := r.lockLocation(kind, id)
	if key == "" {
		return ErrUnknownKind
	}

	if err := r.client.HSet(ctx, key, field, until.UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ResetLockout zeroes the counter, clears the lock, and stamps the last
// login in a single write.
func (r *Redis) ResetLockout(ctx context.Context, kind Kind, id string, lastLogin time.Time) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}

	var key string
	fields := map[string]interface{}{}
	if kind == KindTenantAdmin {
		key = r.tenantKey(id)
		fields["admin_failed_attempts"] = 0
		fields["admin_locked_until"] = ""
		fields["admin_last_login"] = lastLogin.UTC().Format(time.RFC3339Nano)
	} else {
		key = r.principalKey(kind, id)
		fields["failed_attempts"] = 0
		fields["locked_until"] = ""
		fields["last_login"] = lastLogin.UTC().Format(time.RFC3339Nano)
	}

	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// CreatePrincipal inserts a new record and claims its email index entry.
// Tenant admins are not created here; they exist only inside a Tenant.
func (r *Redis) CreatePrincipal(ctx context.Context, p *Principal) error {
	if p == nil || !p.Kind.Valid() || p.Kind == KindTenantAdmin {
		return ErrUnknownKind
	}
	p.Email = NormalizeIdentity(p.Email)

	ok, err := r.client.SetNX(ctx, r.emailKey(p.Kind, p.Email), p.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return ErrDuplicateEmail
	}

	if err := r.Save(ctx, p); err != nil {
		// Release the index claim so a retry is not told the identity is
		// taken by a record that was never written.
		_ = r.client.Del(ctx, r.emailKey(p.Kind, p.Email)).Err()
		return err
	}
	return nil
}

// FindByAdminEmail resolves a live tenant by its embedded admin email.
func (r *Redis) FindByAdminEmail(ctx context.Context, email string) (*Tenant, error) {
	email = NormalizeIdentity(email)

	id, err := r.client.Get(ctx, r.adminEmailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return r.findTenant(ctx, id)
}

// FindByDomain resolves a live tenant by its unique domain.
func (r *Redis) FindByDomain(ctx context.Context, domain string) (*Tenant, error) {
	domain = NormalizeIdentity(domain)

	id, err := r.client.Get(ctx, r.domainKey(domain)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return r.findTenant(ctx, id)
}

// FindByID resolves a live tenant by primary key.
func (r *Redis) FindTenantByID(ctx context.Context, id string) (*Tenant, error) {
	return r.findTenant(ctx, id)
}

func (r *Redis) findTenant(ctx context.Context, id string) (*Tenant, error) {
	fields, err := r.client.HGetAll(ctx, r.tenantKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	t, err := tenantFromFields(fields)
	if err != nil {
		return nil, err
	}
	if t.Deleted() {
		return nil, ErrNotFound
	}
	return t, nil
}

// SaveTenant persists the full tenant record.
func (r *Redis) SaveTenant(ctx context.Context, t *Tenant) error {
	t.Domain = NormalizeIdentity(t.Domain)
	t.AdminEmail = NormalizeIdentity(t.AdminEmail)

	if err := r.client.HSet(ctx, r.tenantKey(t.ID), tenantFields(t)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// CreateTenant inserts a new tenant, claiming its domain and admin-email
// index entries.
func (r *Redis) CreateTenant(ctx context.Context, t *Tenant) error {
	t.Domain = NormalizeIdentity(t.Domain)
	t.AdminEmail = NormalizeIdentity(t.AdminEmail)

	ok, err := r.client.SetNX(ctx, r.domainKey(t.Domain), t.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return ErrDuplicateDomain
	}

	ok, err = r.client.SetNX(ctx, r.adminEmailKey(t.AdminEmail), t.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		// Roll back the domain claim so a retry with a free admin email
		// does not strand the domain.
		_ = r.client.Del(ctx, r.domainKey(t.Domain)).Err()
		return ErrDuplicateEmail
	}

	if err := r.SaveTenant(ctx, t); err != nil {
		_ = r.client.Del(ctx, r.domainKey(t.Domain)).Err()
		_ = r.client.Del(ctx, r.adminEmailKey(t.AdminEmail)).Err()
		return err
	}
	return nil
}

func (r *Redis) counterLocation(kind Kind, id string) (key, field string) {
	switch kind {
	case KindTenantAdmin:
		return r.tenantKey(id), "admin_failed_attempts"
	case KindSuperAdmin, KindTeamMember, KindClient:
		return r.principalKey(kind, id), "failed_attempts"
	}
	return "", ""
}

func (r *Redis) lockLocation(kind Kind, id string) (key, field string) {
	switch kind {
	case KindTenantAdmin:
		return r.tenantKey(id), "admin_locked_until"
	case KindSuperAdmin, KindTeamMember, KindClient:
		return r.principalKey(kind, id), "locked_until"
	}
	return "", ""
}

/*
====================================
FIELD ENCODING
====================================
*/

func principalFields(p *Principal) map[string]interface{} {
	return map[string]interface{}{
		"id":              p.ID,
		"email":           NormalizeIdentity(p.Email),
		"password_hash":   p.PasswordHash,
		"first_name":      p.FirstName,
		"last_name":       p.LastName,
		"tenant_id":       p.TenantID,
		"role":            p.Role,
		"permissions":     encodeStrings(p.Permissions),
		"specializations": encodeStrings(p.Specializations),
		"profile_data":    encodeStringMap(p.ProfileData),
		"preferences":     encodeStringMap(p.Preferences),
		"active":          encodeBool(p.Active),
		"deleted_at":      encodeTime(p.DeletedAt),
		"failed_attempts": int64(p.FailedAttempts),
		"locked_until":    encodeTime(p.LockedUntil),
		"last_login":      encodeTime(p.LastLogin),
	}
}

func principalFromFields(kind Kind, fields map[string]string) (*Principal, error) {
	failed, err := parseCounter(fields["failed_attempts"])
	if err != nil {
		return nil, err
	}

	return &Principal{
		ID:              fields["id"],
		Kind:            kind,
		Email:           fields["email"],
		PasswordHash:    fields["password_hash"],
		FirstName:       fields["first_name"],
		LastName:        fields["last_name"],
		TenantID:        fields["tenant_id"],
		Role:            fields["role"],
		Permissions:     decodeStrings(fields["permissions"]),
		Specializations: decodeStrings(fields["specializations"]),
		ProfileData:     decodeStringMap(fields["profile_data"]),
		Preferences:     decodeStringMap(fields["preferences"]),
		Active:          fields["active"] == "1",
		DeletedAt:       decodeTime(fields["deleted_at"]),
		FailedAttempts:  failed,
		LockedUntil:     decodeTime(fields["locked_until"]),
		LastLogin:       decodeTime(fields["last_login"]),
	}, nil
}

func tenantFields(t *Tenant) map[string]interface{} {
	return map[string]interface{}{
		"id":                    t.ID,
		"domain":                t.Domain,
		"name":                  t.Name,
		"admin_email":           t.AdminEmail,
		"admin_password_hash":   t.AdminPasswordHash,
		"admin_first_name":      t.AdminFirstName,
		"admin_last_name":       t.AdminLastName,
		"admin_failed_attempts": int64(t.AdminFailedAttempts),
		"admin_locked_until":    encodeTime(t.AdminLockedUntil),
		"admin_last_login":      encodeTime(t.AdminLastLogin),
		"active":                encodeBool(t.Active),
		"deleted_at":            encodeTime(t.DeletedAt),
	}
}

func tenantFromFields(fields map[string]string) (*Tenant, error) {
	failed, err := parseCounter(fields["admin_failed_attempts"])
	if err != nil {
		return nil, err
	}

	return &Tenant{
		ID:                  fields["id"],
		Domain:              fields["domain"],
		Name:                fields["name"],
		AdminEmail:          fields["admin_email"],
		AdminPasswordHash:   fields["admin_password_hash"],
		AdminFirstName:      fields["admin_first_name"],
		AdminLastName:       fields["admin_last_name"],
		AdminFailedAttempts: failed,
		AdminLockedUntil:    decodeTime(fields["admin_locked_until"]),
		AdminLastLogin:      decodeTime(fields["admin_last_login"]),
		Active:              fields["active"] == "1",
		DeletedAt:           decodeTime(fields["deleted_at"]),
	}, nil
}

func parseCounter(raw string) (uint32, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt failure counter: %v", err)
	}
	if v < 0 {
		v = 0
	}
	return uint32(v), nil
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func encodeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}

func encodeStrings(v []string) string {
	if len(v) == 0 {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func encodeStringMap(v map[string]string) string {
	if len(v) == 0 {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeStringMap(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
