package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clearpath-hq/authcore/store"
)

/*
====================================
PROVISIONING
====================================
*/

// NewSuperAdmin describes a platform operator account to create.
type NewSuperAdmin struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Permissions []string
}

// NewTenant describes a tenant to create, including its embedded admin
// identity.
type NewTenant struct {
	Name           string
	Domain         string
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
}

// NewTeamMember describes a staff account to create within a tenant.
type NewTeamMember struct {
	TenantID        string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Role            string
	Permissions     []string
	Specializations []string
}

// NewClient describes an end-customer account to create within a tenant.
type NewClient struct {
	TenantID    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	ProfileData map[string]string
	Preferences map[string]string
}

// CreateSuperAdmin provisions a platform operator. The email must be unique
// within the super-admin collection.
func (e *Engine) CreateSuperAdmin(ctx context.Context, in NewSuperAdmin) (*Principal, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if in.Email == "" {
		return nil, errors.New("email required")
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	p := &Principal{
		ID:           uuid.NewString(),
		Kind:         KindSuperAdmin,
		Email:        store.NormalizeIdentity(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Permissions:  cloneStrings(in.Permissions),
		Active:       true,
	}

	if err := e.principals.CreatePrincipal(ctx, p); err != nil {
		return nil, err
	}

	e.auditCreated(ctx, actionPrincipalCreated, string(KindSuperAdmin), p.ID, "")

	return p, nil
}

// CreateTenant provisions a tenant together with its embedded admin
// identity. Both the domain and the admin email must be globally unique.
func (e *Engine) CreateTenant(ctx context.Context, in NewTenant) (*Tenant, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if in.Domain == "" {
		return nil, errors.New("domain required")
	}
	if in.AdminEmail == "" {
		return nil, errors.New("admin email required")
	}

	hash, err := e.hasher.Hash(in.AdminPassword)
	if err != nil {
		return nil, err
	}

	t := &Tenant{
		ID:                uuid.NewString(),
		Domain:            store.NormalizeIdentity(in.Domain),
		Name:              in.Name,
		AdminEmail:        store.NormalizeIdentity(in.AdminEmail),
		AdminPasswordHash: hash,
		AdminFirstName:    in.AdminFirstName,
		AdminLastName:     in.AdminLastName,
		Active:            true,
	}

	if err := e.tenants.CreateTenant(ctx, t); err != nil {
		return nil, err
	}

	e.auditCreated(ctx, actionTenantCreated, "tenant", t.ID, t.ID)

	return t, nil
}

// CreateTeamMember provisions a staff account inside an existing live
// tenant.
func (e *Engine) CreateTeamMember(ctx context.Context, in NewTeamMember) (*Principal, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if in.Email == "" {
		return nil, errors.New("email required")
	}
	switch in.Role {
	case RoleAdmin, RoleStaff, RoleViewer:
	default:
		return nil, errors.New("invalid team member role")
	}

	if _, err := e.tenants.FindTenantByID(ctx, in.TenantID); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	p := &Principal{
		ID:              uuid.NewString(),
		Kind:            KindTeamMember,
		Email:           store.NormalizeIdentity(in.Email),
		PasswordHash:    hash,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		TenantID:        in.TenantID,
		Role:            in.Role,
		Permissions:     cloneStrings(in.Permissions),
		Specializations: cloneStrings(in.Specializations),
		Active:          true,
	}

	if err := e.principals.CreatePrincipal(ctx, p); err != nil {
		return nil, err
	}

	e.auditCreated(ctx, actionPrincipalCreated, string(KindTeamMember), p.ID, p.TenantID)

	return p, nil
}

// CreateClient provisions an end-customer account inside an existing live
// tenant.
func (e *Engine) CreateClient(ctx context.Context, in NewClient) (*Principal, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if in.Email == "" {
		return nil, errors.New("email required")
	}

	if _, err := e.tenants.FindTenantByID(ctx, in.TenantID); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	p := &Principal{
		ID:           uuid.NewString(),
		Kind:         KindClient,
		Email:        store.NormalizeIdentity(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		TenantID:     in.TenantID,
		ProfileData:  cloneStringMap(in.ProfileData),
		Preferences:  cloneStringMap(in.Preferences),
		Active:       true,
	}

	if err := e.principals.CreatePrincipal(ctx, p); err != nil {
		return nil, err
	}

	e.auditCreated(ctx, actionPrincipalCreated, string(KindClient), p.ID, p.TenantID)

	return p, nil
}

func (e *Engine) auditCreated(ctx context.Context, action, resourceKind, resourceID, tenantID string) {
	e.emitAudit(ctx, AuditEvent{
		Timestamp:    e.clock(),
		Action:       action,
		ResourceKind: resourceKind,
		ResourceID:   resourceID,
		TenantID:     tenantID,
		Success:      true,
	})
}
