package authcore

// Fixed permission sets for the kinds that carry no stored permission list.
// Tenant admins and clients always project exactly these; changing them is
// a code change, not a data migration.
var (
	tenantAdminPermissions = []string{
		"manage_team",
		"view_clients",
		"manage_settings",
	}

	clientPermissions = []string{
		"view_own_profile",
		"edit_own_profile",
		"view_own_applications",
		"upload_documents",
	}
)

// resolvePermissions returns the effective permission set for a principal.
// Super admins and team members use their stored list; the other two kinds
// get their fixed set.
func (e *Engine) resolvePermissions(p *Principal) []string {
	switch p.Kind {
	case KindTenantAdmin:
		return cloneStrings(tenantAdminPermissions)
	case KindClient:
		return cloneStrings(clientPermissions)
	default:
		return cloneStrings(p.Permissions)
	}
}

// projectProfile maps any principal kind onto the single outward profile
// shape. tenant may be nil for super admins.
func (e *Engine) projectProfile(p *Principal, tenant *Tenant) Profile {
	profile := Profile{
		ID:              p.ID,
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Kind:            p.Kind,
		Role:            p.Role,
		TenantID:        p.TenantID,
		Permissions:     e.resolvePermissions(p),
		Specializations: cloneStrings(p.Specializations),
		IsActive:        p.Active,
		LastLogin:       p.LastLogin,
		ProfileData:     cloneStringMap(p.ProfileData),
		Preferences:     cloneStringMap(p.Preferences),
	}

	if tenant != nil {
		profile.TenantName = tenant.Name
		profile.TenantDomain = tenant.Domain
	}

	return profile
}

func cloneStrings(v []string) []string {
	if len(v) == 0 {
		return []string{}
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

func cloneStringMap(v map[string]string) map[string]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
