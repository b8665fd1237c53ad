package service

import "fleet/internal/domain"

// ResolveTenant enforces tenant isolation for a proposed mutation that
// references a vehicle and/or driver, and returns the tenant ID that
// must be stamped on the written record.
//
// SUPERADMIN may write into any tenant; the requested tenant defaults
// to the referenced entities' tenant when empty. Every other role is
// confined to its own tenant. A vehicle/driver pair straddling two
// tenants is rejected outright, never silently corrected.
func ResolveTenant(principal domain.Principal, vehicle *domain.Vehicle, driver *domain.Driver, requestedTenantID string) (string, error) {
	if vehicle != nil && driver != nil && vehicle.TenantID != driver.TenantID {
		return "", ErrTenantMismatch
	}

	if principal.IsSuperadmin() {
		tenantID := requestedTenantID
		if tenantID == "" {
			if vehicle != nil {
				tenantID = vehicle.TenantID
			} else if driver != nil {
				tenantID = driver.TenantID
			}
		}
		if vehicle != nil && tenantID != vehicle.TenantID {
			return "", ErrCrossTenantViolation
		}
		if driver != nil && tenantID != driver.TenantID {
			return "", ErrCrossTenantViolation
		}
		return tenantID, nil
	}

	if vehicle != nil && vehicle.TenantID != principal.TenantID {
		return "", ErrCrossTenantViolation
	}
	if driver != nil && driver.TenantID != principal.TenantID {
		return "", ErrCrossTenantViolation
	}

	return principal.TenantID, nil
}

// tenantScope returns the tenant filter a principal's reads are
// confined to: empty (all tenants) for SUPERADMIN, own tenant otherwise.
func tenantScope(principal domain.Principal) string {
	if principal.IsSuperadmin() {
		return ""
	}
	return principal.TenantID
}

// canReadTenant reports whether the principal may see records of the
// given tenant.
func canReadTenant(principal domain.Principal, tenantID string) bool {
	return principal.IsSuperadmin() || principal.TenantID == tenantID
}
