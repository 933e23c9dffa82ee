// File path: internal/schema/roles.go

// Package schema maps the actual headers of a billing dataset onto the
// fixed set of semantic roles the detection rules operate on.
package schema

import "strings"

// Role identifies one semantic column of a billing dataset.
type Role string

const (
	RoleCustomerID    Role = "customer_id"
	RoleDate          Role = "date"
	RoleBillingAmount Role = "billing_amount"
	RoleServiceType   Role = "service_type"
	RoleDataUsage     Role = "data_usage"
	RoleAccountStatus Role = "account_status"
	RolePlanType      Role = "plan_type"
	RolePaymentStatus Role = "payment_status"
)

// displayNames holds the header spelling each role is matched against.
var displayNames = map[Role]string{
	RoleCustomerID:    "Customer ID",
	RoleDate:          "Date",
	RoleBillingAmount: "Billing Amount",
	RoleServiceType:   "Service Type",
	RoleDataUsage:     "Data Usage (GB)",
	RoleAccountStatus: "Account Status",
	RolePlanType:      "Plan Type",
	RolePaymentStatus: "Payment Status",
}

// AllRoles lists every role in a stable order.
func AllRoles() []Role {
	return []Role{
		RoleCustomerID,
		RoleDate,
		RoleBillingAmount,
		RoleServiceType,
		RoleDataUsage,
		RoleAccountStatus,
		RolePlanType,
		RolePaymentStatus,
	}
}

// DisplayName returns the header spelling used to match the role.
func (r Role) DisplayName() string {
	return displayNames[r]
}

// Resolve finds the first column whose name equals target ignoring
// case. There is no fuzzy or partial matching.
func Resolve(columns []string, target string) (string, bool) {
	for _, column := range columns {
		if strings.EqualFold(column, target) {
			return column, true
		}
	}
	return "", false
}

// Mapping records which dataset column backs each resolved role.
// Unresolved roles are simply absent. A mapping is built once per
// dataset and read-only afterwards.
type Mapping map[Role]string

// MapColumns resolves every role against the given headers.
func MapColumns(columns []string) Mapping {
	m := make(Mapping, len(displayNames))
	for role, name := range displayNames {
		if column, ok := Resolve(columns, name); ok {
			m[role] = column
		}
	}
	return m
}

// Column returns the dataset column backing the role, if resolved.
func (m Mapping) Column(role Role) (string, bool) {
	column, ok := m[role]
	return column, ok
}

// Has reports whether every given role resolved to a column.
func (m Mapping) Has(roles ...Role) bool {
	for _, role := range roles {
		if _, ok := m[role]; !ok {
			return false
		}
	}
	return true
}
