// File path: internal/schema/roles_test.go
package schema

import "testing"

func TestResolveMatchesCaseInsensitively(t *testing.T) {
	columns := []string{"customer id", "DATE", "Billing Amount"}

	got, ok := Resolve(columns, "Customer ID")
	if !ok || got != "customer id" {
		t.Fatalf("expected original header spelling, got %q ok=%v", got, ok)
	}
	got, ok = Resolve(columns, "Date")
	if !ok || got != "DATE" {
		t.Fatalf("expected DATE, got %q ok=%v", got, ok)
	}
}

func TestResolveRejectsPartialMatches(t *testing.T) {
	columns := []string{"Customer", "Customer ID Number", "Billing"}
	if got, ok := Resolve(columns, "Customer ID"); ok {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestResolveReturnsFirstHit(t *testing.T) {
	columns := []string{"date", "Date"}
	got, ok := Resolve(columns, "Date")
	if !ok || got != "date" {
		t.Fatalf("expected first match %q, got %q", "date", got)
	}
}

func TestMapColumnsResolvesAllRoles(t *testing.T) {
	columns := []string{
		"Customer ID", "Date", "Billing Amount", "Service Type",
		"Data Usage (GB)", "Account Status", "Plan Type", "Payment Status",
	}
	m := MapColumns(columns)
	if len(m) != len(AllRoles()) {
		t.Fatalf("expected %d resolved roles, got %d: %#v", len(AllRoles()), len(m), m)
	}
	for _, role := range AllRoles() {
		if column, ok := m.Column(role); !ok || column != role.DisplayName() {
			t.Errorf("role %s resolved to %q ok=%v", role, column, ok)
		}
	}
}

func TestMapColumnsIsPartial(t *testing.T) {
	m := MapColumns([]string{"Customer ID", "Amount Billed", "Usage"})
	if !m.Has(RoleCustomerID) {
		t.Fatalf("expected customer id to resolve: %#v", m)
	}
	if m.Has(RoleBillingAmount) || m.Has(RoleDataUsage) {
		t.Fatalf("unexpected resolution of unrelated headers: %#v", m)
	}
	if m.Has(RoleCustomerID, RoleDate) {
		t.Fatal("Has must require every listed role")
	}
}
