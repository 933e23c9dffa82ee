// File path: internal/detect/detect_test.go
package detect

import (
	"errors"
	"testing"

	"github.com/veyra/billscope/internal/dataset"
	"github.com/veyra/billscope/internal/schema"
)

var billingColumns = []string{
	"Customer ID", "Date", "Billing Amount", "Service Type",
	"Data Usage (GB)", "Account Status", "Plan Type", "Payment Status",
}

// row builds a well-formed billing record; override replaces individual
// cells afterwards.
func row(customer, date string, amount, usage float64, plan, service, status, payment string) dataset.Record {
	return dataset.Record{
		"Customer ID":     dataset.Value(customer),
		"Date":            dataset.Value(date),
		"Billing Amount":  dataset.Value(amount),
		"Service Type":    dataset.Value(service),
		"Data Usage (GB)": dataset.Value(usage),
		"Account Status":  dataset.Value(status),
		"Plan Type":       dataset.Value(plan),
		"Payment Status":  dataset.Value(payment),
	}
}

func billingDataset(records ...dataset.Record) *dataset.Dataset {
	return &dataset.Dataset{Columns: billingColumns, Records: records}
}

func detectStrict(t *testing.T, ds *dataset.Dataset) Report {
	t.Helper()
	rep, err := New(Config{}).Detect(ds, schema.MapColumns(ds.Columns))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	return rep
}

func customerIDs(records []dataset.Record) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if id, ok := rec["Customer ID"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestDetectEmptyDataset(t *testing.T) {
	rep := detectStrict(t, billingDataset())
	for _, c := range Categories() {
		if got := rep.Count(c); got != 0 {
			t.Errorf("category %s: expected empty, got %d", c, got)
		}
		if rep[c] == nil {
			t.Errorf("category %s: expected present empty slice", c)
		}
	}
}

func TestDetectUnresolvedRolesYieldEmptyCategories(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: []string{"Account", "Amount"},
		Records: []dataset.Record{{"Account": "A1", "Amount": float64(10)}},
	}
	rep, err := New(Config{}).Detect(ds, schema.MapColumns(ds.Columns))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	for _, c := range Categories() {
		if got := rep.Count(c); got != 0 {
			t.Errorf("category %s: expected empty result with no resolved roles, got %d", c, got)
		}
	}
}

func TestDuplicateBillingsFlagsWholeGroup(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid"),
		row("B2", "2024-01-02", 7.5, 50, "Standard", "Voice", "Active", "Paid"),
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	got := customerIDs(rep[CategoryDuplicates])
	if len(got) != 2 || got[0] != "A1" || got[1] != "A1" {
		t.Fatalf("expected both A1 rows flagged in order, got %v", got)
	}
}

func TestDuplicateBillingsIgnoresUniquePairs(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid"),
		row("A1", "2024-01-02", 10, 50, "Basic", "Data", "Active", "Paid"),
		row("B2", "2024-01-01", 7.5, 50, "Standard", "Voice", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	if got := rep.Count(CategoryDuplicates); got != 0 {
		t.Fatalf("same customer on different dates must not be flagged, got %d", got)
	}
}

func TestHighLowBillingsFlagsMispricedRows(t *testing.T) {
	ds := billingDataset(
		// 50 GB * 0.20 = 10: exact.
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid"),
		// within tolerance
		row("B2", "2024-01-02", 10.005, 50, "Basic", "Data", "Active", "Paid"),
		// 2 over expected
		row("C3", "2024-01-03", 12, 50, "Basic", "Data", "Active", "Paid"),
		// 100 GB * 0.10 = 10, billed 5: under
		row("D4", "2024-01-04", 5, 100, "Ultra", "Data", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	if got := customerIDs(rep[CategoryHighLow]); len(got) != 2 || got[0] != "C3" || got[1] != "D4" {
		t.Fatalf("expected C3 and D4 flagged, got %v", got)
	}
}

func TestHighLowBillingsMatchesPlanCaseInsensitively(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 7.5, 50, "STANDARD", "Data", "Active", "Paid"),
		row("B2", "2024-01-02", 7.5, 50, "standard", "Data", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	if got := rep.Count(CategoryHighLow); got != 0 {
		t.Fatalf("correctly priced rows flagged despite plan casing: %v", customerIDs(rep[CategoryHighLow]))
	}
}

func TestHighLowBillingsUnknownPlanRateZero(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 5, 50, "Premium", "Data", "Active", "Paid"),
		row("B2", "2024-01-02", 0, 50, "Premium", "Data", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	if got := customerIDs(rep[CategoryHighLow]); len(got) != 1 || got[0] != "A1" {
		t.Fatalf("unknown plan must flag any non-zero charge, got %v", got)
	}
}

func TestInvalidServiceTypesFlagsEveryCarrier(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 10, 50, "Basic", "data", "Active", "Paid"),
		row("B2", "2024-01-02", 10, 50, "Basic", "VOICE", "Active", "Paid"),
		row("C3", "2024-01-03", 10, 50, "Basic", "Roaming", "Active", "Paid"),
		row("D4", "2024-01-04", 10, 50, "Basic", "Roaming", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	if got := customerIDs(rep[CategoryInvalidService]); len(got) != 2 || got[0] != "C3" || got[1] != "D4" {
		t.Fatalf("expected both Roaming rows flagged, got %v", got)
	}
}

func TestSuspendedBillingsRequiresBothConditions(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "SUSPENDED", "Pending"),
		row("B2", "2024-01-02", 10, 50, "Basic", "Data", "Suspended", "Paid"),
		row("C3", "2024-01-03", 10, 50, "Basic", "Data", "Active", "pending"),
	)
	rep := detectStrict(t, ds)
	if got := customerIDs(rep[CategorySuspendedBilling]); len(got) != 1 || got[0] != "A1" {
		t.Fatalf("expected exactly the suspended+pending row, got %v", got)
	}
}

func TestSuspendedBillingsIgnoresNonStringStatus(t *testing.T) {
	rec := row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Suspended", "Pending")
	rec["Account Status"] = nil
	rep := detectStrict(t, billingDataset(rec))
	if got := rep.Count(CategorySuspendedBilling); got != 0 {
		t.Fatalf("missing status must not match, got %d", got)
	}
}

func TestDetectEndToEndExample(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid"),
		row("A1", "2024-01-01", 12, 50, "Basic", "Data", "Active", "Paid"),
	)
	rep := detectStrict(t, ds)
	if got := rep.Count(CategoryDuplicates); got != 2 {
		t.Errorf("expected both rows in Duplicate Billings, got %d", got)
	}
	highLow := rep[CategoryHighLow]
	if len(highLow) != 1 {
		t.Fatalf("expected one mispriced row, got %d", len(highLow))
	}
	if amount, _ := highLow[0]["Billing Amount"].(float64); amount != 12 {
		t.Errorf("expected the 12-amount row flagged, got %v", highLow[0]["Billing Amount"])
	}
	if got := rep.Count(CategoryInvalidService); got != 0 {
		t.Errorf("Data is a valid service type, got %d flags", got)
	}
	if got := rep.Count(CategorySuspendedBilling); got != 0 {
		t.Errorf("active accounts must not be flagged, got %d", got)
	}
}

func TestDetectStrictFailsOnMalformedAmount(t *testing.T) {
	rec := row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid")
	rec["Billing Amount"] = "ten"
	_, err := New(Config{}).Detect(billingDataset(rec), schema.MapColumns(billingColumns))
	var malformed *MalformedValueError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedValueError, got %v", err)
	}
	if malformed.Category != CategoryHighLow || malformed.Column != "Billing Amount" || malformed.Row != 0 {
		t.Fatalf("unexpected error detail: %#v", malformed)
	}
}

func TestDetectStrictFailsOnMissingPlan(t *testing.T) {
	rec := row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid")
	rec["Plan Type"] = nil
	if _, err := New(Config{}).Detect(billingDataset(rec), schema.MapColumns(billingColumns)); err == nil {
		t.Fatal("expected error for missing plan type")
	}
}

func TestDetectStrictFailsOnNumericServiceType(t *testing.T) {
	rec := row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid")
	rec["Service Type"] = float64(3)
	if _, err := New(Config{}).Detect(billingDataset(rec), schema.MapColumns(billingColumns)); err == nil {
		t.Fatal("expected error for numeric service type")
	}
}

func TestDetectLenientSkipsMalformedRows(t *testing.T) {
	bad := row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Active", "Paid")
	bad["Billing Amount"] = "ten"
	bad["Service Type"] = nil
	good := row("B2", "2024-01-02", 12, 50, "Basic", "Fax", "Active", "Paid")
	ds := billingDataset(bad, good)

	rep, err := New(Config{Lenient: true}).Detect(ds, schema.MapColumns(billingColumns))
	if err != nil {
		t.Fatalf("lenient detect must not fail: %v", err)
	}
	if got := customerIDs(rep[CategoryHighLow]); len(got) != 1 || got[0] != "B2" {
		t.Errorf("expected only the good row priced, got %v", got)
	}
	if got := customerIDs(rep[CategoryInvalidService]); len(got) != 1 || got[0] != "B2" {
		t.Errorf("expected only the good row's Fax flagged, got %v", got)
	}
}

func TestDetectFlagsAreCopies(t *testing.T) {
	ds := billingDataset(
		row("A1", "2024-01-01", 10, 50, "Basic", "Data", "Suspended", "Pending"),
	)
	rep := detectStrict(t, ds)
	flagged := rep[CategorySuspendedBilling]
	if len(flagged) != 1 {
		t.Fatalf("expected one flagged row, got %d", len(flagged))
	}
	flagged[0]["Customer ID"] = "mutated"
	if got := ds.Records[0]["Customer ID"]; got != "A1" {
		t.Fatalf("flagged record must be a copy, original now %v", got)
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"basic":    "Basic",
		"BASIC":    "Basic",
		"uLtRa":    "Ultra",
		"":         "",
		"standard": "Standard",
	}
	for in, want := range cases {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
