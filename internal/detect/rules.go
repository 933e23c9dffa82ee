// File path: internal/detect/rules.go
package detect

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/dataset"
	"github.com/veyra/billscope/internal/schema"
)

// billingTolerance is the absolute slack allowed between the billed and
// the expected amount before a row counts as mispriced.
const billingTolerance = 0.01

// planRates holds the fixed per-GB unit rate of each known plan.
// Unknown plans fall back to rate 0, which makes any non-zero billing
// amount on them an anomaly.
var planRates = map[string]float64{
	"Basic":    0.20,
	"Standard": 0.15,
	"Ultra":    0.10,
}

// validServiceTypes is the closed set of accepted service values,
// compared case-insensitively.
var validServiceTypes = []string{"Data", "Voice"}

// duplicateBillings flags every record sharing a (customer, date) pair
// with at least one other record. All members of a duplicate group are
// included, not just the extras.
func (d *Detector) duplicateBillings(ds *dataset.Dataset, m schema.Mapping) ([]dataset.Record, error) {
	custCol, okCust := m.Column(schema.RoleCustomerID)
	dateCol, okDate := m.Column(schema.RoleDate)
	if !okCust || !okDate {
		return nil, nil
	}
	counts := make(map[string]int, ds.Len())
	keys := make([]string, ds.Len())
	for i, rec := range ds.Records {
		key := groupKey(rec[custCol], rec[dateCol])
		keys[i] = key
		counts[key]++
	}
	var flagged []dataset.Record
	for i, rec := range ds.Records {
		if counts[keys[i]] >= 2 {
			flagged = append(flagged, rec.Clone())
		}
	}
	return flagged, nil
}

// groupKey canonicalizes a (customer, date) value pair. The NUL
// separator keeps distinct pairs from colliding.
func groupKey(cust, date dataset.Value) string {
	return fmt.Sprintf("%v\x00%v", cust, date)
}

// highLowBillings flags records whose billed amount strays from the
// plan rate times the data usage by more than the tolerance. Records on
// unrecognized plans are priced at rate 0, so any real charge on them
// is flagged.
func (d *Detector) highLowBillings(ds *dataset.Dataset, m schema.Mapping) ([]dataset.Record, error) {
	usageCol, okUsage := m.Column(schema.RoleDataUsage)
	planCol, okPlan := m.Column(schema.RolePlanType)
	amountCol, okAmount := m.Column(schema.RoleBillingAmount)
	if !okUsage || !okPlan || !okAmount {
		return nil, nil
	}
	var flagged []dataset.Record
	skipped := 0
	for i, rec := range ds.Records {
		usage, ok := asNumber(rec[usageCol])
		if !ok {
			if err := d.malformed(CategoryHighLow, i, usageCol, rec[usageCol], "number"); err != nil {
				return nil, err
			}
			skipped++
			continue
		}
		amount, ok := asNumber(rec[amountCol])
		if !ok {
			if err := d.malformed(CategoryHighLow, i, amountCol, rec[amountCol], "number"); err != nil {
				return nil, err
			}
			skipped++
			continue
		}
		plan, ok := asString(rec[planCol])
		if !ok {
			if err := d.malformed(CategoryHighLow, i, planCol, rec[planCol], "string"); err != nil {
				return nil, err
			}
			skipped++
			continue
		}
		expected := usage * planRates[capitalize(plan)]
		if math.Abs(amount-expected) > billingTolerance {
			flagged = append(flagged, rec.Clone())
		}
	}
	if skipped > 0 {
		common.Logger().Warn("detect: malformed rows skipped", "category", string(CategoryHighLow), "skipped", skipped)
	}
	return flagged, nil
}

// invalidServiceTypes computes the distinct service values seen in the
// dataset, decides which fall outside the valid set, and flags every
// record carrying one of the invalid values.
func (d *Detector) invalidServiceTypes(ds *dataset.Dataset, m schema.Mapping) ([]dataset.Record, error) {
	serviceCol, ok := m.Column(schema.RoleServiceType)
	if !ok {
		return nil, nil
	}
	invalid := make(map[string]bool)
	seen := make(map[string]bool)
	badRows := make(map[int]bool)
	skipped := 0
	for i, rec := range ds.Records {
		service, isStr := asString(rec[serviceCol])
		if !isStr {
			if err := d.malformed(CategoryInvalidService, i, serviceCol, rec[serviceCol], "string"); err != nil {
				return nil, err
			}
			badRows[i] = true
			skipped++
			continue
		}
		if seen[service] {
			continue
		}
		seen[service] = true
		if !isValidService(service) {
			invalid[service] = true
		}
	}
	var flagged []dataset.Record
	for i, rec := range ds.Records {
		if badRows[i] {
			continue
		}
		if service, isStr := asString(rec[serviceCol]); isStr && invalid[service] {
			flagged = append(flagged, rec.Clone())
		}
	}
	if skipped > 0 {
		common.Logger().Warn("detect: malformed rows skipped", "category", string(CategoryInvalidService), "skipped", skipped)
	}
	return flagged, nil
}

func isValidService(service string) bool {
	for _, valid := range validServiceTypes {
		if strings.EqualFold(service, valid) {
			return true
		}
	}
	return false
}

// suspendedBillings flags records billed while the account is suspended
// and the payment still pending. Non-string status cells never match;
// the original's vectorized comparison behaved the same way.
func (d *Detector) suspendedBillings(ds *dataset.Dataset, m schema.Mapping) ([]dataset.Record, error) {
	statusCol, okStatus := m.Column(schema.RoleAccountStatus)
	paymentCol, okPayment := m.Column(schema.RolePaymentStatus)
	if !okStatus || !okPayment {
		return nil, nil
	}
	var flagged []dataset.Record
	for _, rec := range ds.Records {
		status, okS := asString(rec[statusCol])
		payment, okP := asString(rec[paymentCol])
		if !okS || !okP {
			continue
		}
		if strings.EqualFold(status, "suspended") && strings.EqualFold(payment, "pending") {
			flagged = append(flagged, rec.Clone())
		}
	}
	return flagged, nil
}

func asNumber(v dataset.Value) (float64, bool) {
	num, ok := v.(float64)
	return num, ok
}

func asString(v dataset.Value) (string, bool) {
	str, ok := v.(string)
	return str, ok
}

// capitalize upper-cases the first rune and lower-cases the rest, so
// any casing of a known plan name hits the rate table.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
