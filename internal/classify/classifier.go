// Package classify applies deterministic keyword rules to filing records:
// discovery filtering (does this registrant look like an investment firm?)
// and category assignment (which kind of investor is it?).
package classify

import (
	"strconv"
	"strings"

	"github.com/seenimoa/edgarintel/pkg/models"
	"github.com/seenimoa/edgarintel/pkg/utils"
)

// adviserKeywords flag likely investment firms in the company registry.
var adviserKeywords = []string{
	"capital", "venture", "partners", "investment", "fund",
	"equity", "management", "advisors", "advisory", "holdings",
	"asset", "wealth", "family office", "trust",
}

// rule pairs an investor category with the keywords that select it.
type rule struct {
	category models.Category
	keywords []string
}

// rules in priority order; the first match wins. Evaluated against the
// lowercased entity name plus SIC description.
var rules = []rule{
	{models.CategoryFamilyOffice, []string{"family", "office", "trust", "estate"}},
	{models.CategoryVentureCapital, []string{"venture", "ventures", "seed", "startup"}},
	{models.CategoryPrivateEquity, []string{"private equity", "buyout", "leveraged"}},
	{models.CategoryHedgeFund, []string{"hedge", "offshore", "alternative"}},
	{models.CategoryAssetManagement, []string{"asset management", "wealth", "advisory"}},
	{models.CategoryInvestmentCompany, []string{"capital", "partners", "fund", "investment"}},
}

// IsInvestmentFirm reports whether a registrant name suggests an investment
// business. Registry discovery keeps only names that pass this filter.
func IsInvestmentFirm(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range adviserKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Categorize returns the investor category for an entity name and SIC
// description. Deterministic: same inputs, same category; no match falls
// back to Other Institutional.
func Categorize(name, sicDescription string) models.Category {
	combined := strings.ToLower(name + " " + sicDescription)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(combined, kw) {
				return r.category
			}
		}
	}
	return models.CategoryOther
}

// Classify converts one filing record into a classified investor. Pure
// function: no I/O, no mutation of the record.
func Classify(rec *models.FilingRecord) models.ClassifiedInvestor {
	inv := models.ClassifiedInvestor{
		EntityName:     rec.EntityName,
		Category:       Categorize(rec.EntityName, rec.Field(models.FieldSICDesc)),
		CIK:            rec.CIK,
		Ticker:         rec.Field(models.FieldTicker),
		FilingType:     rec.FilingType,
		FilingDate:     rec.FilingDate,
		City:           rec.Field(models.FieldCity),
		State:          rec.Field(models.FieldState),
		Phone:          rec.Field(models.FieldPhone),
		SIC:            rec.Field(models.FieldSIC),
		SICDescription: rec.Field(models.FieldSICDesc),
		SourceURL:      rec.SourceURL,
		Source:         rec,
	}

	// AUM from the 13F summary page; absent or non-numeric stays zero.
	if v := rec.Field(models.FieldValueTotal); v != "" {
		if aum, err := strconv.ParseFloat(v, 64); err == nil {
			inv.AUM = aum
		}
	}

	// Fall back to scanning the address when the document carried no
	// explicit state.
	if inv.State == "" {
		addr := utils.FormatAddress(
			rec.Field(models.FieldStreet1),
			rec.Field(models.FieldStreet2),
			rec.Field(models.FieldCity),
			"",
			rec.Field(models.FieldZip),
		)
		inv.State = utils.ExtractState(addr)
	}

	return inv
}
