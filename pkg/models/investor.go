package models

import "time"

// Category is the investor classification bucket.
type Category string

const (
	CategoryFamilyOffice      Category = "Family Office"
	CategoryVentureCapital    Category = "Venture Capital"
	CategoryPrivateEquity     Category = "Private Equity"
	CategoryHedgeFund         Category = "Hedge Fund"
	CategoryAssetManagement   Category = "Asset Management"
	CategoryInvestmentCompany Category = "Investment Company"
	CategoryOther             Category = "Other Institutional"
)

// AllCategories returns the categories in classification priority order.
// The fallback CategoryOther is last.
func AllCategories() []Category {
	return []Category{
		CategoryFamilyOffice,
		CategoryVentureCapital,
		CategoryPrivateEquity,
		CategoryHedgeFund,
		CategoryAssetManagement,
		CategoryInvestmentCompany,
		CategoryOther,
	}
}

// ClassifiedInvestor is one classified entity, derived from exactly one
// FilingRecord. Immutable; the export row order is fixed by Seq.
type ClassifiedInvestor struct {
	EntityName      string        `json:"entity_name"`
	Category        Category      `json:"category"`
	AUM             float64       `json:"aum,omitempty"` // reported portfolio value in USD; 0 = unknown
	CIK             string        `json:"cik"`
	Ticker          string        `json:"ticker,omitempty"`
	FilingType      FilingType    `json:"filing_type"`
	FilingDate      time.Time     `json:"filing_date,omitempty"`
	City            string        `json:"city,omitempty"`
	State           string        `json:"state,omitempty"` // two-letter US state or country code
	Phone           string        `json:"phone,omitempty"`
	SIC             string        `json:"sic,omitempty"`
	SICDescription  string        `json:"sic_description,omitempty"`
	SourceURL       string        `json:"source_url,omitempty"`
	Seq             int           `json:"-"`
	Source          *FilingRecord `json:"source_filing,omitempty"`
}

// ScrapeStats summarizes one pipeline run.
type ScrapeStats struct {
	RegistryLeads  int              `json:"registry_leads"`  // phase 1 leads kept
	FeedLeads      int              `json:"feed_leads"`      // phase 2 leads kept
	Duplicates     int              `json:"duplicates"`      // dropped by CIK dedup
	Enriched       int              `json:"enriched"`        // submissions fetched and parsed
	EnrichFailures int              `json:"enrich_failures"` // fetches that exhausted retries
	ParseSkips     int              `json:"parse_skips"`     // malformed documents skipped
	Classified     int              `json:"classified"`      // final row count
	ByCategory     map[Category]int `json:"by_category"`
}
