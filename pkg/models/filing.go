// Package models defines the core data structures used throughout edgarintel.
package models

import "time"

// FilingType identifies which EDGAR document family a record came from.
type FilingType string

const (
	// FilingADV marks records for registered investment advisers discovered
	// through the company registry and the submissions API.
	FilingADV FilingType = "ADV"
	// Filing13F marks records for institutional investment managers
	// discovered through the 13F-HR filing feed.
	Filing13F FilingType = "13F"
)

// Well-known RawFields keys. Parsers populate these; downstream stages read
// them by name instead of re-deriving document shapes.
const (
	FieldStreet1    = "street1"
	FieldStreet2    = "street2"
	FieldCity       = "city"
	FieldState      = "stateOrCountry"
	FieldZip        = "zipCode"
	FieldPhone      = "phone"
	FieldSIC        = "sic"
	FieldSICDesc    = "sicDescription"
	FieldTicker     = "ticker"
	FieldAccession  = "accessionNumber"
	FieldPrimaryDoc = "primaryDocument"
	FieldHoldings   = "holdingsCount"
	FieldValueTotal = "tableValueTotal" // reported portfolio value, whole USD
	FieldPeriod     = "reportPeriod"
	FieldSummary    = "summary"
)

// FilingRecord is the structured result of parsing one fetched EDGAR
// document. Immutable after creation; malformed documents never produce one.
type FilingRecord struct {
	EntityName  string            `json:"entity_name"`
	CIK         string            `json:"cik"`                    // unpadded, e.g. "1067983"
	FilingType  FilingType        `json:"filing_type"`            // "ADV" or "13F"
	FilingDate  time.Time         `json:"filing_date,omitempty"`
	AccessionNo string            `json:"accession_no,omitempty"` // e.g. "0000950123-25-001234"
	SourceURL   string            `json:"source_url,omitempty"`
	RawFields   map[string]string `json:"raw_fields,omitempty"`
}

// Field returns a RawFields value, tolerating a nil map.
func (r *FilingRecord) Field(key string) string {
	if r.RawFields == nil {
		return ""
	}
	return r.RawFields[key]
}

// Institution is a discovery-phase lead: an entity seen in the company
// registry or the 13F filing feed, before enrichment.
type Institution struct {
	CIK         string     `json:"cik"`
	Name        string     `json:"name"`
	Ticker      string     `json:"ticker,omitempty"`
	FilingType  FilingType `json:"filing_type"`
	SourceURL   string     `json:"source_url,omitempty"`
	FiledAt     time.Time  `json:"filed_at,omitempty"`     // feed publish time, when known
	AccessionNo string     `json:"accession_no,omitempty"` // from the feed entry, when known
	Summary     string     `json:"summary,omitempty"`      // feed summary with HTML stripped
	Seq         int        `json:"-"`                      // insertion order, for stable output
}
