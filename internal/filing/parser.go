// Package filing turns raw EDGAR documents into structured filing records.
// Adviser (ADV) records come from the submissions JSON; institutional (13F)
// records from the 13F-HR primary XML. Malformed documents yield a
// *ParseError so callers can skip the record without aborting the batch.
package filing

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/edgarintel/pkg/models"
	"github.com/seenimoa/edgarintel/pkg/utils"
)

const (
	docSubmissions = "submissions"
	docForm13F     = "13F primary document"
)

// ParseError describes a document that could not be turned into a filing
// record. Per-record failure: callers log and skip, never abort the run.
type ParseError struct {
	Doc    string // document kind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Doc, e.Reason)
}

// Parse converts one raw EDGAR document into a FilingRecord, dispatching on
// the filing type.
func Parse(raw []byte, ft models.FilingType) (*models.FilingRecord, error) {
	switch ft {
	case models.FilingADV:
		return ParseSubmissions(raw)
	case models.Filing13F:
		return Parse13F(raw)
	default:
		return nil, &ParseError{Doc: string(ft), Reason: "unknown filing type"}
	}
}

// ParseSubmissions builds an adviser record from the EDGAR submissions JSON.
// The entity name is required; everything else degrades to absent RawFields.
// The accession number and primary document of the newest 13F-HR filing are
// retained in RawFields for the holdings enrichment fetch.
func ParseSubmissions(raw []byte) (*models.FilingRecord, error) {
	var doc submissionsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Doc: docSubmissions, Reason: "invalid JSON: " + err.Error()}
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return nil, &ParseError{Doc: docSubmissions, Reason: "missing entity name"}
	}

	rec := &models.FilingRecord{
		EntityName: name,
		FilingType: models.FilingADV,
		RawFields:  make(map[string]string),
	}

	// EDGAR serves the CIK as a digit string; anything else is junk, and
	// the discovery lead's CIK backfills the record instead.
	if cik := strings.TrimSpace(doc.CIK); utils.IsNumeric(cik) {
		rec.CIK = utils.TrimCIK(cik)
	}

	business := doc.Addresses["business"]
	setField(rec.RawFields, models.FieldStreet1, business.Street1)
	setField(rec.RawFields, models.FieldStreet2, business.Street2)
	setField(rec.RawFields, models.FieldCity, business.City)
	setField(rec.RawFields, models.FieldState, business.StateOrCountry)
	setField(rec.RawFields, models.FieldZip, business.ZipCode)
	setField(rec.RawFields, models.FieldPhone, doc.Phone)
	setField(rec.RawFields, models.FieldSIC, doc.SIC)
	setField(rec.RawFields, models.FieldSICDesc, doc.SICDescription)
	if len(doc.Tickers) > 0 {
		setField(rec.RawFields, models.FieldTicker, doc.Tickers[0])
	}

	recent := doc.Filings.Recent

	// Filing date and accession from the newest ADV-prefixed form, or the
	// newest filing of any form. EDGAR orders the arrays newest first.
	pick := -1
	for i, form := range recent.Form {
		if strings.HasPrefix(form, "ADV") {
			pick = i
			break
		}
	}
	if pick == -1 && len(recent.Form) > 0 {
		pick = 0
	}
	if pick >= 0 {
		if pick < len(recent.FilingDate) {
			rec.FilingDate = parseDate(recent.FilingDate[pick])
		}
		if pick < len(recent.AccessionNumber) {
			rec.AccessionNo = recent.AccessionNumber[pick]
		}
	}

	for i, form := range recent.Form {
		if strings.HasPrefix(form, "13F-HR") {
			if i < len(recent.AccessionNumber) {
				setField(rec.RawFields, models.FieldAccession, recent.AccessionNumber[i])
			}
			if i < len(recent.PrimaryDocument) {
				setField(rec.RawFields, models.FieldPrimaryDoc, recent.PrimaryDocument[i])
			}
			break
		}
	}

	return rec, nil
}

// Parse13F builds an institutional record from a 13F-HR primary XML
// document. The filing manager name is required. The reported portfolio
// value and holdings count land in RawFields.
func Parse13F(raw []byte) (*models.FilingRecord, error) {
	var doc form13F
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Doc: docForm13F, Reason: "invalid XML: " + err.Error()}
	}

	cover := doc.FormData.CoverPage
	name := strings.TrimSpace(cover.FilingManager.Name)
	if name == "" {
		return nil, &ParseError{Doc: docForm13F, Reason: "missing filing manager name"}
	}

	rec := &models.FilingRecord{
		EntityName: name,
		FilingType: models.Filing13F,
		RawFields:  make(map[string]string),
	}

	addr := cover.FilingManager.Address
	setField(rec.RawFields, models.FieldStreet1, addr.Street1)
	setField(rec.RawFields, models.FieldStreet2, addr.Street2)
	setField(rec.RawFields, models.FieldCity, addr.City)
	setField(rec.RawFields, models.FieldState, addr.StateOrCountry)
	setField(rec.RawFields, models.FieldZip, addr.ZipCode)
	setField(rec.RawFields, models.FieldPeriod, cover.ReportCalendarOrQuarter)
	setField(rec.RawFields, models.FieldHoldings, doc.FormData.SummaryPage.TableEntryTotal)
	setField(rec.RawFields, models.FieldValueTotal, doc.FormData.SummaryPage.TableValueTotal)

	return rec, nil
}

// setField stores a trimmed value, dropping empties so RawFields only
// carries what the document actually said.
func setField(m map[string]string, key, val string) {
	if v := strings.TrimSpace(val); v != "" {
		m[key] = v
	}
}

// parseDate tolerates the date formats EDGAR uses across documents.
// Returns the zero time when nothing matches.
func parseDate(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02",
		"01-02-2006",
		"01/02/2006",
		"2006-01-02T15:04:05.000Z",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
