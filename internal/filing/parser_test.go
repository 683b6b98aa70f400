package filing

import (
	"errors"
	"testing"

	"github.com/seenimoa/edgarintel/pkg/models"
)

// ── Submissions (ADV) ──

const submissionsFixture = `{
	"cik": "1067983",
	"name": "GRANITE FAMILY OFFICE LLC",
	"phone": "(617) 555-0100",
	"sic": "6282",
	"sicDescription": "Investment Advice",
	"tickers": ["GFO"],
	"addresses": {
		"mailing":  {"street1": "PO BOX 9", "city": "BOSTON", "stateOrCountry": "MA", "zipCode": "02110"},
		"business": {"street1": "100 FEDERAL ST", "street2": "FLOOR 22", "city": "BOSTON", "stateOrCountry": "MA", "zipCode": "02110"}
	},
	"filings": {
		"recent": {
			"accessionNumber": ["0001067983-26-000044", "0001067983-26-000012", "0001067983-25-000321"],
			"filingDate": ["2026-08-14", "2026-05-15", "2025-11-12"],
			"form": ["13F-HR", "ADV-E", "10-K"],
			"primaryDocument": ["primary_doc.xml", "adv.pdf", "a10k.htm"]
		}
	}
}`

func TestParseSubmissionsRoundTrip(t *testing.T) {
	rec, err := ParseSubmissions([]byte(submissionsFixture))
	if err != nil {
		t.Fatalf("ParseSubmissions() failed: %v", err)
	}

	if rec.EntityName != "GRANITE FAMILY OFFICE LLC" {
		t.Errorf("EntityName = %q", rec.EntityName)
	}
	if rec.CIK != "1067983" {
		t.Errorf("CIK = %q, want 1067983", rec.CIK)
	}
	if rec.FilingType != models.FilingADV {
		t.Errorf("FilingType = %q, want ADV", rec.FilingType)
	}

	// Filing date and accession come from the newest ADV-prefixed form.
	if got := rec.FilingDate.Format("2006-01-02"); got != "2026-05-15" {
		t.Errorf("FilingDate = %s, want 2026-05-15", got)
	}
	if rec.AccessionNo != "0001067983-26-000012" {
		t.Errorf("AccessionNo = %q", rec.AccessionNo)
	}

	// Business address wins over mailing.
	wantFields := map[string]string{
		models.FieldStreet1:    "100 FEDERAL ST",
		models.FieldStreet2:    "FLOOR 22",
		models.FieldCity:       "BOSTON",
		models.FieldState:      "MA",
		models.FieldZip:        "02110",
		models.FieldPhone:      "(617) 555-0100",
		models.FieldSIC:        "6282",
		models.FieldSICDesc:    "Investment Advice",
		models.FieldTicker:     "GFO",
		models.FieldAccession:  "0001067983-26-000044", // newest 13F-HR row
		models.FieldPrimaryDoc: "primary_doc.xml",
	}
	for key, want := range wantFields {
		if got := rec.Field(key); got != want {
			t.Errorf("Field(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestParseSubmissionsNoADVForm(t *testing.T) {
	raw := []byte(`{
		"cik": "99",
		"name": "SUMMIT CAPITAL LP",
		"filings": {"recent": {
			"accessionNumber": ["0000000099-26-000004", "0000000099-25-000001"],
			"filingDate": ["2026-02-17", "2025-02-12"],
			"form": ["13F-HR", "13F-HR"],
			"primaryDocument": ["primary_doc.xml", "primary_doc.xml"]
		}}
	}`)

	rec, err := ParseSubmissions(raw)
	if err != nil {
		t.Fatalf("ParseSubmissions() failed: %v", err)
	}
	// Without an ADV form the newest filing of any form supplies the date.
	if got := rec.FilingDate.Format("2006-01-02"); got != "2026-02-17" {
		t.Errorf("FilingDate = %s, want 2026-02-17", got)
	}
	if rec.Field(models.FieldAccession) != "0000000099-26-000004" {
		t.Errorf("Field(accessionNumber) = %q", rec.Field(models.FieldAccession))
	}
}

func TestParseSubmissionsNonNumericCIK(t *testing.T) {
	rec, err := ParseSubmissions([]byte(`{"cik": "CIK-1067983", "name": "SUMMIT CAPITAL LP"}`))
	if err != nil {
		t.Fatalf("ParseSubmissions() failed: %v", err)
	}
	// A malformed CIK is dropped; the discovery lead's CIK backfills it.
	if rec.CIK != "" {
		t.Errorf("CIK = %q, want empty for non-numeric input", rec.CIK)
	}
}

func TestParseSubmissionsMissingName(t *testing.T) {
	_, err := ParseSubmissions([]byte(`{"cik": "123", "name": "  "}`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Doc != docSubmissions {
		t.Errorf("Doc = %q, want %q", perr.Doc, docSubmissions)
	}
}

func TestParseSubmissionsInvalidJSON(t *testing.T) {
	_, err := ParseSubmissions([]byte(`{"name": "TRUNCATED`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

// ── 13F primary document ──

const form13FFixture = `<?xml version="1.0" encoding="UTF-8"?>
<edgarSubmission xmlns="http://www.sec.gov/edgar/thirteenffiler" xmlns:com="http://www.sec.gov/edgar/common">
  <headerData>
    <submissionType>13F-HR</submissionType>
  </headerData>
  <formData>
    <coverPage>
      <reportCalendarOrQuarter>06-30-2026</reportCalendarOrQuarter>
      <filingManager>
        <name>BLUE HARBOR CAPITAL LLC</name>
        <address>
          <com:street1>100 MAIN ST</com:street1>
          <com:street2>SUITE 400</com:street2>
          <com:city>BOSTON</com:city>
          <com:stateOrCountry>MA</com:stateOrCountry>
          <com:zipCode>02110</com:zipCode>
        </address>
      </filingManager>
    </coverPage>
    <summaryPage>
      <otherIncludedManagersCount>0</otherIncludedManagersCount>
      <tableEntryTotal>42</tableEntryTotal>
      <tableValueTotal>1234567890</tableValueTotal>
    </summaryPage>
  </formData>
</edgarSubmission>`

func TestParse13F(t *testing.T) {
	rec, err := Parse13F([]byte(form13FFixture))
	if err != nil {
		t.Fatalf("Parse13F() failed: %v", err)
	}

	if rec.EntityName != "BLUE HARBOR CAPITAL LLC" {
		t.Errorf("EntityName = %q", rec.EntityName)
	}
	if rec.FilingType != models.Filing13F {
		t.Errorf("FilingType = %q, want 13F", rec.FilingType)
	}

	wantFields := map[string]string{
		models.FieldStreet1:    "100 MAIN ST",
		models.FieldStreet2:    "SUITE 400",
		models.FieldCity:       "BOSTON",
		models.FieldState:      "MA",
		models.FieldZip:        "02110",
		models.FieldPeriod:     "06-30-2026",
		models.FieldHoldings:   "42",
		models.FieldValueTotal: "1234567890",
	}
	for key, want := range wantFields {
		if got := rec.Field(key); got != want {
			t.Errorf("Field(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestParse13FMissingManager(t *testing.T) {
	raw := []byte(`<edgarSubmission><formData><coverPage></coverPage></formData></edgarSubmission>`)
	_, err := Parse13F(raw)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Doc != docForm13F {
		t.Errorf("Doc = %q, want %q", perr.Doc, docForm13F)
	}
}

func TestParse13FInvalidXML(t *testing.T) {
	_, err := Parse13F([]byte(`<edgarSubmission><unclosed>`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

// ── Dispatch and helpers ──

func TestParseDispatch(t *testing.T) {
	if _, err := Parse([]byte(submissionsFixture), models.FilingADV); err != nil {
		t.Errorf("Parse(ADV) failed: %v", err)
	}
	if _, err := Parse([]byte(form13FFixture), models.Filing13F); err != nil {
		t.Errorf("Parse(13F) failed: %v", err)
	}
	if _, err := Parse([]byte("{}"), models.FilingType("10-K")); err == nil {
		t.Error("Parse with unknown filing type should fail")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string // formatted 2006-01-02; empty means zero time
	}{
		{"2026-08-14", "2026-08-14"},
		{"06-30-2026", "2026-06-30"},
		{"06/30/2026", "2026-06-30"},
		{"2026-08-14T10:30:00Z", "2026-08-14"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := parseDate(tt.input)
		if tt.want == "" {
			if !got.IsZero() {
				t.Errorf("parseDate(%q) = %v, want zero time", tt.input, got)
			}
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("parseDate(%q) = %v, want %s", tt.input, got, tt.want)
		}
	}
}
