package filing

import "encoding/xml"

// --- EDGAR Submissions (data.sec.gov/submissions) ---

// submissionsDoc mirrors the slice of the submissions JSON this parser
// reads: entity metadata, the business address, and the recent-filings
// parallel arrays.
type submissionsDoc struct {
	CIK            string                        `json:"cik"`
	Name           string                        `json:"name"`
	Phone          string                        `json:"phone"`
	SIC            string                        `json:"sic"`
	SICDescription string                        `json:"sicDescription"`
	Tickers        []string                      `json:"tickers"`
	Addresses      map[string]submissionsAddress `json:"addresses"`
	Filings        submissionsFilings            `json:"filings"`
}

type submissionsAddress struct {
	Street1        string `json:"street1"`
	Street2        string `json:"street2"`
	City           string `json:"city"`
	StateOrCountry string `json:"stateOrCountry"`
	ZipCode        string `json:"zipCode"`
}

type submissionsFilings struct {
	Recent submissionsRecent `json:"recent"`
}

// submissionsRecent holds EDGAR's parallel arrays, newest filing first.
// Rows can be ragged, so every index is bounds-checked before use.
type submissionsRecent struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// --- 13F-HR primary document (www.sec.gov/Archives) ---

// form13F mirrors the 13F-HR primary XML (edgarSubmission). encoding/xml
// matches local element names, so the document's namespace prefixes don't
// matter.
type form13F struct {
	XMLName  xml.Name    `xml:"edgarSubmission"`
	FormData form13FData `xml:"formData"`
}

type form13FData struct {
	CoverPage   form13FCover   `xml:"coverPage"`
	SummaryPage form13FSummary `xml:"summaryPage"`
}

type form13FCover struct {
	ReportCalendarOrQuarter string         `xml:"reportCalendarOrQuarter"`
	FilingManager           form13FManager `xml:"filingManager"`
}

type form13FManager struct {
	Name    string         `xml:"name"`
	Address form13FAddress `xml:"address"`
}

type form13FAddress struct {
	Street1        string `xml:"street1"`
	Street2        string `xml:"street2"`
	City           string `xml:"city"`
	StateOrCountry string `xml:"stateOrCountry"`
	ZipCode        string `xml:"zipCode"`
}

// form13FSummary keeps the totals as strings; tableValueTotal is the
// reported portfolio value in whole US dollars.
type form13FSummary struct {
	TableEntryTotal string `xml:"tableEntryTotal"`
	TableValueTotal string `xml:"tableValueTotal"`
}
