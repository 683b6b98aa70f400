// Package export writes classified investors to CSV and JSON files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/seenimoa/edgarintel/pkg/models"
)

// csvColumns is the fixed header row. Column order is part of the output
// contract: downstream spreadsheets key on position, so never reorder.
var csvColumns = []string{
	"entity_name",
	"category",
	"aum",
	"filing_type",
	"filing_date",
	"cik",
	"ticker",
	"city",
	"state",
	"phone",
	"sic",
	"sic_description",
	"source_url",
}

// RenderCSV serializes investors into CSV bytes: one header row plus one
// row per record, in slice order. The output carries no timestamps, so
// the same record set always renders byte-identical.
func RenderCSV(investors []models.ClassifiedInvestor) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for i := range investors {
		if err := w.Write(csvRow(&investors[i])); err != nil {
			return nil, fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV renders investors and writes them to path, truncating any
// existing file.
func WriteCSV(investors []models.ClassifiedInvestor, path string) error {
	data, err := RenderCSV(investors)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing CSV file: %w", err)
	}
	return nil
}

func csvRow(inv *models.ClassifiedInvestor) []string {
	aum := ""
	if inv.AUM > 0 {
		aum = strconv.FormatFloat(inv.AUM, 'f', 2, 64)
	}
	filed := ""
	if !inv.FilingDate.IsZero() {
		filed = inv.FilingDate.Format("2006-01-02")
	}
	return []string{
		inv.EntityName,
		string(inv.Category),
		aum,
		string(inv.FilingType),
		filed,
		inv.CIK,
		inv.Ticker,
		inv.City,
		inv.State,
		inv.Phone,
		inv.SIC,
		inv.SICDescription,
		inv.SourceURL,
	}
}
