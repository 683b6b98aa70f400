package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seenimoa/edgarintel/pkg/models"
)

// RenderJSON serializes investors as an indented JSON array, including the
// source filing reference on each record. A nil slice renders as an empty
// array, not null.
func RenderJSON(investors []models.ClassifiedInvestor) ([]byte, error) {
	if investors == nil {
		investors = []models.ClassifiedInvestor{}
	}
	data, err := json.MarshalIndent(investors, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling investors: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON renders investors and writes them to path, truncating any
// existing file.
func WriteJSON(investors []models.ClassifiedInvestor, path string) error {
	data, err := RenderJSON(investors)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}
	return nil
}

// ReadJSON loads a JSON array previously produced by WriteJSON. Offline
// re-classification reads its input through this.
func ReadJSON(path string) ([]models.ClassifiedInvestor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading JSON file: %w", err)
	}
	var investors []models.ClassifiedInvestor
	if err := json.Unmarshal(data, &investors); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return investors, nil
}
