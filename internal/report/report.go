// Package report renders a standalone HTML summary of one scrape run:
// run metadata, pipeline counters, the category distribution, and the
// top investors by reported AUM.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/seenimoa/edgarintel/pkg/models"
	"github.com/seenimoa/edgarintel/pkg/utils"
)

const (
	topInvestorCount = 10
	stateRowCount    = 10
)

// ════════════════════════════════════════════════════════════════════
// Report Data — Flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to the HTML template.
type ReportData struct {
	// Header
	Title       string
	RunID       string
	GeneratedAt string
	Started     string
	Finished    string
	Duration    string

	// Pipeline counters
	RegistryLeads  int
	FeedLeads      int
	Duplicates     int
	Enriched       int
	EnrichFailures int
	ParseSkips     int
	Classified     int

	// Distribution
	Categories    []CategoryRow
	CategoryChart template.HTML
	TopInvestors  []InvestorRow
	States        []StateRow
	StateChart    template.HTML
}

// CategoryRow is one category's share of the classified set.
type CategoryRow struct {
	Name  string
	Count int
	Pct   string
}

// InvestorRow is a flattened investor for the top-AUM table.
type InvestorRow struct {
	Rank     int
	Name     string
	Category string
	AUM      string
	State    string
	Filed    string
}

// StateRow is one state's investor count.
type StateRow struct {
	State string
	Count int
}

// ════════════════════════════════════════════════════════════════════
// Build + Render
// ════════════════════════════════════════════════════════════════════

// Build flattens one run's results into template data. All timestamps come
// from the run itself, so the same inputs always build the same report.
func Build(runID string, started, finished time.Time, stats models.ScrapeStats, investors []models.ClassifiedInvestor) *ReportData {
	data := &ReportData{
		Title:       "EDGAR Investor Scrape Report",
		RunID:       runID,
		GeneratedAt: finished.UTC().Format("02 Jan 2006 15:04 UTC"),
		Started:     started.UTC().Format("2006-01-02 15:04:05"),
		Finished:    finished.UTC().Format("2006-01-02 15:04:05"),
		Duration:    FormatDuration(finished.Sub(started)),

		RegistryLeads:  stats.RegistryLeads,
		FeedLeads:      stats.FeedLeads,
		Duplicates:     stats.Duplicates,
		Enriched:       stats.Enriched,
		EnrichFailures: stats.EnrichFailures,
		ParseSkips:     stats.ParseSkips,
		Classified:     len(investors),
	}

	counts := make(map[models.Category]int)
	states := make(map[string]int)
	for i := range investors {
		counts[investors[i].Category]++
		if investors[i].State != "" {
			states[investors[i].State]++
		}
	}

	// Category distribution in classification priority order.
	var catBars []BarItem
	for _, cat := range models.AllCategories() {
		count := counts[cat]
		if count == 0 {
			continue
		}
		pct := float64(count) / float64(len(investors)) * 100
		data.Categories = append(data.Categories, CategoryRow{
			Name:  string(cat),
			Count: count,
			Pct:   fmt.Sprintf("%.1f%%", pct),
		})
		catBars = append(catBars, BarItem{Label: string(cat), Value: float64(count)})
	}
	catCfg := DefaultChartConfig()
	catCfg.Title = "Investors by Category"
	if n := len(catBars); n > 0 {
		catCfg.Height = catCfg.MarginTop + catCfg.MarginBottom + 36*n
	}
	data.CategoryChart = template.HTML(HorizontalBarChart(catBars, catCfg))

	// Top investors by reported AUM. Records without an AUM stay out.
	ranked := make([]models.ClassifiedInvestor, 0, len(investors))
	for i := range investors {
		if investors[i].AUM > 0 {
			ranked = append(ranked, investors[i])
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AUM != ranked[j].AUM {
			return ranked[i].AUM > ranked[j].AUM
		}
		return ranked[i].EntityName < ranked[j].EntityName
	})
	if len(ranked) > topInvestorCount {
		ranked = ranked[:topInvestorCount]
	}
	for i := range ranked {
		filed := ""
		if !ranked[i].FilingDate.IsZero() {
			filed = ranked[i].FilingDate.Format("2006-01-02")
		}
		// Exact dollars in the table; the charts and console summary use
		// the compact form.
		data.TopInvestors = append(data.TopInvestors, InvestorRow{
			Rank:     i + 1,
			Name:     ranked[i].EntityName,
			Category: string(ranked[i].Category),
			AUM:      utils.FormatUSD(ranked[i].AUM),
			State:    ranked[i].State,
			Filed:    filed,
		})
	}

	// State distribution, largest first.
	stateNames := make([]string, 0, len(states))
	for st := range states {
		stateNames = append(stateNames, st)
	}
	sort.Slice(stateNames, func(i, j int) bool {
		if states[stateNames[i]] != states[stateNames[j]] {
			return states[stateNames[i]] > states[stateNames[j]]
		}
		return stateNames[i] < stateNames[j]
	})
	if len(stateNames) > stateRowCount {
		stateNames = stateNames[:stateRowCount]
	}
	var stateBars []BarItem
	for _, st := range stateNames {
		data.States = append(data.States, StateRow{State: st, Count: states[st]})
		stateBars = append(stateBars, BarItem{Label: st, Value: float64(states[st])})
	}
	if len(stateBars) > 0 {
		stCfg := DefaultChartConfig()
		stCfg.Title = "Investors by State"
		stCfg.MarginLeft = 90
		stCfg.Height = stCfg.MarginTop + stCfg.MarginBottom + 30*len(stateBars)
		data.StateChart = template.HTML(HorizontalBarChart(stateBars, stCfg))
	}

	return data
}

// Render executes the embedded HTML template into w.
func Render(w io.Writer, data *ReportData) error {
	if data == nil {
		return fmt.Errorf("report data is nil")
	}

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// WriteFile renders the report to path, creating parent directories.
func WriteFile(path string, data *ReportData) error {
	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}
	return nil
}

// FormatDuration formats a run duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
