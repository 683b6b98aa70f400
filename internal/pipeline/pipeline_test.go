package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/seenimoa/edgarintel/pkg/models"
)

// fakeClient serves canned discovery leads and per-CIK documents.
type fakeClient struct {
	registry    []models.Institution
	feed        []models.Institution
	feedSkips   int
	submissions map[string][]byte // keyed by CIK; missing key = fetch error
	documents   map[string][]byte // keyed by accession number
}

func (f *fakeClient) CompanyTickers(ctx context.Context) ([]models.Institution, error) {
	if f.registry == nil {
		return nil, errors.New("registry unavailable")
	}
	return f.registry, nil
}

func (f *fakeClient) Recent13F(ctx context.Context, count int) ([]models.Institution, int, error) {
	if f.feed == nil {
		return nil, 0, errors.New("feed unavailable")
	}
	return f.feed, f.feedSkips, nil
}

func (f *fakeClient) Submissions(ctx context.Context, cik string) ([]byte, error) {
	raw, ok := f.submissions[cik]
	if !ok {
		return nil, fmt.Errorf("submissions %s: maximum retries exceeded", cik)
	}
	return raw, nil
}

func (f *fakeClient) FilingDocument(ctx context.Context, cik, accessionNo, primaryDoc string) ([]byte, error) {
	raw, ok := f.documents[accessionNo]
	if !ok {
		return nil, fmt.Errorf("document %s: not found", accessionNo)
	}
	return raw, nil
}

func submissionsJSON(name, cik string) []byte {
	return []byte(fmt.Sprintf(`{
		"cik": %q,
		"name": %q,
		"phone": "555-0100",
		"addresses": {"business": {"street1": "1 MAIN ST", "city": "BOSTON", "stateOrCountry": "MA", "zipCode": "02110"}},
		"filings": {"recent": {
			"accessionNumber": ["0000000001-26-000001"],
			"filingDate": ["2026-06-30"],
			"form": ["ADV-E"],
			"primaryDocument": ["adv.pdf"]
		}}
	}`, cik, name))
}

// submissionsJSON13F lists a 13F-HR filing so enrichment fetches the
// primary document.
func submissionsJSON13F(name, cik, accession string) []byte {
	return []byte(fmt.Sprintf(`{
		"cik": %q,
		"name": %q,
		"addresses": {"business": {"street1": "9 BAY ST", "city": "CHICAGO", "stateOrCountry": "IL", "zipCode": "60601"}},
		"filings": {"recent": {
			"accessionNumber": [%q],
			"filingDate": ["2026-08-14"],
			"form": ["13F-HR"],
			"primaryDocument": ["primary_doc.xml"]
		}}
	}`, cik, name, accession))
}

const form13FDoc = `<edgarSubmission>
	<formData>
		<coverPage>
			<reportCalendarOrQuarter>06-30-2026</reportCalendarOrQuarter>
			<filingManager>
				<name>ZELKOVA HOLDINGS INC</name>
				<address><street1>9 BAY ST</street1><city>CHICAGO</city><stateOrCountry>IL</stateOrCountry><zipCode>60601</zipCode></address>
			</filingManager>
		</coverPage>
		<summaryPage>
			<tableEntryTotal>42</tableEntryTotal>
			<tableValueTotal>1250000000</tableValueTotal>
		</summaryPage>
	</formData>
</edgarSubmission>`

// ── End to end ──

// Three synthetic leads: a venture adviser, a keywordless 13F filer, and an
// adviser whose submissions document is malformed. Exactly two investors
// come out, in discovery order, with the malformed one skipped.
func TestRunEndToEnd(t *testing.T) {
	client := &fakeClient{
		registry: []models.Institution{
			{CIK: "11", Name: "ACME VENTURE PARTNERS LLC", Ticker: "ACME", FilingType: models.FilingADV},
			{CIK: "22", Name: "BROKEN CAPITAL MANAGEMENT", FilingType: models.FilingADV},
		},
		feed: []models.Institution{
			{CIK: "33", Name: "ZELKOVA HOLDINGS INC", FilingType: models.Filing13F, FiledAt: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)},
		},
		submissions: map[string][]byte{
			"11": submissionsJSON("ACME VENTURE PARTNERS LLC", "11"),
			"22": []byte(`{"name": "TRUNCATED`),
			"33": submissionsJSON13F("ZELKOVA HOLDINGS INC", "33", "0000000033-26-000007"),
		},
		documents: map[string][]byte{
			"0000000033-26-000007": []byte(form13FDoc),
		},
	}

	res, err := New(client, nil, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(res.Investors) != 2 {
		t.Fatalf("got %d investors, want 2", len(res.Investors))
	}

	acme := res.Investors[0]
	if acme.EntityName != "ACME VENTURE PARTNERS LLC" {
		t.Errorf("[0].EntityName = %q", acme.EntityName)
	}
	if acme.Category != models.CategoryVentureCapital {
		t.Errorf("[0].Category = %q, want %q", acme.Category, models.CategoryVentureCapital)
	}
	if acme.State != "MA" {
		t.Errorf("[0].State = %q, want MA", acme.State)
	}
	if acme.Ticker != "ACME" {
		t.Errorf("[0].Ticker = %q, want ACME", acme.Ticker)
	}

	zelkova := res.Investors[1]
	if zelkova.EntityName != "ZELKOVA HOLDINGS INC" {
		t.Errorf("[1].EntityName = %q", zelkova.EntityName)
	}
	if zelkova.Category != models.CategoryOther {
		t.Errorf("[1].Category = %q, want %q", zelkova.Category, models.CategoryOther)
	}
	if zelkova.FilingType != models.Filing13F {
		t.Errorf("[1].FilingType = %q, want 13F", zelkova.FilingType)
	}
	if zelkova.AUM != 1250000000 {
		t.Errorf("[1].AUM = %f, want 1250000000", zelkova.AUM)
	}
	if zelkova.Source.Field(models.FieldHoldings) != "42" {
		t.Errorf("[1] holdings count = %q, want 42", zelkova.Source.Field(models.FieldHoldings))
	}

	// Every investor references its filing record.
	for i := range res.Investors {
		if res.Investors[i].Source == nil {
			t.Errorf("[%d].Source is nil", i)
		}
	}

	stats := res.Stats
	if stats.RegistryLeads != 2 {
		t.Errorf("RegistryLeads = %d, want 2", stats.RegistryLeads)
	}
	if stats.FeedLeads != 1 {
		t.Errorf("FeedLeads = %d, want 1", stats.FeedLeads)
	}
	if stats.ParseSkips != 1 {
		t.Errorf("ParseSkips = %d, want 1", stats.ParseSkips)
	}
	if stats.Enriched != 2 {
		t.Errorf("Enriched = %d, want 2", stats.Enriched)
	}
	if stats.Classified != 2 {
		t.Errorf("Classified = %d, want 2", stats.Classified)
	}
	if stats.ByCategory[models.CategoryVentureCapital] != 1 || stats.ByCategory[models.CategoryOther] != 1 {
		t.Errorf("ByCategory = %v", stats.ByCategory)
	}
}

// ── Dedup ──

func TestRunDedupRegistryWins(t *testing.T) {
	client := &fakeClient{
		registry: []models.Institution{
			{CIK: "11", Name: "ACME VENTURE PARTNERS LLC", FilingType: models.FilingADV},
		},
		feed: []models.Institution{
			{CIK: "11", Name: "ACME VENTURE PARTNERS LLC", FilingType: models.Filing13F},
		},
		submissions: map[string][]byte{
			"11": submissionsJSON("ACME VENTURE PARTNERS LLC", "11"),
		},
	}

	res, err := New(client, nil, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Investors) != 1 {
		t.Fatalf("got %d investors, want 1", len(res.Investors))
	}
	if res.Stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", res.Stats.Duplicates)
	}
	// The registry occurrence came first, so the record stays ADV.
	if res.Investors[0].FilingType != models.FilingADV {
		t.Errorf("FilingType = %q, want ADV", res.Investors[0].FilingType)
	}
}

// ── Degradation ──

// A submissions fetch that exhausts its retries keeps the lead with its
// discovery fields and surfaces a run-level error; the batch continues.
func TestRunFetchFailureKeepsLead(t *testing.T) {
	client := &fakeClient{
		registry: []models.Institution{
			{CIK: "11", Name: "ACME VENTURE PARTNERS LLC", FilingType: models.FilingADV},
			{CIK: "44", Name: "ORCHARD WEALTH ADVISORS", FilingType: models.FilingADV},
		},
		feed: []models.Institution{},
		submissions: map[string][]byte{
			"11": submissionsJSON("ACME VENTURE PARTNERS LLC", "11"),
			// no entry for 44: every fetch fails
		},
	}

	res, err := New(client, nil, Options{}).Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want surfaced fetch failure")
	}
	if len(res.Investors) != 2 {
		t.Fatalf("got %d investors, want 2 (failed lead kept)", len(res.Investors))
	}
	if res.Stats.EnrichFailures != 1 {
		t.Errorf("EnrichFailures = %d, want 1", res.Stats.EnrichFailures)
	}

	// The degraded lead still classifies from its discovery name.
	orchard := res.Investors[1]
	if orchard.EntityName != "ORCHARD WEALTH ADVISORS" {
		t.Errorf("[1].EntityName = %q", orchard.EntityName)
	}
	if orchard.Category != models.CategoryAssetManagement {
		t.Errorf("[1].Category = %q, want %q", orchard.Category, models.CategoryAssetManagement)
	}
	if orchard.City != "" {
		t.Errorf("[1].City = %q, want empty (no enrichment)", orchard.City)
	}
}

// A malformed 13F primary document degrades the record to no AUM instead of
// dropping it.
func TestRun13FDocumentParseFailure(t *testing.T) {
	client := &fakeClient{
		registry: []models.Institution{},
		feed: []models.Institution{
			{CIK: "33", Name: "ZELKOVA HOLDINGS INC", FilingType: models.Filing13F},
		},
		submissions: map[string][]byte{
			"33": submissionsJSON13F("ZELKOVA HOLDINGS INC", "33", "0000000033-26-000007"),
		},
		documents: map[string][]byte{
			"0000000033-26-000007": []byte("<edgarSubmission><formData><coverPage>"),
		},
	}

	res, err := New(client, nil, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Investors) != 1 {
		t.Fatalf("got %d investors, want 1", len(res.Investors))
	}
	if res.Investors[0].AUM != 0 {
		t.Errorf("AUM = %f, want 0 (document parse failed)", res.Investors[0].AUM)
	}
	if res.Stats.ParseSkips != 1 {
		t.Errorf("ParseSkips = %d, want 1", res.Stats.ParseSkips)
	}
}

// ── Cancellation ──

// interruptClient serves one good submissions document, then cancels the
// run and blocks until the context dies, like an interrupt arriving while
// a fetch is in flight.
type interruptClient struct {
	fakeClient
	goodCIK string
	cancel  context.CancelFunc
}

func (c *interruptClient) Submissions(ctx context.Context, cik string) ([]byte, error) {
	if cik == c.goodCIK {
		return c.fakeClient.Submissions(ctx, cik)
	}
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

// A cancelled run keeps the leads already enriched, drops the ones the
// cancellation cut off, and surfaces the cancellation as a run-level error
// so callers do not mistake the partial run for a complete one.
func TestRunCancelledMidEnrichment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &interruptClient{
		fakeClient: fakeClient{
			registry: []models.Institution{
				{CIK: "101", Name: "ACME VENTURE PARTNERS LLC", FilingType: models.FilingADV},
				{CIK: "102", Name: "BROKEN CAPITAL MANAGEMENT", FilingType: models.FilingADV},
				{CIK: "103", Name: "ORCHARD WEALTH ADVISORS", FilingType: models.FilingADV},
			},
			feed: []models.Institution{},
			submissions: map[string][]byte{
				"101": submissionsJSON("ACME VENTURE PARTNERS LLC", "101"),
				"102": submissionsJSON("BROKEN CAPITAL MANAGEMENT", "102"),
				"103": submissionsJSON("ORCHARD WEALTH ADVISORS", "103"),
			},
		},
		goodCIK: "101",
		cancel:  cancel,
	}

	res, err := New(client, nil, Options{Concurrency: 1}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled surfaced", err)
	}
	if len(res.Investors) != 1 {
		t.Fatalf("got %d investors after cancel, want 1 (the enriched lead)", len(res.Investors))
	}
	if res.Investors[0].EntityName != "ACME VENTURE PARTNERS LLC" {
		t.Errorf("[0].EntityName = %q", res.Investors[0].EntityName)
	}
	// Cancellation is not a fetch failure.
	if res.Stats.EnrichFailures != 0 {
		t.Errorf("EnrichFailures = %d, want 0", res.Stats.EnrichFailures)
	}
	if res.Stats.Enriched != 1 {
		t.Errorf("Enriched = %d, want 1", res.Stats.Enriched)
	}
}

// ── Empty runs ──

func TestRunNoLeads(t *testing.T) {
	client := &fakeClient{
		registry:    []models.Institution{},
		feed:        []models.Institution{},
		submissions: map[string][]byte{},
	}

	res, err := New(client, nil, Options{}).Run(context.Background())
	if !errors.Is(err, ErrNoLeads) {
		t.Fatalf("Run() error = %v, want ErrNoLeads", err)
	}
	if len(res.Investors) != 0 {
		t.Errorf("got %d investors, want 0", len(res.Investors))
	}
}

// Both discovery phases failing surfaces their errors and ErrNoLeads.
func TestRunDiscoveryFailures(t *testing.T) {
	client := &fakeClient{} // nil registry and feed: both phases error

	_, err := New(client, nil, Options{}).Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want discovery failures")
	}
	if !errors.Is(err, ErrNoLeads) {
		t.Errorf("joined error should include ErrNoLeads, got %v", err)
	}
}

// ── Limits ──

func TestRunRegistryLimit(t *testing.T) {
	var leads []models.Institution
	subs := make(map[string][]byte)
	for i := 0; i < 6; i++ {
		cik := fmt.Sprintf("%d", 100+i)
		name := fmt.Sprintf("FIRM %d CAPITAL PARTNERS", i)
		leads = append(leads, models.Institution{CIK: cik, Name: name, FilingType: models.FilingADV})
		subs[cik] = submissionsJSON(name, cik)
	}
	client := &fakeClient{registry: leads, feed: []models.Institution{}, submissions: subs}

	res, err := New(client, nil, Options{RegistryLimit: 3}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Stats.RegistryLeads != 3 {
		t.Errorf("RegistryLeads = %d, want 3", res.Stats.RegistryLeads)
	}
	if len(res.Investors) != 3 {
		t.Errorf("got %d investors, want 3", len(res.Investors))
	}
}
