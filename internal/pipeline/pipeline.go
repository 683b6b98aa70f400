// Package pipeline orchestrates one scrape run: discovery of adviser and
// 13F leads, CIK dedup, concurrent enrichment from EDGAR submissions, and
// rule-based classification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/edgarintel/internal/classify"
	"github.com/seenimoa/edgarintel/internal/filing"
	"github.com/seenimoa/edgarintel/internal/logger"
	"github.com/seenimoa/edgarintel/internal/telemetry"
	"github.com/seenimoa/edgarintel/pkg/models"
)

const (
	DefaultRegistryLimit = 150
	DefaultFeedLimit     = 100
	DefaultConcurrency   = 4
	MaxConcurrency       = 16

	progressEvery = 20
)

// ErrNoLeads is returned when both discovery phases come back empty.
var ErrNoLeads = errors.New("no leads discovered")

// EdgarClient is the slice of the EDGAR client the pipeline depends on.
type EdgarClient interface {
	CompanyTickers(ctx context.Context) ([]models.Institution, error)
	Recent13F(ctx context.Context, count int) ([]models.Institution, int, error)
	Submissions(ctx context.Context, cik string) ([]byte, error)
	FilingDocument(ctx context.Context, cik, accessionNo, primaryDoc string) ([]byte, error)
}

// Options tune one run.
type Options struct {
	RegistryLimit int  // max adviser leads kept from the registry
	FeedLimit     int  // max leads taken from the 13F feed
	Concurrency   int  // enrichment workers, clamped to [1, MaxConcurrency]
	SkipRegistry  bool // skip phase 1
	SkipFeed      bool // skip phase 2
}

func (o *Options) applyDefaults() {
	if o.RegistryLimit <= 0 {
		o.RegistryLimit = DefaultRegistryLimit
	}
	if o.FeedLimit <= 0 {
		o.FeedLimit = DefaultFeedLimit
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Concurrency > MaxConcurrency {
		o.Concurrency = MaxConcurrency
	}
}

// Result is what one run produced. Investors are ordered by discovery
// sequence, independent of worker completion order.
type Result struct {
	Investors []models.ClassifiedInvestor
	Stats     models.ScrapeStats
	Started   time.Time
	Finished  time.Time
}

// Pipeline runs the scrape phases against one EDGAR client.
type Pipeline struct {
	client EdgarClient
	log    *zap.Logger
	opts   Options
	tracer trace.Tracer
}

// New builds a pipeline. A nil logger falls back to zap.NewNop().
func New(client EdgarClient, log *zap.Logger, opts Options) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	opts.applyDefaults()
	return &Pipeline{
		client: client,
		log:    log,
		opts:   opts,
		tracer: telemetry.Tracer("edgarintel/pipeline"),
	}
}

// Run executes all phases. One bad lead never aborts the batch: partial
// results come back alongside the joined run-level errors, and callers
// export whatever succeeded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = logger.ContextWithLogger(ctx, p.log)

	res := &Result{Started: time.Now()}
	var runErrs []error

	var leads []models.Institution
	if !p.opts.SkipRegistry {
		registry, err := p.discoverRegistry(ctx)
		if err != nil {
			runErrs = append(runErrs, fmt.Errorf("registry discovery: %w", err))
		}
		res.Stats.RegistryLeads = len(registry)
		leads = append(leads, registry...)
	}
	if !p.opts.SkipFeed {
		feed, skipped, err := p.discoverFeed(ctx)
		if err != nil {
			runErrs = append(runErrs, fmt.Errorf("13F feed discovery: %w", err))
		}
		res.Stats.FeedLeads = len(feed)
		res.Stats.ParseSkips += skipped
		leads = append(leads, feed...)
	}

	// Registry leads precede feed leads, so they win the dedup.
	_, dedupSpan := p.tracer.Start(ctx, "dedup")
	deduped, dupes := dedupeByCIK(leads)
	res.Stats.Duplicates = dupes
	dedupSpan.SetAttributes(
		attribute.Int("input", len(leads)),
		attribute.Int("kept", len(deduped)),
		attribute.Int("duplicates", dupes),
	)
	dedupSpan.End()

	p.log.Info("discovery complete",
		zap.Int("registry_leads", res.Stats.RegistryLeads),
		zap.Int("feed_leads", res.Stats.FeedLeads),
		zap.Int("duplicates", dupes),
	)

	if len(deduped) == 0 {
		res.Finished = time.Now()
		runErrs = append(runErrs, ErrNoLeads)
		return res, errors.Join(runErrs...)
	}

	records, enrichErrs := p.enrichAll(ctx, deduped, &res.Stats)
	runErrs = append(runErrs, enrichErrs...)

	p.classifyAll(ctx, deduped, records, res)

	res.Finished = time.Now()
	return res, errors.Join(runErrs...)
}

// ── Discovery ────────────────────────────────────────────────────────

// discoverRegistry scans the company registry for names carrying an
// investment keyword.
func (p *Pipeline) discoverRegistry(ctx context.Context) ([]models.Institution, error) {
	ctx, span := p.tracer.Start(ctx, "registry_discovery")
	defer span.End()

	all, err := p.client.CompanyTickers(ctx)
	if err != nil {
		return nil, err
	}

	leads := make([]models.Institution, 0, p.opts.RegistryLimit)
	for i := range all {
		if len(leads) >= p.opts.RegistryLimit {
			break
		}
		if !classify.IsInvestmentFirm(all[i].Name) {
			continue
		}
		leads = append(leads, all[i])
	}

	span.SetAttributes(
		attribute.Int("scanned", len(all)),
		attribute.Int("leads", len(leads)),
	)
	p.log.Info("registry discovery complete",
		zap.Int("scanned", len(all)),
		zap.Int("leads", len(leads)),
	)
	return leads, nil
}

// discoverFeed pulls the most recent 13F-HR filers from the Atom feed.
func (p *Pipeline) discoverFeed(ctx context.Context) ([]models.Institution, int, error) {
	ctx, span := p.tracer.Start(ctx, "feed_discovery")
	defer span.End()

	leads, skipped, err := p.client.Recent13F(ctx, p.opts.FeedLimit)
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(
		attribute.Int("leads", len(leads)),
		attribute.Int("skipped", skipped),
	)
	p.log.Info("13F feed discovery complete",
		zap.Int("leads", len(leads)),
		zap.Int("skipped", skipped),
	)
	return leads, skipped, nil
}

// dedupeByCIK keeps the first occurrence of each CIK and stamps the
// survivors with their output sequence.
func dedupeByCIK(leads []models.Institution) ([]models.Institution, int) {
	seen := make(map[string]struct{}, len(leads))
	out := make([]models.Institution, 0, len(leads))
	dupes := 0
	for i := range leads {
		if _, ok := seen[leads[i].CIK]; ok {
			dupes++
			continue
		}
		seen[leads[i].CIK] = struct{}{}
		lead := leads[i]
		lead.Seq = len(out)
		out = append(out, lead)
	}
	return out, dupes
}

// ── Enrichment ───────────────────────────────────────────────────────

// enrichOutcome is one lead's enrichment accounting.
type enrichOutcome struct {
	rec        *models.FilingRecord
	enriched   bool  // submissions fetched and parsed
	parseSkips int   // malformed documents encountered
	fetchErr   error // retry-exhausted fetch, surfaced run-level
}

// enrichAll resolves every lead under a bounded worker pool. All workers
// share the client's rate limiter; worker failures never stop the batch.
func (p *Pipeline) enrichAll(ctx context.Context, leads []models.Institution, stats *models.ScrapeStats) ([]*models.FilingRecord, []error) {
	ctx, span := p.tracer.Start(ctx, "enrich")
	defer span.End()

	records := make([]*models.FilingRecord, len(leads))
	var (
		mu   sync.Mutex
		errs []error
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for i := range leads {
		if gctx.Err() != nil {
			break // cancelled; stop scheduling, let in-flight workers drain
		}
		idx, lead := i, leads[i]
		g.Go(func() error {
			out := p.enrich(gctx, lead)

			mu.Lock()
			defer mu.Unlock()
			if out.rec != nil {
				records[idx] = out.rec
			}
			if out.enriched {
				stats.Enriched++
			}
			stats.ParseSkips += out.parseSkips
			if out.fetchErr != nil && !errors.Is(out.fetchErr, context.Canceled) {
				stats.EnrichFailures++
				errs = append(errs, out.fetchErr)
			}
			done++
			if done%progressEvery == 0 {
				p.log.Info("enrichment progress",
					zap.Int("done", done),
					zap.Int("total", len(leads)),
				)
			}
			return nil
		})
	}
	_ = g.Wait() // workers always return nil

	// An interrupted run must not look like a complete one: surface the
	// cancellation as a run-level error alongside the partial results.
	if err := ctx.Err(); err != nil {
		errs = append(errs, fmt.Errorf("enrichment interrupted after %d of %d leads: %w", done, len(leads), err))
	}

	span.SetAttributes(
		attribute.Int("leads", len(leads)),
		attribute.Int("enriched", stats.Enriched),
		attribute.Int("failures", stats.EnrichFailures),
	)
	return records, errs
}

// enrich resolves one lead against the submissions API, and for 13F leads
// also fetches the filing's primary document for the reported totals.
// Degradation rules:
//   - run cancelled before the submissions fetch completed: lead dropped
//     (it is not a fetch failure, and an unenriched row must not pass for
//     a complete one)
//   - submissions fetch failure: lead kept with discovery-only fields
//   - submissions parse failure: ADV lead dropped, 13F lead kept (the feed
//     already identified it)
//   - 13F primary document fetch or parse failure: record kept without AUM
func (p *Pipeline) enrich(ctx context.Context, lead models.Institution) enrichOutcome {
	log := p.log.With(zap.String("cik", lead.CIK), zap.String("entity", lead.Name))

	raw, err := p.client.Submissions(ctx, lead.CIK)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			log.Debug("enrichment cancelled", zap.Error(err))
			return enrichOutcome{}
		}
		log.Warn("submissions fetch failed", zap.Error(err))
		return enrichOutcome{
			rec:      discoveryRecord(lead),
			fetchErr: fmt.Errorf("submissions %s: %w", lead.CIK, err),
		}
	}

	rec, err := filing.ParseSubmissions(raw)
	if err != nil {
		log.Warn("submissions parse failed", zap.Error(err))
		if lead.FilingType == models.FilingADV {
			return enrichOutcome{parseSkips: 1}
		}
		return enrichOutcome{rec: discoveryRecord(lead), parseSkips: 1}
	}

	mergeLead(rec, lead)
	out := enrichOutcome{rec: rec, enriched: true}

	if lead.FilingType != models.Filing13F {
		return out
	}

	accession := rec.Field(models.FieldAccession)
	primaryDoc := rec.Field(models.FieldPrimaryDoc)
	if accession == "" || primaryDoc == "" {
		log.Debug("no 13F primary document listed in submissions")
		return out
	}

	docRaw, err := p.client.FilingDocument(ctx, rec.CIK, accession, primaryDoc)
	if err != nil {
		log.Warn("13F primary document fetch failed", zap.Error(err))
		out.fetchErr = fmt.Errorf("13F document %s/%s: %w", rec.CIK, accession, err)
		return out
	}

	holdings, err := filing.Parse13F(docRaw)
	if err != nil {
		log.Warn("13F primary document parse failed", zap.Error(err))
		out.parseSkips = 1
		return out
	}

	// Carry the reported totals onto the submissions record. The submissions
	// address wins when both documents have one.
	for _, key := range []string{models.FieldValueTotal, models.FieldHoldings, models.FieldPeriod} {
		if v := holdings.Field(key); v != "" {
			rec.RawFields[key] = v
		}
	}
	if rec.AccessionNo == "" {
		rec.AccessionNo = accession
	}
	return out
}

// discoveryRecord builds the minimal record a lead carries before any
// enrichment: what the registry row or feed entry said.
func discoveryRecord(lead models.Institution) *models.FilingRecord {
	rec := &models.FilingRecord{
		EntityName:  lead.Name,
		CIK:         lead.CIK,
		FilingType:  lead.FilingType,
		FilingDate:  lead.FiledAt,
		AccessionNo: lead.AccessionNo,
		SourceURL:   lead.SourceURL,
	}
	if lead.Ticker != "" {
		setRawField(rec, models.FieldTicker, lead.Ticker)
	}
	if lead.Summary != "" {
		setRawField(rec, models.FieldSummary, lead.Summary)
	}
	return rec
}

// mergeLead backfills discovery fields the submissions document does not
// carry, and pins the record to the lead's filing family.
func mergeLead(rec *models.FilingRecord, lead models.Institution) {
	rec.FilingType = lead.FilingType
	if rec.CIK == "" {
		rec.CIK = lead.CIK
	}
	if rec.SourceURL == "" {
		rec.SourceURL = lead.SourceURL
	}
	if rec.FilingDate.IsZero() {
		rec.FilingDate = lead.FiledAt
	}
	if rec.AccessionNo == "" {
		rec.AccessionNo = lead.AccessionNo
	}
	if lead.Ticker != "" && rec.Field(models.FieldTicker) == "" {
		setRawField(rec, models.FieldTicker, lead.Ticker)
	}
	if lead.Summary != "" && rec.Field(models.FieldSummary) == "" {
		setRawField(rec, models.FieldSummary, lead.Summary)
	}
}

func setRawField(rec *models.FilingRecord, key, val string) {
	if rec.RawFields == nil {
		rec.RawFields = make(map[string]string)
	}
	rec.RawFields[key] = val
}

// ── Classification ───────────────────────────────────────────────────

// classifyAll turns surviving records into classified investors, ordered
// by discovery sequence.
func (p *Pipeline) classifyAll(ctx context.Context, leads []models.Institution, records []*models.FilingRecord, res *Result) {
	_, span := p.tracer.Start(ctx, "classify")
	defer span.End()

	res.Stats.ByCategory = make(map[models.Category]int)
	for idx, rec := range records {
		if rec == nil {
			continue
		}
		inv := classify.Classify(rec)
		inv.Seq = leads[idx].Seq
		res.Investors = append(res.Investors, inv)
		res.Stats.ByCategory[inv.Category]++
	}

	sort.Slice(res.Investors, func(i, j int) bool {
		return res.Investors[i].Seq < res.Investors[j].Seq
	})
	res.Stats.Classified = len(res.Investors)

	span.SetAttributes(attribute.Int("classified", res.Stats.Classified))
}
