package report

// ReportTemplate is the HTML template for the run report.
// It is embedded as a Go constant — no external file dependencies.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  /* Header */
  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-left h1 { color: var(--accent); }
  .header-right { text-align: right; }
  .run-badge {
    display: inline-block;
    background: var(--section-bg);
    color: var(--muted);
    padding: 2px 10px;
    border-radius: 4px;
    font-family: monospace;
    font-size: 0.8rem;
  }

  /* Stat grid */
  .stat-grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(140px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
    margin-bottom: 16px;
  }
  .stat-item { text-align: center; }
  .stat-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .stat-item .value { font-size: 1.1rem; font-weight: 600; }

  /* Tables */
  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  td.num, th.num { text-align: right; }

  /* Chart container */
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  /* Section */
  .section { margin: 20px 0; }

  /* Footer */
  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    <p class="muted">Run <span class="run-badge">{{.RunID}}</span></p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Started}} → {{.Finished}} ({{.Duration}})</p>
  </div>
</div>

<!-- ═══════ RUN COUNTERS ═══════ -->
<div class="stat-grid">
  <div class="stat-item">
    <div class="label">Registry Leads</div>
    <div class="value">{{.RegistryLeads}}</div>
  </div>
  <div class="stat-item">
    <div class="label">13F Feed Leads</div>
    <div class="value">{{.FeedLeads}}</div>
  </div>
  <div class="stat-item">
    <div class="label">Duplicates</div>
    <div class="value">{{.Duplicates}}</div>
  </div>
  <div class="stat-item">
    <div class="label">Enriched</div>
    <div class="value">{{.Enriched}}</div>
  </div>
  <div class="stat-item">
    <div class="label">Enrich Failures</div>
    <div class="value">{{.EnrichFailures}}</div>
  </div>
  <div class="stat-item">
    <div class="label">Parse Skips</div>
    <div class="value">{{.ParseSkips}}</div>
  </div>
  <div class="stat-item">
    <div class="label">Classified</div>
    <div class="value">{{.Classified}}</div>
  </div>
</div>

<!-- ═══════ CATEGORIES ═══════ -->
<div class="section">
  <h2>Category Distribution</h2>
  <div class="chart-container">{{.CategoryChart}}</div>

  {{if .Categories}}
  <table>
    <thead><tr><th>Category</th><th class="num">Investors</th><th class="num">Share</th></tr></thead>
    <tbody>
    {{range .Categories}}
    <tr>
      <td>{{.Name}}</td>
      <td class="num">{{.Count}}</td>
      <td class="num">{{.Pct}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
  {{end}}
</div>

<!-- ═══════ TOP INVESTORS ═══════ -->
{{if .TopInvestors}}
<div class="section">
  <h2>Top Investors by Reported AUM</h2>
  <table>
    <thead><tr><th class="num">#</th><th>Entity</th><th>Category</th><th class="num">AUM</th><th>State</th><th>Filed</th></tr></thead>
    <tbody>
    {{range .TopInvestors}}
    <tr>
      <td class="num">{{.Rank}}</td>
      <td>{{.Name}}</td>
      <td>{{.Category}}</td>
      <td class="num">{{.AUM}}</td>
      <td>{{.State}}</td>
      <td>{{.Filed}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<!-- ═══════ STATES ═══════ -->
{{if .States}}
<div class="section">
  <h2>State Distribution</h2>
  <div class="chart-container">{{.StateChart}}</div>
  <table>
    <thead><tr><th>State</th><th class="num">Investors</th></tr></thead>
    <tbody>
    {{range .States}}
    <tr>
      <td>{{.State}}</td>
      <td class="num">{{.Count}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<!-- ═══════ FOOTER ═══════ -->
<div class="footer">
  <p>Source: SEC EDGAR (www.sec.gov). Figures reflect filings retrieved during this run;
  reported AUM is the 13F portfolio value where available.</p>
</div>

</body>
</html>`
