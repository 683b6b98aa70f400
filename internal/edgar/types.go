package edgar

// --- Company Tickers (www.sec.gov/files/company_tickers.json) ---
// The file is a JSON map keyed by row number:
//   {"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}, ...}

// tickerEntry is a row from the CIK<->ticker mapping file. Despite the
// field name, cik_str is a number in the live file.
type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}
