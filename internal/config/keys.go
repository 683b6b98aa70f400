package config

import (
	"fmt"
	"os"
)

// SettingSource represents where a setting's value came from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus reports one critical setting for the status command.
type SettingStatus struct {
	Name    string        `json:"name"`
	Source  SettingSource `json:"source"`
	OK      bool          `json:"ok"`
	Display string        `json:"display"`
}

// CheckSettings returns the status of the settings that make or break a
// scrape run: the SEC contact User-Agent, the request rate, and the catalog
// location.
func CheckSettings(cfg *Config) []SettingStatus {
	ua := SettingStatus{
		Name:    "User-Agent",
		Source:  settingSource("EDGARINTEL_SCRAPER_USER_AGENT", cfg.Scraper.UserAgent != DefaultUserAgent),
		OK:      cfg.Scraper.UserAgent != DefaultUserAgent,
		Display: cfg.Scraper.UserAgent,
	}
	if !ua.OK {
		ua.Display += " (set a contact address per SEC policy)"
	}

	rate := SettingStatus{
		Name:    "Rate limit",
		Source:  SourceConfig,
		OK:      cfg.Scraper.RateLimit >= 1 && cfg.Scraper.RateLimit <= 10,
		Display: fmt.Sprintf("%d req/s, burst %d", cfg.Scraper.RateLimit, cfg.Scraper.Burst),
	}
	if cfg.Scraper.RateLimit > 10 {
		rate.Display += " (exceeds the SEC 10 req/s ceiling)"
	}

	st := SettingStatus{
		Name:    "Store",
		Source:  SourceConfig,
		OK:      true,
		Display: "disabled",
	}
	if cfg.Store.Enabled {
		st.Display = cfg.Store.Path
	}

	endpoints := SettingStatus{
		Name:    "EDGAR endpoints",
		Source:  SourceConfig,
		OK:      cfg.Edgar.BaseURL != "" && cfg.Edgar.DataURL != "",
		Display: cfg.Edgar.BaseURL + ", " + cfg.Edgar.DataURL,
	}

	return []SettingStatus{ua, rate, st, endpoints}
}

// settingSource distinguishes env overrides from config/default values.
func settingSource(envVar string, nonDefault bool) SettingSource {
	if os.Getenv(envVar) != "" {
		return SourceEnv
	}
	if nonDefault {
		return SourceConfig
	}
	return SourceDefault
}
