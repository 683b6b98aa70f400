package edgar

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/seenimoa/edgarintel/internal/logger"
	"github.com/seenimoa/edgarintel/pkg/models"
	"github.com/seenimoa/edgarintel/pkg/utils"
)

// Patterns for pulling structure out of "current events" Atom entries.
// Titles look like "13F-HR - Example Capital Mgmt LP (0001234567) (Filer)";
// links carry either a CIK= query parameter or an /Archives/edgar/data/
// path; accession numbers keep their dashed form wherever they appear.
var (
	feedTitlePrefix = regexp.MustCompile(`^13F-HR\S*\s+-\s+`)
	feedFilerSuffix = regexp.MustCompile(`\s*\(\d{7,10}\)\s*\((?:Filer|Reporting)\)\s*$`)
	feedParenForm   = regexp.MustCompile(`\s*\(13F-HR.*?\)\s*$`)
	feedBareForm    = regexp.MustCompile(`\s*13F-HR.*$`)

	feedCIKParam = regexp.MustCompile(`CIK=(\d+)`)
	feedCIKPath  = regexp.MustCompile(`/data/(\d+)/`)
	feedCIKTitle = regexp.MustCompile(`\((\d{7,10})\)`)

	feedAccession = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)
)

// Recent13F returns the most recent 13F-HR filers from the EDGAR current
// events Atom feed, newest first, at most count entries. Entries missing a
// filer name or CIK are skipped and logged; the second return value counts
// the skips.
func (c *Client) Recent13F(ctx context.Context, count int) ([]models.Institution, int, error) {
	if count < 1 {
		count = 100
	}

	url := fmt.Sprintf(
		"%s/cgi-bin/browse-edgar?action=getcurrent&type=13F-HR&company=&dateb=&owner=include&count=%d&output=atom",
		c.baseURL, count)

	raw, err := c.fetch(ctx, "13F feed", url)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch 13F feed: %w", err)
	}

	feed, err := c.parser.ParseString(string(raw))
	if err != nil {
		return nil, 0, fmt.Errorf("parse 13F feed: %w", err)
	}

	log := logger.FromContext(ctx)
	filers := make([]models.Institution, 0, len(feed.Items))
	skipped := 0
	for _, item := range feed.Items {
		if len(filers) >= count {
			break
		}
		filer, err := c.filerFromItem(item)
		if err != nil {
			skipped++
			log.Warn("skipping malformed feed entry",
				zap.String("title", item.Title),
				zap.Error(err))
			continue
		}
		filers = append(filers, filer)
	}
	return filers, skipped, nil
}

// filerFromItem converts one Atom entry into an institution lead.
func (c *Client) filerFromItem(item *gofeed.Item) (models.Institution, error) {
	name := strings.TrimSpace(item.Title)
	name = feedTitlePrefix.ReplaceAllString(name, "")
	name = feedFilerSuffix.ReplaceAllString(name, "")
	name = feedParenForm.ReplaceAllString(name, "")
	name = feedBareForm.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Institution{}, fmt.Errorf("entry has no filer name")
	}

	cik := extractCIK(item)
	if cik == "" {
		return models.Institution{}, fmt.Errorf("entry has no CIK")
	}

	inst := models.Institution{
		CIK:         cik,
		Name:        name,
		FilingType:  models.Filing13F,
		SourceURL:   fmt.Sprintf("%s/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=13F-HR", c.baseURL, cik),
		AccessionNo: extractAccession(item),
		Summary:     cleanHTML(item.Description),
	}
	if item.UpdatedParsed != nil {
		inst.FiledAt = *item.UpdatedParsed
	} else if item.PublishedParsed != nil {
		inst.FiledAt = *item.PublishedParsed
	}
	return inst, nil
}

// extractCIK finds the filer CIK in an entry: the CIK= query parameter in
// the link, then the archives path, then the parenthesized number in the
// title. Leading zeros are trimmed so CIKs compare equal across sources.
func extractCIK(item *gofeed.Item) string {
	if m := feedCIKParam.FindStringSubmatch(item.Link); m != nil {
		return utils.TrimCIK(m[1])
	}
	if m := feedCIKPath.FindStringSubmatch(item.Link); m != nil {
		return utils.TrimCIK(m[1])
	}
	if m := feedCIKTitle.FindStringSubmatch(item.Title); m != nil {
		return utils.TrimCIK(m[1])
	}
	return ""
}

// extractAccession finds a dashed accession number in the entry ID, summary,
// or link.
func extractAccession(item *gofeed.Item) string {
	for _, s := range []string{item.GUID, item.Description, item.Link} {
		if m := feedAccession.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
