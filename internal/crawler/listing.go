package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors and patterns for the archive's listing pages. They are plain data
// so the parsing rules can be inspected and tested without running a crawl.
const (
	selContentLinks = "div#content a[href]"

	episodePathMarker = "showgame.php"
	seasonQueryMarker = "season="
)

var (
	seasonTokenPattern   = regexp.MustCompile(`season=(\w+)`)
	episodeNumberPattern = regexp.MustCompile(`#(\d+)`)
	airDatePattern       = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
)

// parseSeasonList extracts the seasons from the archive's listing page, in
// document order. Links without a season token are ignored; a page with no
// content area yields an empty list.
func parseSeasonList(base *url.URL, body []byte) ([]Season, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("season listing is not parseable markup: %v", err)}
	}

	var seasons []Season
	doc.Find(selContentLinks).Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		if !strings.Contains(href, seasonQueryMarker) {
			return
		}
		token := "Unknown"
		if m := seasonTokenPattern.FindStringSubmatch(href); m != nil {
			token = m[1]
		}
		resolved, err := ResolveURL(base, href)
		if err != nil {
			return
		}
		seasons = append(seasons, Season{Number: token, URL: resolved})
	})
	return seasons, nil
}

// parseEpisodeLinks extracts the episode entries from a season index page, in
// document order. An entry whose link text does not carry at least two
// comma-separated fields, or whose date segment does not look like a calendar
// date, is skipped with a logged reason; one bad entry never blocks its
// siblings.
func parseEpisodeLinks(base *url.URL, season string, body []byte, logger *zap.Logger) ([]Episode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("season index is not parseable markup: %v", err)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var episodes []Episode
	doc.Find(selContentLinks).Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		if !strings.Contains(href, episodePathMarker) {
			return
		}
		text := strings.TrimSpace(link.Text())

		episode, err := parseEpisodeEntry(base, season, href, text)
		if err != nil {
			logger.Warn("skipping episode listing entry",
				zap.String("season", season),
				zap.String("text", text),
				zap.Error(err),
			)
			return
		}
		episodes = append(episodes, episode)
	})
	return episodes, nil
}

// countEpisodeLinks reports how many episode links a season index page
// carries, including entries whose text would be skipped by
// parseEpisodeLinks. The planner compares this expected count against the
// persisted episodes to decide whether a season is complete.
func countEpisodeLinks(body []byte) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, &ParseError{Detail: fmt.Sprintf("season index is not parseable markup: %v", err)}
	}
	count := 0
	doc.Find(selContentLinks).Each(func(_ int, link *goquery.Selection) {
		if strings.Contains(link.AttrOr("href", ""), episodePathMarker) {
			count++
		}
	})
	return count, nil
}

// parseEpisodeEntry interprets one episode link. Listing text looks like
// "#6895, aired 2021-09-01"; the leading field carries the episode number and
// the second field the air date.
func parseEpisodeEntry(base *url.URL, season, href, text string) (Episode, error) {
	fields := strings.Split(text, ",")
	if len(fields) < 2 {
		return Episode{}, fmt.Errorf("%w: expected comma-separated number and date", ErrBadData)
	}

	number := strings.TrimSpace(fields[0])
	if m := episodeNumberPattern.FindStringSubmatch(fields[0]); m != nil {
		number = m[1]
	}

	m := airDatePattern.FindStringSubmatch(fields[1])
	if m == nil {
		return Episode{}, fmt.Errorf("%w: no date in %q", ErrBadData, strings.TrimSpace(fields[1]))
	}
	airDate, err := time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	if err != nil {
		return Episode{}, fmt.Errorf("%w: %q is not a calendar date", ErrBadData, m[0])
	}

	resolved, err := ResolveURL(base, href)
	if err != nil {
		return Episode{}, fmt.Errorf("%w: unresolvable episode link %q", ErrBadData, href)
	}

	return Episode{
		Number:  number,
		Season:  season,
		AirDate: airDate.UTC(),
		URL:     resolved,
	}, nil
}
