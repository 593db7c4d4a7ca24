package crawler

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors for episode pages, kept as plain data. The archive's markup is
// old and inconsistent, so every selection below tolerates absence.
const (
	selCategoryName = "td.category_name"
	selClue         = ".clue"
	selClueAnchor   = ".clue_unstuck"
	selAnswer       = "em.correct_response"
	selRightCell    = "td.right"
	selWrongCell    = "td.wrong"
	selClueValue    = "[class*='clue_value']"
	selClueText     = "td.clue_text"
	selOrderNumber  = ".clue_order_number"
)

const (
	// tripleStumperMarker is the literal text the archive places in a wrong-
	// response cell when no contestant answered correctly.
	tripleStumperMarker = "Triple Stumper"

	// doubleRoundToken is the round component of a clue identifier in the
	// second (double-value) round.
	doubleRoundToken = "DJ"

	// categoriesPerRound is how many categories one round's board carries.
	// The double round's categories follow the single round's in document
	// order, so its column indices are offset by this much.
	categoriesPerRound = 6

	// Sentinels for fields the markup does not carry.
	unknownSentinel = "Unknown"
	noneSentinel    = "None"
)

// GoqueryExtractor turns one episode page's markup into partial clue records.
// Per-clue problems are logged and skipped so a single malformed cell never
// costs the rest of the episode.
type GoqueryExtractor struct {
	logger *zap.Logger
}

// NewGoqueryExtractor builds the extractor.
func NewGoqueryExtractor(logger *zap.Logger) *GoqueryExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoqueryExtractor{logger: logger}
}

// Extract parses every clue cell on the page. The returned clues carry no
// episode, season, or air date; the engine attaches those. Only a document
// that cannot be parsed at all yields an error.
func (e *GoqueryExtractor) Extract(pageURL string, body []byte) ([]Clue, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Detail: fmt.Sprintf("episode page is not parseable markup: %v", err)}
	}

	// Category headers in document order: indices 0..5 belong to the single
	// round, 6..11 to the double round when both are present.
	var categories []string
	doc.Find(selCategoryName).Each(func(_ int, cell *goquery.Selection) {
		categories = append(categories, strings.TrimSpace(cell.Text()))
	})

	var clues []Clue
	doc.Find(selClue).Each(func(_ int, cell *goquery.Selection) {
		clue, err := e.extractClue(cell, categories)
		if err != nil {
			e.logger.Warn("skipping clue",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			return
		}
		if clue == nil {
			// No structural anchor: an empty board position, not an error.
			e.logger.Debug("clue cell without anchor", zap.String("url", pageURL))
			return
		}
		clues = append(clues, *clue)
	})
	return clues, nil
}

// extractClue reads one clue container. A nil clue with nil error means the
// container has no structural anchor and is silently skipped.
func (e *GoqueryExtractor) extractClue(cell *goquery.Selection, categories []string) (*Clue, error) {
	anchor := cell.Find(selClueAnchor).First()
	if anchor.Length() == 0 {
		return nil, nil
	}
	id := anchor.AttrOr("id", "")
	round, column, row, err := parseClueID(id)
	if err != nil {
		return nil, err
	}

	doubleRound := round == doubleRoundToken
	catIdx := column - 1
	if doubleRound {
		catIdx += categoriesPerRound
	}
	category := unknownSentinel
	if catIdx >= 0 && catIdx < len(categories) {
		category = categories[catIdx]
	}

	answer := unknownSentinel
	if sel := cell.Find(selAnswer).First(); sel.Length() > 0 {
		answer = strings.TrimSpace(sel.Text())
	}

	contestant := noneSentinel
	if sel := cell.Find(selRightCell).First(); sel.Length() > 0 {
		contestant = strings.TrimSpace(sel.Text())
	}
	tripleStumper := false
	cell.Find(selWrongCell).EachWithBreak(func(_ int, wrong *goquery.Selection) bool {
		if !strings.Contains(wrong.Text(), tripleStumperMarker) {
			return true
		}
		tripleStumper = true
		contestant = tripleStumperMarker
		return false
	})

	dollarValue := "0"
	if sel := cell.Find(selClueValue).First(); sel.Length() > 0 {
		dollarValue = strings.TrimSpace(sel.Text())
	}
	clueText := ""
	if sel := cell.Find(selClueText).First(); sel.Length() > 0 {
		clueText = strings.TrimSpace(sel.Text())
	}
	orderNumber := "0"
	if sel := cell.Find(selOrderNumber).First(); sel.Length() > 0 {
		orderNumber = strings.TrimSpace(sel.Text())
	}

	return &Clue{
		Category:      category,
		Answer:        answer,
		Text:          clueText,
		DollarValue:   dollarValue,
		OrderNumber:   orderNumber,
		DoubleRound:   doubleRound,
		TripleStumper: tripleStumper,
		Row:           row,
		Contestant:    contestant,
	}, nil
}

// parseClueID splits a structural identifier such as "clue_J_3_2" or
// "clue_DJ_1_5_r" into its round token, column, and row. The column is the
// 1-based board position that selects the category.
func parseClueID(id string) (round string, column int, row string, err error) {
	parts := strings.Split(id, "_")
	if len(parts) < 4 {
		return "", 0, "", &ParseError{Detail: fmt.Sprintf("clue id %q has no round/column/row", id)}
	}
	column, convErr := strconv.Atoi(parts[2])
	if convErr != nil {
		return "", 0, "", &ParseError{Detail: fmt.Sprintf("clue id %q has non-numeric column", id)}
	}
	return parts[1], column, parts[3], nil
}
