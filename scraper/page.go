package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"goodminton/courts"
)

// Page is the part of a facility timetable the extractors need.
type Page struct {
	// CourtNames holds one name per timetable column, in column order.
	CourtNames []string
	// Script is the source of the script block that fills the timetable.
	Script string
}

// ParsePage pulls the court names and the booking script out of a facility
// timetable. The script is the one at scriptIndex when scriptIndex is not
// negative, otherwise the first script that mentions bookingsKey, or none.
func ParsePage(html, bookingsKey string, scriptIndex int) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	page := &Page{}
	// The first cell is the time column header.
	doc.Find("td").Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			return
		}
		page.CourtNames = append(page.CourtNames, strings.TrimSpace(s.Text()))
	})

	scripts := doc.Find("script")
	if scriptIndex >= 0 {
		if scriptIndex >= scripts.Length() {
			return nil, courts.FormatMismatch(fmt.Sprintf("page has %d scripts, expected one at index %d", scripts.Length(), scriptIndex), nil)
		}
		page.Script = scripts.Eq(scriptIndex).Text()
		return page, nil
	}

	marker := regexp.MustCompile(regexp.QuoteMeta(bookingsKey) + `\s*:`)
	scripts.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if marker.MatchString(text) {
			page.Script = text
			return false
		}
		return true
	})
	// No script at all means no booking arrays, which is a day without bookings.
	return page, nil
}
