package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pinnhq/pinncheck/internal/checks"
)

const maxHeadings = 10

// Summarize extracts the page title and top-level headings from captured
// HTML. The summary is attached to the run record so history and API readers
// can tell what screen was actually rendered without opening the screenshot.
func Summarize(htmlContent string) (*checks.PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	summary := &checks.PageSummary{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			summary.Headings = append(summary.Headings, text)
		}
		return len(summary.Headings) < maxHeadings
	})

	return summary, nil
}

// ContainsText reports whether the captured HTML contains the text fragment
// anywhere in its rendered text content. This is the offline counterpart of
// the live visibility probe, used when re-checking stored DOM artifacts.
func ContainsText(htmlContent, text string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return false, err
	}
	return strings.Contains(doc.Find("body").Text(), text), nil
}
