package rodwrapper

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// Page chrome that rarely holds the content the agent asked for.
const chromeSelector = "nav, footer, header, aside, form[role=search], [role=navigation], [role=banner], [role=contentinfo]"

var contentSelectors = []string{"main", "article", "[role=main]", "#content", ".content", "body"}

var blankLines = regexp.MustCompile(`\n{3,}`)

type Page struct {
	Title    string
	Markdown string
}

// ExtractMarkdown cleans a page, keeps its main content region and converts it to markdown.
// maxLen <= 0 disables truncation.
func ExtractMarkdown(rawHTML string, maxLen int) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	cleaned, err := CleanHTML(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("clean html: %w", err)
	}

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("parse cleaned html: %w", err)
	}

	var region *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			region = s.First()
			break
		}
	}
	if region == nil {
		region = doc.Selection
	}
	if goquery.NodeName(region) == "body" {
		region.Find(chromeSelector).Remove()
	}

	regionHTML, err := goquery.OuterHtml(region)
	if err != nil {
		return nil, fmt.Errorf("render content region: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(regionHTML)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}

	markdown = strings.TrimSpace(blankLines.ReplaceAllString(markdown, "\n\n"))
	return &Page{Title: title, Markdown: Truncate(markdown, maxLen)}, nil
}

// Truncate cuts s to at most maxLen bytes on a rune boundary and marks the cut.
// maxLen <= 0 disables truncation.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (truncated)"
}
