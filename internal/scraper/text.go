// Package scraper extracts article text from story pages.
package scraper

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// minParagraphRunes is the length a <p> must exceed to count as article text.
const minParagraphRunes = 100

// paragraphText keeps every paragraph longer than minParagraphRunes. Pages
// without such paragraphs fall back to the visible body text.
func paragraphText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) > minParagraphRunes {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n"), nil
	}

	bodySel := doc.Find("body").First()
	if bodySel.Length() == 0 {
		return "", nil
	}
	return bodyText(bodySel), nil
}

// bodyText joins the trimmed, non-empty text nodes of sel with newlines,
// skipping script-like elements.
func bodyText(sel *goquery.Selection) string {
	var lines []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if text := strings.TrimSpace(c.Text()); text != "" {
					lines = append(lines, text)
				}
			case "script", "style", "noscript", "template", "#comment":
			default:
				walk(c)
			}
		})
	}
	walk(sel)
	return strings.Join(lines, "\n")
}
