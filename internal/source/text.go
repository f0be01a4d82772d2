package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Containers tried in order when looking for the main text of a page.
var contentSelectors = []string{"article", "main", "[role=main]", "body"}

func documentTitle(doc *goquery.Document) string {
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return collapseSpaces(doc.Find("title").First().Text())
}

func documentText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	for _, selector := range contentSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		if text := paragraphsText(container); text != "" {
			return text
		}
	}

	return collapseSpaces(doc.Find("body").Text())
}

func paragraphsText(s *goquery.Selection) string {
	var paragraphs []string

	s.Find("p, li, blockquote, h1, h2, h3").Each(func(_ int, p *goquery.Selection) {
		if p.Parent().Is("li, blockquote") {
			return
		}
		if text := collapseSpaces(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n\n")
}

// htmlText strips markup from an HTML fragment such as a feed description.
func htmlText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		p.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = collapseSpaces(line); line != "" {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
